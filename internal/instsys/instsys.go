// Package instsys lists the packages of the running installation system.
package instsys

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/logger"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/shell"
)

// DefaultPackagesFile is the package list written into the installation system image.
const DefaultPackagesFile = "/.packages.root"

// bracketLineRe matches "name [version-release.arch]".
var bracketLineRe = regexp.MustCompile(`^(\S+)\s+\[(\S+)\.([^.\s\]]+)\]$`)

// PackagesFile reads a flat package list file.
type PackagesFile struct {
	Path string
}

// Packages implements selfupdate.PackageSource.
func (f PackagesFile) Packages() ([]ospackage.PackageInfo, error) {
	path := f.Path
	if path == "" {
		path = DefaultPackagesFile
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open package list %s: %w", path, err)
	}
	defer file.Close()

	pkgs, err := ParsePackageList(file, path)
	if err != nil {
		return nil, err
	}
	logger.Logger().Debugf("read %d packages from %s", len(pkgs), path)
	return pkgs, nil
}

// ParsePackageList parses lines of the form "name [version-release.arch]"
// or "name version-release". Empty lines and # comments are skipped.
func ParsePackageList(r io.Reader, origin string) ([]ospackage.PackageInfo, error) {
	var pkgs []ospackage.PackageInfo
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := bracketLineRe.FindStringSubmatch(line); m != nil {
			pkgs = append(pkgs, ospackage.PackageInfo{Name: m[1], Version: m[2], Arch: m[3], Origin: origin})
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 || strings.ContainsAny(fields[1], "[]") {
			return nil, fmt.Errorf("%s:%d: malformed package line %q", origin, lineNo, line)
		}
		pkgs = append(pkgs, ospackage.PackageInfo{Name: fields[0], Version: fields[1], Origin: origin})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read package list %s: %w", origin, err)
	}
	return pkgs, nil
}

// rpmQueryFormat prints one "name [version-release.arch]" line per package.
const rpmQueryFormat = `%{NAME} [%{VERSION}-%{RELEASE}.%{ARCH}]\n`

// RPMDatabase lists the packages of the rpm database below Root.
type RPMDatabase struct {
	Root string
}

// Packages implements selfupdate.PackageSource.
func (d RPMDatabase) Packages() ([]ospackage.PackageInfo, error) {
	if !shell.IsCommandExist("rpm") {
		return nil, fmt.Errorf("rpm command not found")
	}
	cmd := "rpm -qa --qf " + shell.Quote(rpmQueryFormat)
	origin := "rpmdb"
	if d.Root != "" && d.Root != "/" {
		cmd += " --root " + shell.Quote(d.Root)
		origin = "rpmdb:" + d.Root
	}
	output, err := shell.ExecCmd(cmd, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query rpm database: %w", err)
	}
	return ParsePackageList(strings.NewReader(output), origin)
}
