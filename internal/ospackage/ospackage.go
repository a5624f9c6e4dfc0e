package ospackage

import "fmt"

// PackageInfo identifies one package build found in a package source.
type PackageInfo struct {
	Name    string `json:"name"`             // e.g. "yast2-packager"
	Version string `json:"version"`          // e.g. "4.3.11-1.3" (version-release)
	Arch    string `json:"arch,omitempty"`   // e.g. "x86_64", "noarch"
	Origin  string `json:"origin,omitempty"` // repository id or file the record came from
}

// String renders the package as name-version(.arch).
func (p PackageInfo) String() string {
	if p.Arch == "" {
		return fmt.Sprintf("%s-%s", p.Name, p.Version)
	}
	return fmt.Sprintf("%s-%s.%s", p.Name, p.Version, p.Arch)
}

// Names returns the package names in order.
func Names(pkgs []PackageInfo) []string {
	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, p.Name)
	}
	return names
}
