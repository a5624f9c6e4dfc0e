package repository

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage"
	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage/rpmutils"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/logger"
)

// scanRPMDir reads the header of every *.rpm below dir. Source RPMs are skipped.
func (r *Repository) scanRPMDir(dir string) ([]ospackage.PackageInfo, error) {
	var rpmPaths []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(p) == ".rpm" && !isSourceRPM(p) {
			rpmPaths = append(rpmPaths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan repository directory %s: %w", dir, err)
	}
	sort.Strings(rpmPaths)
	if len(rpmPaths) == 0 {
		logger.Logger().Warnf("no RPMs found in %s", dir)
		return nil, nil
	}

	progress := r.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(rpmPaths),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("reading headers"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	pkgs := make([]ospackage.PackageInfo, 0, len(rpmPaths))
	for _, p := range rpmPaths {
		pi, err := readHeaderFile(p, r.ID)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, pi)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return pkgs, nil
}

func isSourceRPM(p string) bool {
	stem := strings.TrimSuffix(filepath.Base(p), ".rpm")
	return strings.HasSuffix(stem, ".src") || strings.HasSuffix(stem, ".nosrc")
}

func readHeaderFile(p, origin string) (ospackage.PackageInfo, error) {
	f, err := os.Open(p)
	if err != nil {
		return ospackage.PackageInfo{}, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer f.Close()

	pi, err := rpmutils.ReadPackageHeader(f, origin)
	if err != nil {
		return ospackage.PackageInfo{}, fmt.Errorf("%s: %w", p, err)
	}
	return pi, nil
}
