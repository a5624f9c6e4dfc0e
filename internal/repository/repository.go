// Package repository lists the packages offered by a local update
// repository: an rpm-md tree, a plain directory of RPMs, or an ISO image
// containing an rpm-md tree.
package repository

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage"
	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage/rpmutils"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/logger"
)

// Kind is the on-disk layout of a repository.
type Kind string

const (
	KindRPMMD  Kind = "rpm-md"
	KindRPMDir Kind = "rpm-dir"
	KindISO    Kind = "iso"
)

var (
	// ErrRepositoryNotFound is returned for an unknown repository id.
	ErrRepositoryNotFound = errors.New("repository not found")
	// ErrUnsupportedLocation is returned for remote or unknown repository locations.
	ErrUnsupportedLocation = errors.New("unsupported repository location")
)

// Repository describes one configured update repository.
type Repository struct {
	ID     string
	Path   string // local directory, *.iso image or file:// URL
	GPGKey string // armored public key verifying repodata/repomd.xml.asc
	// Progress receives a progress bar while RPM headers are scanned; nil disables it.
	Progress io.Writer
}

// metadataFS opens files relative to the repository root.
type metadataFS interface {
	Open(name string) (io.ReadCloser, error)
	Close() error
}

type dirFS struct {
	root string
}

func (d dirFS) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.root, filepath.FromSlash(name)))
}

func (d dirFS) Close() error { return nil }

// LocalPath resolves the repository location to a local path.
func (r *Repository) LocalPath() (string, error) {
	loc := r.Path
	if loc == "" {
		return "", fmt.Errorf("%w: repository %s has no path", ErrUnsupportedLocation, r.ID)
	}
	if strings.Contains(loc, "://") {
		u, err := url.Parse(loc)
		if err != nil {
			return "", fmt.Errorf("failed to parse repository URL %s: %w", loc, err)
		}
		if u.Scheme != "file" {
			return "", fmt.Errorf("%w: %s (only local repositories are supported)", ErrUnsupportedLocation, loc)
		}
		loc = u.Path
	}
	return filepath.Clean(loc), nil
}

// Detect inspects the repository location and returns its layout.
func (r *Repository) Detect() (Kind, error) {
	path, err := r.LocalPath()
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access repository %s: %w", r.ID, err)
	}
	if !info.IsDir() {
		if strings.EqualFold(filepath.Ext(path), ".iso") {
			return KindISO, nil
		}
		return "", fmt.Errorf("%w: %s is neither a directory nor an ISO image", ErrUnsupportedLocation, path)
	}
	if _, err := os.Stat(filepath.Join(path, filepath.FromSlash(rpmutils.RepomdPath))); err == nil {
		return KindRPMMD, nil
	}
	return KindRPMDir, nil
}

// Packages implements selfupdate.PackageSource.
func (r *Repository) Packages() ([]ospackage.PackageInfo, error) {
	log := logger.Logger()

	kind, err := r.Detect()
	if err != nil {
		return nil, err
	}
	path, _ := r.LocalPath()
	log.Infof("reading %s repository %s from %s", kind, r.ID, path)

	var pkgs []ospackage.PackageInfo
	switch kind {
	case KindRPMMD:
		pkgs, err = r.readRPMMD(dirFS{root: path})
	case KindISO:
		var fsys metadataFS
		fsys, err = openISO(path)
		if err != nil {
			return nil, err
		}
		defer fsys.Close()
		pkgs, err = r.readRPMMD(fsys)
	case KindRPMDir:
		pkgs, err = r.scanRPMDir(path)
	}
	if err != nil {
		return nil, err
	}
	log.Infof("found %d packages in repository %s", len(pkgs), r.ID)
	return pkgs, nil
}

// readRPMMD verifies repomd.xml when a key is configured and parses the primary metadata.
func (r *Repository) readRPMMD(fsys metadataFS) ([]ospackage.PackageInfo, error) {
	if r.GPGKey != "" {
		if err := r.verifyRepomd(fsys); err != nil {
			return nil, err
		}
	}

	repomd, err := fsys.Open(rpmutils.RepomdPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", rpmutils.RepomdPath, err)
	}
	href, err := rpmutils.ParseRepomd(repomd)
	repomd.Close()
	if err != nil {
		return nil, err
	}

	primary, err := fsys.Open(href)
	if err != nil {
		return nil, fmt.Errorf("failed to open primary metadata %s: %w", href, err)
	}
	defer primary.Close()

	rc, err := rpmutils.Decompress(href, primary)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return rpmutils.ParsePrimary(rc, r.ID)
}

func (r *Repository) verifyRepomd(fsys metadataFS) error {
	key, err := os.Open(r.GPGKey)
	if err != nil {
		return fmt.Errorf("failed to open GPG key: %w", err)
	}
	defer key.Close()

	signed, err := fsys.Open(rpmutils.RepomdPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rpmutils.RepomdPath, err)
	}
	defer signed.Close()

	sig, err := fsys.Open(rpmutils.RepomdSigPath)
	if err != nil {
		return fmt.Errorf("%w: missing %s: %v", rpmutils.ErrSignatureInvalid, rpmutils.RepomdSigPath, err)
	}
	defer sig.Close()

	if err := rpmutils.VerifyDetachedSignature(key, signed, sig); err != nil {
		return fmt.Errorf("repository %s: %w", r.ID, err)
	}
	logger.Logger().Infof("repository %s: metadata signature verified", r.ID)
	return nil
}
