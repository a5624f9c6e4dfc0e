// Package selfupdate checks a proposed installer self-update repository
// against the packages of the running installation system.
//
// Only a fixed set of installer packages is checked. Their versions are
// bound to a product release (e.g. 4.1.x in SP1, 4.2.x in SP2) and only the
// patch number moves within a release, so both a downgrade and a
// major/minor bump point at a repository built for another release.
package selfupdate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage"
	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage/rpmutils"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/general/slice"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/logger"
)

// ErrNoSource is returned by NewVerifier for a nil package source or repository finder.
var ErrNoSource = errors.New("no package source")

var trackedPackages = []string{
	"autoyast2-installation",
	"yast2",
	"yast2-installation",
	"yast2-packager",
	"yast2-pkg-bindings",
	"yast2-registration",
	"yast2-storage-ng",
	"yast2-update",
}

// TrackedPackages returns the default list of checked package names.
func TrackedPackages() []string {
	return append([]string(nil), trackedPackages...)
}

// PackageSource lists packages of an installation system or a repository.
type PackageSource interface {
	Packages() ([]ospackage.PackageInfo, error)
}

// RepositoryFinder resolves a repository identifier to its package listing.
type RepositoryFinder interface {
	Find(id string) (PackageSource, error)
}

// Option customizes a Verifier.
type Option func(*options)

type options struct {
	tracked []string
	log     *zap.SugaredLogger
}

// WithTrackedPackages replaces the default tracked package names.
func WithTrackedPackages(names ...string) Option {
	return func(o *options) { o.tracked = slice.Unique(names) }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) { o.log = log }
}

// Verifier holds the tracked packages of the installation system and the
// newest build of each tracked package offered by the update repository.
// It is immutable after NewVerifier and safe for concurrent use.
type Verifier struct {
	repoID    string
	installed map[string]ospackage.PackageInfo
	// candidates is in first-seen repository order
	candidates []ospackage.PackageInfo
	log        *zap.SugaredLogger
}

// NewVerifier reads both package sources once. Errors of either source
// are returned wrapped and no verifier is built.
func NewVerifier(repoID string, repos RepositoryFinder, installed PackageSource, opts ...Option) (*Verifier, error) {
	o := options{tracked: trackedPackages, log: logger.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	tracked := slice.ToSet(o.tracked)

	if installed == nil {
		return nil, fmt.Errorf("failed to read installed packages: %w", ErrNoSource)
	}
	if repos == nil {
		return nil, fmt.Errorf("failed to find repository %s: %w", repoID, ErrNoSource)
	}

	instPkgs, err := installed.Packages()
	if err != nil {
		return nil, fmt.Errorf("failed to read installed packages: %w", err)
	}

	repo, err := repos.Find(repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to find repository %s: %w", repoID, err)
	}
	repoPkgs, err := repo.Packages()
	if err != nil {
		return nil, fmt.Errorf("failed to read packages of repository %s: %w", repoID, err)
	}

	v := &Verifier{
		repoID:     repoID,
		installed:  latestByName(instPkgs, tracked),
		candidates: latestInOrder(repoPkgs, tracked),
		log:        o.log,
	}
	v.log.Debugf("repository %s: %d tracked installed packages, %d tracked update packages",
		repoID, len(v.installed), len(v.candidates))
	return v, nil
}

// latestByName keeps the newest tracked package per name.
func latestByName(pkgs []ospackage.PackageInfo, tracked map[string]struct{}) map[string]ospackage.PackageInfo {
	out := make(map[string]ospackage.PackageInfo)
	for _, p := range pkgs {
		if _, ok := tracked[p.Name]; !ok {
			continue
		}
		if best, ok := out[p.Name]; !ok || rpmutils.CompareVersions(p.Version, best.Version) > 0 {
			out[p.Name] = p
		}
	}
	return out
}

// latestInOrder is latestByName preserving the order names first appear in.
func latestInOrder(pkgs []ospackage.PackageInfo, tracked map[string]struct{}) []ospackage.PackageInfo {
	best := latestByName(pkgs, tracked)
	out := make([]ospackage.PackageInfo, 0, len(best))
	for _, p := range pkgs {
		b, ok := best[p.Name]
		if !ok {
			continue
		}
		out = append(out, b)
		delete(best, p.Name)
	}
	return out
}

// RepositoryID returns the identifier the verifier was built for.
func (v *Verifier) RepositoryID() string {
	return v.repoID
}

// InstalledPackages returns the tracked packages of the installation system.
func (v *Verifier) InstalledPackages() map[string]ospackage.PackageInfo {
	out := make(map[string]ospackage.PackageInfo, len(v.installed))
	for k, p := range v.installed {
		out[k] = p
	}
	return out
}

// UpdatePackages returns the newest build of each tracked package in the repository.
func (v *Verifier) UpdatePackages() []ospackage.PackageInfo {
	return append([]ospackage.PackageInfo(nil), v.candidates...)
}

// filter returns the update packages with an installed counterpart for which keep is true.
func (v *Verifier) filter(keep func(inst, upd ospackage.PackageInfo) bool) []ospackage.PackageInfo {
	out := []ospackage.PackageInfo{}
	for _, upd := range v.candidates {
		inst, ok := v.installed[upd.Name]
		if ok && keep(inst, upd) {
			out = append(out, upd)
		}
	}
	return out
}

// DowngradedPackages returns the update packages older than the installed
// ones, e.g. SP1 updates offered to an SP2 installer.
func (v *Verifier) DowngradedPackages() []ospackage.PackageInfo {
	return v.filter(func(inst, upd ospackage.PackageInfo) bool {
		if rpmutils.CompareVersions(upd.Version, inst.Version) < 0 {
			v.log.Debugf("downgrade: %s -> %s", inst, upd)
			return true
		}
		return false
	})
}

// TooNewPackages returns the update packages with a higher major, or the
// same major and a higher minor, version than the installed ones, e.g. SP3
// updates offered to an SP2 installer. A version without a leading
// major.minor. prefix is an error.
func (v *Verifier) TooNewPackages() ([]ospackage.PackageInfo, error) {
	var firstErr error
	out := v.filter(func(inst, upd ospackage.PackageInfo) bool {
		if firstErr != nil {
			return false
		}
		tooNew, err := isTooNew(inst, upd)
		if err != nil {
			firstErr = err
			return false
		}
		if tooNew {
			v.log.Debugf("too new: %s -> %s", inst, upd)
		}
		return tooNew
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func isTooNew(inst, upd ospackage.PackageInfo) (bool, error) {
	instMajor, instMinor, err := rpmutils.MajorMinor(inst.Version)
	if err != nil {
		return false, fmt.Errorf("installed package %s: %w", inst.Name, err)
	}
	updMajor, updMinor, err := rpmutils.MajorMinor(upd.Version)
	if err != nil {
		return false, fmt.Errorf("update package %s: %w", upd.Name, err)
	}
	return updMajor > instMajor || (updMajor == instMajor && updMinor > instMinor), nil
}
