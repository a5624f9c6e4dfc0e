package selfupdate

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/open-edge-platform/selfupdate-verifier/internal/ospackage"
)

// ErrVerificationFailed is returned by callers that refuse a repository
// with downgraded or too new packages.
var ErrVerificationFailed = errors.New("self-update repository verification failed")

// Report is the outcome of one verification run.
type Report struct {
	ID         string                  `json:"id"`
	Repository string                  `json:"repository"`
	Checked    []string                `json:"checked"`
	Downgraded []ospackage.PackageInfo `json:"downgraded"`
	TooNew     []ospackage.PackageInfo `json:"tooNew"`
	Installed  map[string]string       `json:"installed"`
}

// Blocking reports whether the repository must not be used.
func (r *Report) Blocking() bool {
	return len(r.Downgraded) > 0 || len(r.TooNew) > 0
}

// Check runs both queries and collects the results.
func (v *Verifier) Check() (*Report, error) {
	tooNew, err := v.TooNewPackages()
	if err != nil {
		return nil, err
	}
	r := &Report{
		ID:         uuid.NewString(),
		Repository: v.repoID,
		Checked:    ospackage.Names(v.candidates),
		Downgraded: v.DowngradedPackages(),
		TooNew:     tooNew,
		Installed:  make(map[string]string, len(v.installed)),
	}
	for name, p := range v.installed {
		r.Installed[name] = p.Version
	}
	return r, nil
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// WriteText prints a human readable summary of the report.
func (r *Report) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("Self-update repository: %s\n", r.Repository)
	ew.printf("Checked packages: %d\n", len(r.Checked))
	if !r.Blocking() {
		ew.printf("Result: OK\n")
		return ew.err
	}
	r.writeList(ew, "Downgraded packages:", r.Downgraded)
	r.writeList(ew, "Too new packages:", r.TooNew)
	ew.printf("Result: the repository does not match this installer\n")
	return ew.err
}

func (r *Report) writeList(ew *errWriter, title string, pkgs []ospackage.PackageInfo) {
	if len(pkgs) == 0 {
		return
	}
	ew.printf("%s\n", title)
	for _, p := range pkgs {
		ew.printf("  - %s (installed %s, update %s)\n", p.Name, r.Installed[p.Name], p.Version)
	}
}
