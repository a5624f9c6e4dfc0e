package repository

import (
	"fmt"
	"sort"

	"github.com/open-edge-platform/selfupdate-verifier/internal/selfupdate"
)

// Registry maps repository ids to their definitions.
type Registry struct {
	repos map[string]*Repository
}

// NewRegistry registers the given repositories.
func NewRegistry(repos ...*Repository) *Registry {
	reg := &Registry{repos: make(map[string]*Repository)}
	for _, r := range repos {
		reg.Register(r)
	}
	return reg
}

// Register makes a repository available under its ID, replacing an earlier one.
func (reg *Registry) Register(r *Repository) {
	reg.repos[r.ID] = r
}

// Get returns the repository by id.
func (reg *Registry) Get(id string) (*Repository, bool) {
	r, ok := reg.repos[id]
	return r, ok
}

// IDs returns the registered ids, sorted.
func (reg *Registry) IDs() []string {
	ids := make([]string, 0, len(reg.repos))
	for id := range reg.repos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Find implements selfupdate.RepositoryFinder.
func (reg *Registry) Find(id string) (selfupdate.PackageSource, error) {
	r, ok := reg.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRepositoryNotFound, id)
	}
	return r, nil
}
