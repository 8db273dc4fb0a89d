package profile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/user/speedsale-scraper/internal/entity"
)

// Registry holds the retailer profiles known to the process. It is built at
// startup and handed to the orchestrator.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*entity.RetailerProfile
}

// NewRegistry creates a registry seeded with the given profiles.
func NewRegistry(profiles ...*entity.RetailerProfile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*entity.RetailerProfile)}
	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns a registry holding the built-in profiles.
func Default() *Registry {
	r, err := NewRegistry(BuiltIn()...)
	if err != nil {
		panic(fmt.Sprintf("built-in retailer profiles are invalid: %v", err))
	}
	return r
}

// Register adds or replaces a profile after validating it and resolving its
// post-process hook.
func (r *Registry) Register(p *entity.RetailerProfile) error {
	if err := Validate(p); err != nil {
		return err
	}
	if p.PostProcess == nil && p.PostProcessName != "" {
		hook, ok := Hook(p.PostProcessName)
		if !ok {
			return fmt.Errorf("retailer %s: unknown post-process hook %q", p.ID, p.PostProcessName)
		}
		p.PostProcess = hook
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
	return nil
}

// Get looks up a profile by retailer id.
func (r *Registry) Get(id string) (*entity.RetailerProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	return p, ok
}

// All returns every profile ordered by id.
func (r *Registry) All() []*entity.RetailerProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.RetailerProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
