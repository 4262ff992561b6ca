package auth

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe registry of named TokenValidator instances.
// Deployments validating tokens from several issuers register one facade per
// issuer and let middleware pick by name; each facade keeps its own key
// cache, so registered validators share nothing.
//
//	reg := auth.NewRegistry()
//	reg.Register("employees", employeeAuth)
//	reg.Register("partners", partnerAuth)
//	validator, _ := reg.Default()
type Registry struct {
	mu          sync.RWMutex
	validators  map[string]TokenValidator
	defaultName string
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]TokenValidator),
	}
}

// Register adds a named TokenValidator. The first registered validator
// becomes the default.
func (r *Registry) Register(name string, v TokenValidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = v
	if r.defaultName == "" {
		r.defaultName = name
	}
}

// Get returns the TokenValidator registered under name.
func (r *Registry) Get(name string) (TokenValidator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[name]
	return v, ok
}

// MustGet returns the TokenValidator registered under name, panicking when
// it is absent. For wiring code that cannot proceed without it.
func (r *Registry) MustGet(name string) TokenValidator {
	v, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("auth: validator %q not registered", name))
	}
	return v
}

// Default returns the default TokenValidator: the first registered one
// unless overridden with SetDefault.
func (r *Registry) Default() (TokenValidator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultName == "" {
		return nil, false
	}
	v, ok := r.validators[r.defaultName]
	return v, ok
}

// SetDefault sets the default validator by name. The name must already be
// registered.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.validators[name]; !ok {
		return fmt.Errorf("auth: validator %q not registered", name)
	}
	r.defaultName = name
	return nil
}

// Names returns all registered validator names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	return names
}
