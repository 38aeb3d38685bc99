package integrations

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// Registry manages configured integrations by usage category.
type Registry struct {
	mu           sync.RWMutex
	integrations map[model.APIType]Integration
}

// NewRegistry creates an empty integration registry.
func NewRegistry() *Registry {
	return &Registry{
		integrations: make(map[model.APIType]Integration),
	}
}

// Register adds an integration. Only one integration per category is allowed.
func (r *Registry) Register(i Integration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := i.APIType()
	if existing, exists := r.integrations[t]; exists {
		return fmt.Errorf("%s integration already registered (%s)", t, existing.Name())
	}
	r.integrations[t] = i
	return nil
}

// Get returns the integration metered under apiType.
func (r *Registry) Get(apiType model.APIType) (Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.integrations[apiType]
	if !ok {
		return nil, fmt.Errorf("no %s integration configured", apiType)
	}
	return i, nil
}

// Calendar returns the registered calendar client, if any.
func (r *Registry) Calendar() (*CalendarClient, bool) {
	i, err := r.Get(model.APICalendar)
	if err != nil {
		return nil, false
	}
	c, ok := i.(*CalendarClient)
	return c, ok
}

// Tasks returns the registered tasks client, if any.
func (r *Registry) Tasks() (*TasksClient, bool) {
	i, err := r.Get(model.APITasks)
	if err != nil {
		return nil, false
	}
	c, ok := i.(*TasksClient)
	return c, ok
}

// List returns the names of all registered integrations, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.integrations))
	for _, i := range r.integrations {
		names = append(names, i.Name())
	}
	sort.Strings(names)
	return names
}
