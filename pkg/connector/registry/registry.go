// Package registry keeps the filter plugins a deployment can enable by name.
// Plugins register a factory from an init function; the sync configuration
// lists which ones to build and in what order.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ajitpratap0/magesync/pkg/errors"
)

// Filter is a mapping plugin. Beyond Name it implements any subset of the
// hook interfaces the pipeline looks for.
type Filter interface {
	Name() string
}

// FilterFactory builds a filter from its settings block
type FilterFactory func(settings map[string]any) (Filter, error)

// FilterInfo describes a registered filter
type FilterInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Hooks       []string `json:"hooks"`
}

// Registry manages filter registration and instantiation
type Registry struct {
	factories map[string]FilterFactory
	infos     map[string]FilterInfo
	mu        sync.RWMutex
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FilterFactory),
		infos:     make(map[string]FilterInfo),
	}
}

// RegisterFilter registers a filter factory
func (r *Registry) RegisterFilter(info FilterInfo, factory FilterFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[info.Name]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("filter %s already registered", info.Name))
	}

	r.factories[info.Name] = factory
	r.infos[info.Name] = info
	return nil
}

// CreateFilter builds the named filter
func (r *Registry) CreateFilter(name string, settings map[string]any) (Filter, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("filter %s not found", name))
	}

	filter, err := factory(settings)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to create filter %s", name))
	}

	return filter, nil
}

// ListFilters returns the registered filters sorted by name
func (r *Registry) ListFilters() []FilterInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]FilterInfo, 0, len(r.infos))
	for _, info := range r.infos {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// HasFilter checks if a filter is registered
func (r *Registry) HasFilter(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[name]
	return exists
}

// Clear removes all registered filters (mainly for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[string]FilterFactory)
	r.infos = make(map[string]FilterInfo)
}

// Global registry functions

// RegisterFilter registers a filter in the global registry
func RegisterFilter(info FilterInfo, factory FilterFactory) error {
	return globalRegistry.RegisterFilter(info, factory)
}

// MustRegisterFilter registers a filter in the global registry and panics on
// a duplicate name. It is meant for init functions.
func MustRegisterFilter(info FilterInfo, factory FilterFactory) {
	if err := globalRegistry.RegisterFilter(info, factory); err != nil {
		panic(err)
	}
}

// CreateFilter creates a filter from the global registry
func CreateFilter(name string, settings map[string]any) (Filter, error) {
	return globalRegistry.CreateFilter(name, settings)
}

// ListFilters returns registered filters from the global registry
func ListFilters() []FilterInfo {
	return globalRegistry.ListFilters()
}

// HasFilter checks if a filter is registered in the global registry
func HasFilter(name string) bool {
	return globalRegistry.HasFilter(name)
}

// GetRegistry returns the global registry instance
func GetRegistry() *Registry {
	return globalRegistry
}

// Spec names a filter and its settings, in the order filters are applied
type Spec struct {
	Name     string
	Settings map[string]any
}

// Build creates every filter in specs, in order
func (r *Registry) Build(specs []Spec) ([]Filter, error) {
	filters := make([]Filter, 0, len(specs))
	for _, s := range specs {
		f, err := r.CreateFilter(s.Name, s.Settings)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}
