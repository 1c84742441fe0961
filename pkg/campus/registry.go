package campus

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
)

type toolSet struct {
	byName   map[ToolName]Descriptor
	byDomain map[Domain]map[Kind]Descriptor
}

// Registry maps tool names to descriptors. Lookups are lock-free; Replace
// swaps the whole mapping at once so readers never see a partial update.
type Registry struct {
	set         atomic.Pointer[toolSet]
	invocations atomic.Int64
}

func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{}
	if err := r.Replace(descriptors...); err != nil {
		return nil, err
	}
	return r, nil
}

// Replace validates descriptors and atomically installs them.
func (r *Registry) Replace(descriptors ...Descriptor) error {
	set := &toolSet{
		byName:   make(map[ToolName]Descriptor, len(descriptors)),
		byDomain: make(map[Domain]map[Kind]Descriptor),
	}
	for _, d := range descriptors {
		if d.Name == "" {
			return fmt.Errorf("tool descriptor without a name in domain %s", d.Domain)
		}
		if _, dup := set.byName[d.Name]; dup {
			return fmt.Errorf("duplicate tool name %q", d.Name)
		}
		kinds, ok := set.byDomain[d.Domain]
		if !ok {
			kinds = make(map[Kind]Descriptor)
			set.byDomain[d.Domain] = kinds
		}
		if _, dup := kinds[d.Kind]; dup {
			return fmt.Errorf("domain %s already has a %s tool", d.Domain, d.Kind)
		}
		set.byName[d.Name] = d
		kinds[d.Kind] = d
	}
	r.set.Store(set)
	return nil
}

func (r *Registry) Lookup(name ToolName) (Descriptor, bool) {
	d, ok := r.set.Load().byName[name]
	return d, ok
}

// Select returns the tool of the given kind for a domain, falling back to
// the domain's fetch-all tool when no search variant is registered.
func (r *Registry) Select(domain Domain, kind Kind) (Descriptor, bool) {
	kinds, ok := r.set.Load().byDomain[domain]
	if !ok {
		return Descriptor{}, false
	}
	if d, ok := kinds[kind]; ok {
		return d, true
	}
	d, ok := kinds[KindFetchAll]
	return d, ok
}

// HasDomain reports whether any tool is registered for the domain.
func (r *Registry) HasDomain(domain Domain) bool {
	_, ok := r.set.Load().byDomain[domain]
	return ok
}

// Descriptors lists registered tools sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	set := r.set.Load()
	out := make([]Descriptor, 0, len(set.byName))
	for _, d := range set.byName {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke looks up and runs a tool by name.
func (r *Registry) Invoke(ctx context.Context, name ToolName, args Args) Result {
	d, ok := r.Lookup(name)
	if !ok {
		return Result{ToolName: name, Error: ErrToolNotFound.Error()}
	}
	r.invocations.Add(1)
	return d.Invoke(ctx, args)
}

// Invocations counts calls made through Invoke since startup.
func (r *Registry) Invocations() int64 {
	return r.invocations.Load()
}
