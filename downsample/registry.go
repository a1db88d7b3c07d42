package downsample

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/fixvec/errs"
)

// Names of the default downsamplers.
const (
	EveryNthName      = "every-nth"
	MinMaxName        = "minmax"
	M4Name            = "m4"
	LTTBName          = "lttb"
	MinMaxLTTBName    = "minmax-lttb"
	NaNMinMaxName     = "nan-minmax"
	NaNM4Name         = "nan-m4"
	NaNMinMaxLTTBName = "nan-minmax-lttb"
)

// Factory creates a downsampler instance.
type Factory func() (Downsampler, error)

// Registry maps downsampler names to factories.
//
// A Registry is not safe for concurrent registration; populate it before
// sharing it with pipelines.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry creates a registry holding every built-in downsampler.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.mustRegister(EveryNthName, func() (Downsampler, error) { return NewEveryNth(), nil })
	r.mustRegister(MinMaxName, func() (Downsampler, error) { return NewMinMax(), nil })
	r.mustRegister(M4Name, func() (Downsampler, error) { return NewM4(), nil })
	r.mustRegister(LTTBName, func() (Downsampler, error) { return NewLTTB(), nil })
	r.mustRegister(MinMaxLTTBName, func() (Downsampler, error) { return NewMinMaxLTTB() })
	r.mustRegister(NaNMinMaxName, func() (Downsampler, error) { return NewNaNMinMax(), nil })
	r.mustRegister(NaNM4Name, func() (Downsampler, error) { return NewNaNM4(), nil })
	r.mustRegister(NaNMinMaxLTTBName, func() (Downsampler, error) { return NewNaNMinMaxLTTB() })

	return r
}

// Register adds a factory under name. Registering an existing name fails.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("%w: downsampler needs a name and a factory", errs.ErrInvalidParameter)
	}
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: downsampler %q already registered", errs.ErrInvalidParameter, name)
	}
	r.factories[name] = factory

	return nil
}

func (r *Registry) mustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Resolve creates the downsampler registered under name.
//
// Returns errs.ErrUnknownDownsampler for names that are not registered.
func (r *Registry) Resolve(name string) (Downsampler, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q, available: %s", errs.ErrUnknownDownsampler, name, strings.Join(r.Names(), ", "))
	}

	d, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create downsampler %q: %w", name, err)
	}

	return d, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}
