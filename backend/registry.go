package backend

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/format"
)

// Names of the default backends.
const (
	// NoneName resolves to no backend: vectors stay uncompressed.
	NoneName      = "none"
	BitPackName   = "bitpack"
	ZstdName      = "zstd"
	S2Name        = "s2"
	LZ4Name       = "lz4"
	DeltaName     = "delta"
	DeltaZstdName = "delta-zstd"
	DeltaS2Name   = "delta-s2"
	DeltaLZ4Name  = "delta-lz4"
)

// Factory creates a backend instance. A nil Factory registers a name that
// resolves to "no compression".
type Factory func() (Backend, error)

// Registry maps backend names to factories.
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

// NewDefaultRegistry creates a registry holding every built-in backend:
// none, bitpack, zstd, s2, lz4, delta, delta-zstd, delta-s2 and delta-lz4.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.mustRegister(NoneName, nil)
	r.mustRegister(BitPackName, func() (Backend, error) { return NewBitPack(), nil })
	r.mustRegister(ZstdName, blockFactory(ZstdName, layoutFixed, format.CompressionZstd))
	r.mustRegister(S2Name, blockFactory(S2Name, layoutFixed, format.CompressionS2))
	r.mustRegister(LZ4Name, blockFactory(LZ4Name, layoutFixed, format.CompressionLZ4))
	r.mustRegister(DeltaName, blockFactory(DeltaName, layoutDelta, format.CompressionNone))
	r.mustRegister(DeltaZstdName, blockFactory(DeltaZstdName, layoutDelta, format.CompressionZstd))
	r.mustRegister(DeltaS2Name, blockFactory(DeltaS2Name, layoutDelta, format.CompressionS2))
	r.mustRegister(DeltaLZ4Name, blockFactory(DeltaLZ4Name, layoutDelta, format.CompressionLZ4))

	return r
}

func blockFactory(name string, layout blockLayout, ct format.CompressionType) Factory {
	return func() (Backend, error) {
		return newBlockBackend(name, layout, ct)
	}
}

// Register adds a factory under name. Registering an existing name fails.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("%w: empty backend name", errs.ErrInvalidParameter)
	}
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: backend %q already registered", errs.ErrInvalidParameter, name)
	}
	r.factories[name] = factory

	return nil
}

func (r *Registry) mustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Resolve creates the backend registered under name.
//
// It returns a nil Backend and a nil error for names registered without a
// factory (such as "none"), and errs.ErrUnknownCompressionMethod for names
// that are not registered.
func (r *Registry) Resolve(name string) (Backend, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q, available: %s", errs.ErrUnknownCompressionMethod, name, strings.Join(r.Names(), ", "))
	}
	if factory == nil {
		return nil, nil //nolint:nilnil
	}

	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create backend %q: %w", name, err)
	}

	return b, nil
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
