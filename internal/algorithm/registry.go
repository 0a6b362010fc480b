package algorithm

import (
	"sort"
	"sync"

	"github.com/ironsheep/imagein/internal/imaging"
	"github.com/pkg/errors"
)

// Factory builds a fresh algorithm instance.
type Factory[T imaging.Pixel] func() Algorithm[T]

// Registry maps algorithm names to factories. It is safe for concurrent use.
type Registry[T imaging.Pixel] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry returns an empty registry.
func NewRegistry[T imaging.Pixel]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// NewDefaultRegistry returns a registry holding the parameterless
// algorithms of this package.
func NewDefaultRegistry[T imaging.Pixel]() *Registry[T] {
	r := NewRegistry[T]()
	r.MustRegister("identity", func() Algorithm[T] { return Identity[T]{} })
	r.MustRegister("inversion", func() Algorithm[T] { return Inversion[T]{} })
	r.MustRegister("difference", func() Algorithm[T] { return Difference[T]{} })
	r.MustRegister("luminance", func() Algorithm[T] { return Luminance[T]{} })
	r.MustRegister("hsl", func() Algorithm[T] { return HSL[T]{} })
	return r
}

// Register adds a factory. Empty names, nil factories and duplicates are
// rejected with ErrConstruction.
func (r *Registry[T]) Register(name string, f Factory[T]) error {
	if name == "" || f == nil {
		return errors.Wrap(imaging.ErrConstruction, "registry entry needs a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return errors.Wrapf(imaging.ErrConstruction, "algorithm %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is like Register but panics on error. Use it for static
// registrations only.
func (r *Registry[T]) MustRegister(name string, f Factory[T]) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Get builds the algorithm registered under name.
func (r *Registry[T]) Get(name string) (Algorithm[T], error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(imaging.ErrConstruction, "unknown algorithm %q", name)
	}
	return f(), nil
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
