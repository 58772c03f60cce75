// Package origin keeps the catalog of rule origins available to a run.
//
// Built-in origins register themselves from init functions, the way database
// drivers do:
//
//	func init() { origin.Register("text", "builtin:text", New) }
//
// Loading checks the origin's API version against analysis.MinAPIVersion and
// converts factory errors and panics into ErrLoad.
package origin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/mod/semver"

	"remedy/internal/analysis"
)

var (
	ErrUnknownOrigin       = errors.New("unknown rule origin")
	ErrIncompatibleVersion = errors.New("incompatible origin API version")
	ErrLoad                = errors.New("failed to load rule origin")
)

// Factory creates an origin instance.
type Factory func(ctx context.Context) (analysis.Origin, error)

// Descriptor describes a discoverable origin.
type Descriptor struct {
	Name string
	// Path is where the origin comes from, e.g. "builtin:text".
	Path string
}

// Loader resolves origins by name.
type Loader interface {
	Load(ctx context.Context, name string) (analysis.Origin, error)
}

// Catalog maps origin names to factories.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]entry
	minAPI  string
	loaded  map[string]analysis.Origin
}

type entry struct {
	desc    Descriptor
	factory Factory
}

// NewCatalog creates an empty catalog requiring analysis.MinAPIVersion.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string]entry),
		minAPI:  analysis.MinAPIVersion,
		loaded:  make(map[string]analysis.Origin),
	}
}

// Register adds an origin. Registering a name twice panics.
func (c *Catalog) Register(name, path string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if factory == nil {
		panic("origin: Register factory is nil")
	}
	if _, dup := c.entries[name]; dup {
		panic("origin: Register called twice for " + name)
	}
	c.entries[name] = entry{desc: Descriptor{Name: name, Path: path}, factory: factory}
}

// Discover lists registered origins sorted by name.
func (c *Catalog) Discover() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Descriptor, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Load instantiates the named origin once and returns the cached instance on
// later calls. Failed loads are not cached.
func (c *Catalog) Load(ctx context.Context, name string) (analysis.Origin, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if o, ok := c.loaded[name]; ok {
		return o, nil
	}
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownOrigin)
	}
	o, err := instantiate(ctx, e.factory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrLoad, err)
	}
	if err := checkVersion(o.APIVersion(), c.minAPI); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	c.loaded[name] = o
	return o, nil
}

func instantiate(ctx context.Context, factory Factory) (o analysis.Origin, err error) {
	defer func() {
		if r := recover(); r != nil {
			o, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	o, err = factory(ctx)
	if err == nil && o == nil {
		err = errors.New("factory returned no origin")
	}
	return o, err
}

func checkVersion(version, minimum string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrIncompatibleVersion, version)
	}
	if semver.Compare(version, minimum) < 0 {
		return fmt.Errorf("%w: %s is older than %s", ErrIncompatibleVersion, version, minimum)
	}
	return nil
}

var builtins = NewCatalog()

// Register adds an origin to the built-in catalog.
func Register(name, path string, factory Factory) {
	builtins.Register(name, path, factory)
}

// Builtin returns the catalog populated by Register.
func Builtin() *Catalog {
	return builtins
}
