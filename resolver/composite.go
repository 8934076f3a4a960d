package resolver

import (
	"errors"
	"fmt"
	"sync"

	"pluginverify/classfile"
)

// Composite queries an ordered list of sub-resolvers and returns the first
// hit. The order defines priority: a class present in an earlier resolver
// shadows same-named classes in later ones.
//
// A hard error from a sub-resolver (anything other than ErrNotFound)
// propagates immediately; later resolvers are not consulted.
type Composite struct {
	name  string
	parts []Resolver

	mu  sync.Mutex
	neg map[string]struct{} // negative cache, nil when disabled
}

// NewComposite creates a composite over the given resolvers. Nil entries
// are skipped so callers can pass optional layers unconditionally.
func NewComposite(name string, parts ...Resolver) *Composite {
	kept := make([]Resolver, 0, len(parts))
	for _, p := range parts {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Composite{name: name, parts: kept}
}

// EnableNegativeCache turns on caching of not-found answers. The cache is
// scoped to this composite; it must not be shared across verification
// contexts.
func (c *Composite) EnableNegativeCache() *Composite {
	c.neg = make(map[string]struct{})
	return c
}

func (c *Composite) Name() string { return c.name }

func (c *Composite) Resolve(className string) (*classfile.ClassFile, error) {
	if c.neg != nil {
		c.mu.Lock()
		_, miss := c.neg[className]
		c.mu.Unlock()
		if miss {
			return nil, fmt.Errorf("%s: %q: %w", c.name, className, ErrNotFound)
		}
	}

	for _, p := range c.parts {
		cf, err := p.Resolve(className)
		if err == nil {
			return cf, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s: resolving %q: %w", c.name, className, err)
		}
	}

	if c.neg != nil {
		c.mu.Lock()
		c.neg[className] = struct{}{}
		c.mu.Unlock()
	}
	return nil, fmt.Errorf("%s: %q: %w", c.name, className, ErrNotFound)
}

// Parts returns the sub-resolvers in priority order.
func (c *Composite) Parts() []Resolver { return c.parts }
