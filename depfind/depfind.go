// Package depfind resolves declared plugin dependencies to class sources.
// A Finder is one resolution strategy (bundled platform modules, a local
// directory of plugin archives); strategies compose into an ordered Chain
// that falls through on not-found.
package depfind

import (
	"context"
	"strings"

	"pluginverify/resolver"
)

// Dependency is one declared dependency from a plugin descriptor.
type Dependency struct {
	ID         string // plugin id, e.g. "org.example.base"
	ModuleName string // platform module name, when the dependency is a module
	Optional   bool
}

func (d Dependency) String() string {
	if d.ModuleName != "" {
		return d.ModuleName
	}
	return d.ID
}

// Result is the outcome of one Find call. When Found, Source is the class
// source for the dependency and Release must be called once the dependency
// is no longer needed (it is scoped to one verification). When not found,
// Reason says why.
type Result struct {
	Found   bool
	Source  resolver.Resolver
	Release func() error
	Reason  string
}

// Provided wraps a found source. release may be nil.
func Provided(source resolver.Resolver, release func() error) Result {
	if release == nil {
		release = func() error { return nil }
	}
	return Result{Found: true, Source: source, Release: release}
}

// NotFound reports a failed lookup with a reason.
func NotFound(reason string) Result {
	return Result{Reason: reason}
}

// Finder resolves one dependency to a class source.
type Finder interface {
	Find(ctx context.Context, dep Dependency) Result
}

// Chain tries finders in order and returns the first hit. On a miss the
// reasons of all finders are joined.
type Chain []Finder

func (c Chain) Find(ctx context.Context, dep Dependency) Result {
	var reasons []string
	for _, f := range c {
		res := f.Find(ctx, dep)
		if res.Found {
			return res
		}
		if res.Reason != "" {
			reasons = append(reasons, res.Reason)
		}
	}
	if len(reasons) == 0 {
		return NotFound("dependency " + dep.String() + " not found")
	}
	return NotFound(strings.Join(reasons, "; "))
}
