// Package verify is the verification core: it builds per-(plugin, host)
// resolution contexts, walks plugin bytecode cross-references, filters the
// resulting problems, and orchestrates batches of verifications grouped by
// host.
package verify

import (
	"strings"

	"pluginverify/classfile"
	"pluginverify/resolver"
)

// ResolutionContext answers class lookups for one (plugin, host)
// verification. It chains resolvers in priority order (plugin classes
// shadow dependency classes, which shadow host classes, and so on) and
// carries the external-package allow-list: classes under those prefixes are
// assumed resolvable and never reported missing.
//
// The context owns no resources; its sub-resolvers are owned by the
// orchestrator or the host descriptor. The negative cache is scoped to this
// context and never leaks across plugins.
type ResolutionContext struct {
	// PluginID identifies the plugin under verification, for filters.
	PluginID string

	chain            *resolver.Composite
	externalPrefixes []string
}

// NewResolutionContext builds a context over the given resolvers, in
// priority order. Nil resolvers are skipped. Prefixes are accepted in
// source form ("external.lib.") and matched against internal class names.
func NewResolutionContext(pluginID string, externalPrefixes []string, parts ...resolver.Resolver) *ResolutionContext {
	prefixes := make([]string, 0, len(externalPrefixes))
	for _, p := range externalPrefixes {
		if p == "" {
			continue
		}
		prefixes = append(prefixes, strings.ReplaceAll(p, ".", "/"))
	}
	return &ResolutionContext{
		PluginID:         pluginID,
		chain:            resolver.NewComposite("context", parts...).EnableNegativeCache(),
		externalPrefixes: prefixes,
	}
}

// Resolve looks a class up through the full chain.
func (c *ResolutionContext) Resolve(className string) (*classfile.ClassFile, error) {
	return c.chain.Resolve(className)
}

// IsExternal reports whether the class name falls under the external
// allow-list and must never be reported missing.
func (c *ResolutionContext) IsExternal(className string) bool {
	for _, p := range c.externalPrefixes {
		if strings.HasPrefix(className, p) {
			return true
		}
	}
	return false
}
