package depfind

import (
	"context"
	"fmt"

	"pluginverify/resolver"
)

// Bundled resolves dependencies against the host's bundled platform
// modules. The module resolvers are owned by the host descriptor, so
// results are always borrowed: Release is a no-op.
type Bundled struct {
	modules map[string]resolver.Resolver
}

// NewBundled creates a finder over a module-name -> resolver map.
func NewBundled(modules map[string]resolver.Resolver) *Bundled {
	return &Bundled{modules: modules}
}

func (b *Bundled) Find(ctx context.Context, dep Dependency) Result {
	key := dep.ModuleName
	if key == "" {
		key = dep.ID
	}
	if r, ok := b.modules[key]; ok {
		return Provided(r, nil)
	}
	return NotFound(fmt.Sprintf("no bundled module %q", key))
}
