package verify

import (
	"context"

	"pluginverify/artifact"
	"pluginverify/depfind"
)

// PluginInfo is the identity and dependency metadata read from a plugin
// descriptor.
type PluginInfo struct {
	ID           string
	Version      string
	Dependencies []depfind.Dependency
}

// Descriptors parses plugin descriptors out of acquired artifacts.
// Descriptor format handling is an external concern; the orchestrator only
// consumes the result.
type Descriptors interface {
	Read(ctx context.Context, f artifact.LockedFile) (*PluginInfo, error)
}
