package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"pluginverify/artifact"
	"pluginverify/classfile/index"
	"pluginverify/depfind"
	"pluginverify/resolver"
	"pluginverify/verify"
)

// The CLI works with prebuilt class index files (.pvci): plugins, hosts,
// and the JDK snapshot are all indexes produced ahead of time. Opening
// other container formats plugs in through the same resolver.Opener seam.

// indexOpener opens a .pvci file as a class resolver.
type indexOpener struct{}

func (indexOpener) Open(path string) (resolver.Resolver, error) {
	return loadIndex(path, indexName(path))
}

func loadIndex(path, name string) (*resolver.MapResolver, error) {
	r, err := index.Load(path, name)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %s: %d classes", path, r.Len())
	return r, nil
}

func indexName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// buildHosts loads each host index up front. Bundled platform modules are
// picked up from a sibling "<host>.modules" directory of per-module
// indexes, when present.
func buildHosts(paths []string) ([]*verify.HostDescriptor, error) {
	var hosts []*verify.HostDescriptor
	for _, path := range paths {
		r, err := loadIndex(path, indexName(path))
		if err != nil {
			return nil, err
		}

		host := &verify.HostDescriptor{
			ID:       indexName(path),
			Path:     path,
			Resolver: r,
		}

		modulesDir := strings.TrimSuffix(path, filepath.Ext(path)) + ".modules"
		if entries, err := os.ReadDir(modulesDir); err == nil {
			host.Bundled = make(map[string]resolver.Resolver)
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".pvci" {
					continue
				}
				modPath := filepath.Join(modulesDir, e.Name())
				mod, err := loadIndex(modPath, indexName(modPath))
				if err != nil {
					return nil, fmt.Errorf("bundled module %s: %w", modPath, err)
				}
				host.Bundled[indexName(modPath)] = mod
			}
		}

		hosts = append(hosts, host)
	}
	return hosts, nil
}

// sidecarDescriptors reads plugin identity and dependencies from an
// optional "<plugin>.plugin.toml" next to the artifact. Without a sidecar
// the plugin id falls back to the file name and no dependencies are
// declared.
type sidecarDescriptors struct{}

type sidecarFile struct {
	ID      string `toml:"id"`
	Version string `toml:"version"`

	Depends []struct {
		ID       string `toml:"id"`
		Module   string `toml:"module"`
		Optional bool   `toml:"optional"`
	} `toml:"depends"`
}

func (sidecarDescriptors) Read(ctx context.Context, f artifact.LockedFile) (*verify.PluginInfo, error) {
	path := strings.TrimSuffix(f.Path(), filepath.Ext(f.Path())) + ".plugin.toml"

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &verify.PluginInfo{ID: indexName(f.Path())}, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var sc sidecarFile
	if err := toml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	info := &verify.PluginInfo{ID: sc.ID, Version: sc.Version}
	if info.ID == "" {
		info.ID = indexName(f.Path())
	}
	for _, d := range sc.Depends {
		info.Dependencies = append(info.Dependencies, depfind.Dependency{
			ID:         d.ID,
			ModuleName: d.Module,
			Optional:   d.Optional,
		})
	}
	return info, nil
}
