// Package sources loads the source registry: categorized feed entries plus
// the global selection configuration.
package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dailynews/internal/core"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultCategory is assigned to items whose category block has no name.
const DefaultCategory = "Daily News"

// Registry is the merged view of every registry file.
type Registry struct {
	Items  []*core.SourceConfig
	Global core.GlobalConfig
}

type registryFile struct {
	Categories    []category          `json:"categories"`
	Configuration jsoniter.RawMessage `json:"configuration"`
}

type category struct {
	Category string               `json:"category"`
	Priority string               `json:"priority"`
	Items    []*core.SourceConfig `json:"items"`
}

// Load reads a registry file, or merges every *.json file in a directory.
// Later files override earlier configuration keys.
func Load(resource string) (*Registry, error) {
	info, err := os.Stat(resource)
	if err != nil {
		return nil, fmt.Errorf("source registry %s: %w", resource, err)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(resource)
		if err != nil {
			return nil, fmt.Errorf("failed to read registry dir %s: %w", resource, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
				paths = append(paths, filepath.Join(resource, e.Name()))
			}
		}
	} else {
		paths = []string{resource}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no registry files found in %s", resource)
	}

	reg := &Registry{}
	var categories []category
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
		}
		var file registryFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("malformed registry file %s: %w", path, err)
		}
		categories = append(categories, file.Categories...)
		if len(file.Configuration) > 0 {
			// Unmarshalling into the same struct merges top-level keys,
			// later files winning.
			if err := json.Unmarshal(file.Configuration, &reg.Global); err != nil {
				return nil, fmt.Errorf("malformed configuration block in %s: %w", path, err)
			}
		}
	}

	for _, cat := range categories {
		name := cat.Category
		if name == "" {
			name = DefaultCategory
		}
		for _, item := range cat.Items {
			item.Category = name
			if item.Priority == "" {
				item.Priority = cat.Priority
			}
			if item.RSSHubPath != "" {
				item.URL = reg.Global.RSSHubDomain + item.RSSHubPath
			}
			reg.Items = append(reg.Items, item)
		}
	}

	return reg, nil
}

// DailyTarget returns the slate size, honoring the override when > 0.
func (r *Registry) DailyTarget(override int) int {
	if override > 0 {
		return override
	}
	if r.Global.DailyTarget > 0 {
		return r.Global.DailyTarget
	}
	return 12
}
