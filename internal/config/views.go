package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// View configures how one collection is served.
type View struct {
	// Sort is the default sort spec, e.g. "indexed_at:desc".
	Sort string `yaml:"sort,omitempty"`
	// PageSize overrides the default page size for the collection.
	PageSize int `yaml:"page_size,omitempty"`
}

// Views is the per-collection view manifest (views.yaml). It can be
// written as a plain list of collection ids (all defaults) or as a map
// with per-collection settings.
type Views struct {
	Collections map[string]*View
}

// UnmarshalYAML handles both the list and map forms.
func (v *Views) UnmarshalYAML(value *yaml.Node) error {
	var list []string
	if err := value.Decode(&list); err == nil {
		v.Collections = make(map[string]*View, len(list))
		for _, id := range list {
			v.Collections[id] = &View{}
		}
		return nil
	}

	var m map[string]*View
	if err := value.Decode(&m); err != nil {
		return err
	}
	v.Collections = m
	// Ensure no nil entries
	for id, view := range v.Collections {
		if view == nil {
			v.Collections[id] = &View{}
		}
	}
	return nil
}

// For returns the view for a collection, or nil. Safe on a nil
// receiver so callers need no manifest to serve defaults.
func (v *Views) For(collection string) *View {
	if v == nil || v.Collections == nil {
		return nil
	}
	return v.Collections[collection]
}

// LoadViews reads the view manifest at path. A missing or empty path
// yields an empty manifest.
func LoadViews(path string) (*Views, error) {
	if path == "" {
		return &Views{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Views{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read view manifest %s: %w", path, err)
	}
	var views Views
	if err := yaml.Unmarshal(data, &views); err != nil {
		return nil, fmt.Errorf("failed to parse view manifest %s: %w", path, err)
	}
	return &views, nil
}
