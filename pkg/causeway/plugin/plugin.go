// Package plugin describes the identity a source-event handler runs under.
//
// A Ref is bound to a handler at registration time by the plugin-loading
// layer. Handlers defined but not yet bound to a Ref cannot be invoked.
package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/causeway/pkg/causeway/config"
)

// Ref identifies the plugin that owns a handler, plus its configured options.
type Ref struct {
	// ID uniquely identifies this plugin instance.
	ID string

	// Name is the plugin's package name, e.g. "source-filesystem".
	// Nodes created by the plugin's handlers are owned by this name.
	Name string

	// Options holds the plugin's configured options.
	Options config.Config
}

// New creates a Ref with a generated ID.
func New(name string, options config.Config) Ref {
	return Ref{
		ID:      uuid.NewString(),
		Name:    name,
		Options: options,
	}
}

// manifest is the on-disk shape of a plugin manifest file.
type manifest struct {
	Plugins []manifestEntry `yaml:"plugins" json:"plugins"`
}

type manifestEntry struct {
	ID      string         `yaml:"id" json:"id"`
	Name    string         `yaml:"name" json:"name"`
	Options map[string]any `yaml:"options" json:"options"`
}

// Load reads a plugin manifest file and returns the declared plugin refs
// in manifest order. The format is detected by extension (.yaml, .yml,
// .json). Entries without an explicit id get a generated one.
//
// Manifest shape:
//
//	plugins:
//	  - name: source-filesystem
//	    options:
//	      path: ./content
func Load(path string) ([]Ref, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plugin manifest: %w", err)
	}

	var m manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse plugin manifest: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse plugin manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest extension: %s", ext)
	}

	refs := make([]Ref, 0, len(m.Plugins))
	for i, entry := range m.Plugins {
		if entry.Name == "" {
			return nil, fmt.Errorf("plugin manifest entry %d: missing plugin name", i)
		}
		id := entry.ID
		if id == "" {
			id = uuid.NewString()
		}
		refs = append(refs, Ref{
			ID:      id,
			Name:    entry.Name,
			Options: config.New(entry.Options),
		})
	}

	return refs, nil
}
