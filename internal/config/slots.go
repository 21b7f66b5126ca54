package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"deskbook/internal/catalog"
)

// slotsFile is the root of slots.yaml.
type slotsFile struct {
	Slots []catalog.Slot `yaml:"slots"`
}

// LoadCatalog reads the slot catalog from a YAML file. An empty path
// falls back to the built-in catalog.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slots config: %w", err)
	}

	var f slotsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse slots config: %w", err)
	}

	cat, err := catalog.New(f.Slots)
	if err != nil {
		return nil, fmt.Errorf("validate slots config: %w", err)
	}
	return cat, nil
}
