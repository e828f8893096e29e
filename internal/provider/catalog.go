package provider

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog lists the models each provider offers.
type Catalog struct {
	Providers []CatalogEntry `yaml:"providers"`
}

// CatalogEntry is one provider's model list.
type CatalogEntry struct {
	Name      string   `yaml:"name"`
	BaseURL   string   `yaml:"base_url"`
	Chat      []string `yaml:"chat"`
	Embedding []string `yaml:"embedding"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog from path, or the embedded one when path is
// empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "provider: read catalog %s", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "provider: parse catalog")
	}

	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if !isKnown(p.Name) {
			return nil, eris.Wrapf(ErrUnknownProvider, "provider: catalog entry %q", p.Name)
		}
		if seen[p.Name] {
			return nil, eris.Errorf("provider: duplicate catalog entry %q", p.Name)
		}
		seen[p.Name] = true
	}
	return &c, nil
}

// Entry returns the entry for name.
func (c *Catalog) Entry(name string) (CatalogEntry, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return CatalogEntry{}, false
}
