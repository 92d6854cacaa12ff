// Package catalog holds the human-readable text shown for fertilizer
// advisories and disease labels.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/harvest/internal/fertilizer"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Advice struct {
	Title       string   `yaml:"title"`
	Summary     string   `yaml:"summary"`
	Suggestions []string `yaml:"suggestions"`
}

type Disease struct {
	Crop       string   `yaml:"crop"`
	Name       string   `yaml:"name"`
	Healthy    bool     `yaml:"healthy"`
	Cause      string   `yaml:"cause"`
	Prevention []string `yaml:"prevention"`
}

type Catalog struct {
	Advisories map[fertilizer.Advisory]Advice `yaml:"advisories"`
	Diseases   map[string]Disease             `yaml:"diseases"`
}

func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog and checks that every advisory code has text.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for _, code := range []fertilizer.Advisory{
		fertilizer.NitrogenHigh, fertilizer.NitrogenLow,
		fertilizer.PhosphorousHigh, fertilizer.PhosphorousLow,
		fertilizer.PotassiumHigh, fertilizer.PotassiumLow,
	} {
		if _, ok := c.Advisories[code]; !ok {
			return nil, fmt.Errorf("catalog has no text for advisory %s", code)
		}
	}

	return &c, nil
}

func (c *Catalog) Advice(code fertilizer.Advisory) (Advice, bool) {
	a, ok := c.Advisories[code]
	return a, ok
}

// Disease describes a classifier label. Labels missing from the catalog are
// described from the label itself, which has the form Crop___Disease_name.
func (c *Catalog) Disease(label string) Disease {
	if d, ok := c.Diseases[label]; ok {
		return d
	}

	crop, name, found := strings.Cut(label, "___")
	if !found {
		return Disease{Name: humanize(label)}
	}
	d := Disease{Crop: humanize(crop), Name: humanize(name)}
	if strings.EqualFold(name, "healthy") {
		d.Healthy = true
		d.Name = ""
	}
	return d
}

func humanize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
}
