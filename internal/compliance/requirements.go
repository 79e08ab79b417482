package compliance

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed requirements.yaml
var requirementsYAML []byte

// Requirement is a document suppliers are expected to keep on file.
type Requirement struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	DocumentType  string   `yaml:"documentType" json:"documentType"`
	Description   string   `yaml:"description" json:"description"`
	Mandatory     bool     `yaml:"mandatory" json:"mandatory"`
	RenewalMonths int      `yaml:"renewalMonths" json:"renewalMonths"`
	Categories    []string `yaml:"categories" json:"categories"`
}

// AppliesTo reports whether the requirement covers suppliers in category.
func (r Requirement) AppliesTo(category string) bool {
	if len(r.Categories) == 0 || strings.TrimSpace(category) == "" {
		return true
	}
	for _, c := range r.Categories {
		if strings.EqualFold(c, strings.TrimSpace(category)) {
			return true
		}
	}
	return false
}

// Catalog is the set of known requirements.
type Catalog struct {
	Requirements []Requirement `yaml:"requirements"`
}

// LoadCatalog parses a YAML requirements document.
func LoadCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse requirements: %w", err)
	}
	seen := map[string]bool{}
	for _, r := range c.Requirements {
		if r.ID == "" || r.DocumentType == "" {
			return Catalog{}, fmt.Errorf("requirement %q: id and documentType are required", r.Name)
		}
		if seen[r.ID] {
			return Catalog{}, fmt.Errorf("requirement %q declared twice", r.ID)
		}
		seen[r.ID] = true
	}
	return c, nil
}

// DefaultCatalog returns the embedded requirements catalog.
func DefaultCatalog() Catalog {
	c, err := LoadCatalog(requirementsYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// For returns the requirements applying to category, in catalog order.
func (c Catalog) For(category string) []Requirement {
	out := make([]Requirement, 0, len(c.Requirements))
	for _, r := range c.Requirements {
		if r.AppliesTo(category) {
			out = append(out, r)
		}
	}
	return out
}
