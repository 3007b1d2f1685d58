// Package taxonomy loads the category/subcategory list used to validate
// customized classifications.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultYAML []byte

type Category struct {
	Name          string   `yaml:"name" json:"name"`
	Subcategories []string `yaml:"subcategories" json:"subcategories"`
}

type Taxonomy struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	return t
}

// Load reads a taxonomy file. An empty path returns Default.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if len(t.Categories) == 0 {
		return nil, errors.New("taxonomy has no categories")
	}
	for _, c := range t.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, errors.New("taxonomy category without a name")
		}
	}
	return &t, nil
}

// Lookup finds a category by case-insensitive name.
func (t *Taxonomy) Lookup(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range t.Categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}

// Canonical returns the canonical spelling of category and subcategory.
// Any subcategory is accepted for a known category; unknown ones are kept as typed.
func (t *Taxonomy) Canonical(category, subcategory string) (string, string, bool) {
	c, ok := t.Lookup(category)
	if !ok {
		return "", "", false
	}
	sub := strings.TrimSpace(subcategory)
	for _, s := range c.Subcategories {
		if strings.EqualFold(s, sub) {
			sub = s
			break
		}
	}
	return c.Name, sub, true
}
