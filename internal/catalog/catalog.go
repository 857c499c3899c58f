// Package catalog holds the static destinations, businesses and bookable
// packages, loaded once at startup from an embedded YAML document.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

type EntityType string

const (
	TypeDestination EntityType = "destination"
	TypeBusiness    EntityType = "business"
	TypeResort      EntityType = "resort"
)

type SearchableEntity struct {
	ID       int        `yaml:"id" json:"id"`
	Type     EntityType `yaml:"type" json:"type"`
	Name     string     `yaml:"name" json:"name"`
	Location string     `yaml:"location" json:"location"`
	Category *string    `yaml:"category" json:"category,omitempty"`
	Path     string     `yaml:"path" json:"path"`
}

type Package struct {
	ID          int      `yaml:"id" json:"id"`
	Type        string   `yaml:"type" json:"type"` // Tours|Accommodations|Rentals
	Name        string   `yaml:"name" json:"name"`
	Provider    string   `yaml:"provider" json:"provider"`
	Rating      float64  `yaml:"rating" json:"rating"`
	Reviews     int      `yaml:"reviews" json:"reviews"`
	Duration    string   `yaml:"duration" json:"duration"`
	Location    string   `yaml:"location" json:"location"`
	Price       int      `yaml:"price" json:"price"` // PHP
	PriceType   string   `yaml:"price_type" json:"price_type"`
	Includes    []string `yaml:"includes" json:"includes"`
	Description string   `yaml:"description" json:"description"`
}

type document struct {
	Destinations []SearchableEntity `yaml:"destinations"`
	Businesses   []SearchableEntity `yaml:"businesses"`
	Packages     []Package          `yaml:"packages"`
}

// Catalog is immutable after Load.
type Catalog struct {
	items    []SearchableEntity
	packages []Package
	byID     map[int]Package
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) { return Parse(embedded) }

func Parse(b []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{byID: make(map[int]Package, len(doc.Packages))}
	for _, d := range doc.Destinations {
		if d.Type == "" {
			d.Type = TypeDestination
		}
		c.items = append(c.items, d)
	}
	for _, b := range doc.Businesses {
		if b.Type == "" {
			b.Type = TypeBusiness
		}
		c.items = append(c.items, b)
	}
	for _, p := range doc.Packages {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate package id %d", p.ID)
		}
		c.byID[p.ID] = p
		c.packages = append(c.packages, p)
	}
	return c, nil
}

// MustLoad panics if the embedded catalog is broken.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Packages filters by type; "" and "All" return everything.
func (c *Catalog) Packages(typ string) []Package {
	out := make([]Package, 0, len(c.packages))
	for _, p := range c.packages {
		if typ == "" || strings.EqualFold(typ, "all") || strings.EqualFold(p.Type, typ) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Package(id int) (Package, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// PackageByName matches case-insensitively on the full name.
func (c *Catalog) PackageByName(name string) (Package, bool) {
	name = strings.TrimSpace(name)
	for _, p := range c.packages {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Package{}, false
}
