// Package checklist loads the checklist templates used to build inspection
// sessions for each equipment category.
package checklist

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Template is the set of checklist items for one equipment category.
type Template struct {
	Frequency domain.Frequency
	Daily     []domain.ChecklistItem
	Periodic  []domain.ChecklistItem
}

// Catalog maps equipment categories to their templates. It is read-only
// after loading and safe for concurrent use.
type Catalog struct {
	templates map[domain.EquipmentCategory]Template
}

// file mirrors the YAML schema of templates.yaml.
type file struct {
	Categories map[string]struct {
		Frequency string     `yaml:"frequency"`
		Daily     []itemFile `yaml:"daily"`
		Periodic  []itemFile `yaml:"periodic"`
	} `yaml:"categories"`
}

type itemFile struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// Default returns the catalog built from the embedded templates.
func Default() (*Catalog, error) {
	return Parse(defaultTemplates)
}

// Load reads templates from path. An empty path returns the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checklist templates: %w", err)
	}
	return Parse(raw)
}

// Parse builds a catalog from YAML and validates every template.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse checklist templates: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("checklist templates: no categories defined")
	}

	c := &Catalog{templates: make(map[domain.EquipmentCategory]Template, len(f.Categories))}
	for name, cat := range f.Categories {
		category := domain.EquipmentCategory(name)
		if !category.IsValid() {
			return nil, fmt.Errorf("checklist templates: unknown category %q", name)
		}

		freq := domain.Frequency(strings.TrimSpace(cat.Frequency))
		if !freq.IsValid() || freq == domain.FrequencyDaily {
			return nil, fmt.Errorf("checklist templates: category %s: invalid periodic frequency %q", name, cat.Frequency)
		}

		daily, err := buildItems(cat.Daily)
		if err != nil {
			return nil, fmt.Errorf("checklist templates: category %s daily: %w", name, err)
		}
		periodic, err := buildItems(cat.Periodic)
		if err != nil {
			return nil, fmt.Errorf("checklist templates: category %s periodic: %w", name, err)
		}

		c.templates[category] = Template{Frequency: freq, Daily: daily, Periodic: periodic}
	}
	return c, nil
}

func buildItems(in []itemFile) ([]domain.ChecklistItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("no items")
	}
	seen := make(map[string]bool, len(in))
	items := make([]domain.ChecklistItem, 0, len(in))
	for i, it := range in {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			return nil, fmt.Errorf("item %d: id is required", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate item id %q", id)
		}
		seen[id] = true
		if strings.TrimSpace(it.Description) == "" {
			return nil, fmt.Errorf("item %q: description is required", id)
		}
		items = append(items, domain.ChecklistItem{
			ID:          id,
			Description: strings.TrimSpace(it.Description),
			IsRequired:  it.Required,
			Status:      domain.ItemStatusNotChecked,
		})
	}
	return items, nil
}

// Template returns the template for category.
func (c *Catalog) Template(category domain.EquipmentCategory) (Template, error) {
	const op = "checklist.template"

	t, ok := c.templates[category]
	if !ok {
		return Template{}, domain.Invalid(op, fmt.Sprintf("no checklist template for category %q", category))
	}
	return t, nil
}

// Items returns a fresh not-checked copy of the items for category and kind.
func (c *Catalog) Items(category domain.EquipmentCategory, kind domain.SessionKind) ([]domain.ChecklistItem, error) {
	const op = "checklist.items"

	t, err := c.Template(category)
	if err != nil {
		return nil, err
	}

	var src []domain.ChecklistItem
	switch kind {
	case domain.SessionKindDaily:
		src = t.Daily
	case domain.SessionKindPeriodic:
		src = t.Periodic
	default:
		return nil, domain.Invalid(op, fmt.Sprintf("unknown session kind %q", kind))
	}

	items := make([]domain.ChecklistItem, len(src))
	copy(items, src)
	return items, nil
}

// Frequency returns the periodic inspection frequency for category.
func (c *Catalog) Frequency(category domain.EquipmentCategory) (domain.Frequency, error) {
	t, err := c.Template(category)
	if err != nil {
		return "", err
	}
	return t.Frequency, nil
}

// Categories returns the number of categories in the catalog.
func (c *Catalog) Categories() int {
	return len(c.templates)
}
