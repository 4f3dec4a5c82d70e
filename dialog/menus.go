package dialog

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category pairs a top-level menu label with its detail labels.
type Category struct {
	Name    string   `yaml:"name"`
	Details []string `yaml:"details"`
}

// Menus is the fixed dialogue configuration: the phrases that open a
// conversation and the two-level menu tree. Label matching is exact and
// case-sensitive throughout.
type Menus struct {
	StartPhrases []string   `yaml:"start_phrases"`
	Categories   []Category `yaml:"categories"`
}

// DefaultMenus returns the compiled-in menu set.
func DefaultMenus() Menus {
	return Menus{
		StartPhrases: []string{"Start", "Hello", "Begin"},
		Categories: []Category{
			{Name: "Relationships", Details: []string{"Unrequited love", "Breakup", "Friendship"}},
			{Name: "Future path", Details: []string{"University", "Vocational school", "Employment"}},
			{Name: "Study", Details: []string{"English", "Math", "Japanese"}},
			{Name: "Other", Details: []string{"Daily life", "Relationships", "Health"}},
		},
	}
}

// LoadMenus reads a menu configuration from a YAML file.
func LoadMenus(path string) (Menus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Menus{}, fmt.Errorf("menus: read %s: %w", path, err)
	}
	var m Menus
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Menus{}, fmt.Errorf("menus: parse YAML: %w", err)
	}
	if err := m.validate(); err != nil {
		return Menus{}, err
	}
	return m, nil
}

func (m Menus) validate() error {
	if len(m.StartPhrases) == 0 {
		return fmt.Errorf("menus: start_phrases must not be empty")
	}
	if len(m.Categories) == 0 {
		return fmt.Errorf("menus: categories must not be empty")
	}
	seen := make(map[string]struct{}, len(m.Categories))
	for _, c := range m.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("menus: category name must not be empty")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("menus: duplicate category %q", name)
		}
		seen[name] = struct{}{}
		if len(c.Details) == 0 {
			return fmt.Errorf("menus: category %q has no details", name)
		}
	}
	return nil
}

// IsStart reports whether text is one of the recognized start phrases.
func (m Menus) IsStart(text string) bool {
	return slices.Contains(m.StartPhrases, text)
}

// CategoryNames returns the category labels in configured order.
func (m Menus) CategoryNames() []string {
	names := make([]string, len(m.Categories))
	for i, c := range m.Categories {
		names[i] = c.Name
	}
	return names
}

// Details returns the detail labels for a category, or false when the
// category is not configured.
func (m Menus) Details(category string) ([]string, bool) {
	for _, c := range m.Categories {
		if c.Name == category {
			return c.Details, true
		}
	}
	return nil, false
}
