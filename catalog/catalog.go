// Package catalog holds the static advisor dataset and the matching logic
// that selects an advisor by category and detail tags.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Advisor is a single recommendable record. The catalog is immutable after
// load; records are value types and safe to share across requests.
type Advisor struct {
	Name        string
	Description string
	PhotoURL    string
	// PrimaryTags are category labels this advisor covers.
	PrimaryTags []string
	// DetailTags are second-level labels scoped to the categories.
	DetailTags []string
}

// HasPrimary reports whether tag is one of the advisor's category labels.
func (a Advisor) HasPrimary(tag string) bool {
	return slices.Contains(a.PrimaryTags, tag)
}

// HasDetail reports whether tag is one of the advisor's detail labels.
func (a Advisor) HasDetail(tag string) bool {
	return slices.Contains(a.DetailTags, tag)
}

// HasAny reports whether tag appears in either tag set.
func (a Advisor) HasAny(tag string) bool {
	return a.HasPrimary(tag) || a.HasDetail(tag)
}

// Catalog is the normalized, read-only advisor dataset.
type Catalog struct {
	advisors []Advisor
}

// Advisors returns the records in load order.
func (c *Catalog) Advisors() []Advisor {
	return c.advisors
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.advisors)
}

// recordDoc is the on-disk record shape. Source variants disagree on the
// description key, so desc and comment are accepted as aliases.
type recordDoc struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Desc        string   `yaml:"desc" json:"desc"`
	Comment     string   `yaml:"comment" json:"comment"`
	PhotoURL    string   `yaml:"photo_url" json:"photo_url"`
	Tags        []string `yaml:"tags" json:"tags"`
	SubTags     []string `yaml:"sub_tags" json:"sub_tags"`
}

func (r recordDoc) description() string {
	for _, s := range []string{r.Description, r.Desc, r.Comment} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// document accepts both observed source shapes: a flat tagged list and a
// nested category -> detail -> record tree. Either key may be present.
type document struct {
	Advisors   []recordDoc                     `yaml:"advisors" json:"advisors"`
	Categories map[string]map[string]recordDoc `yaml:"categories" json:"categories"`
}

// Load reads an advisor catalog from a YAML or JSON file and normalizes it
// into a flat tagged list. An empty or malformed document is an error: the
// process must not serve without a complete catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data, strings.ToLower(filepath.Ext(path)))
}

// Parse decodes catalog bytes; ext selects the decoder (".json" or YAML).
func Parse(data []byte, ext string) (*Catalog, error) {
	var doc document
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("catalog: parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("catalog: parse YAML: %w", err)
		}
	}
	return normalize(doc)
}

func normalize(doc document) (*Catalog, error) {
	var advisors []Advisor

	for i, rec := range doc.Advisors {
		if strings.TrimSpace(rec.Name) == "" {
			return nil, fmt.Errorf("catalog: advisors[%d]: name is required", i)
		}
		if len(rec.Tags) == 0 {
			return nil, fmt.Errorf("catalog: advisors[%d] (%s): tags are required", i, rec.Name)
		}
		advisors = append(advisors, Advisor{
			Name:        rec.Name,
			Description: rec.description(),
			PhotoURL:    rec.PhotoURL,
			PrimaryTags: append([]string(nil), rec.Tags...),
			DetailTags:  append([]string(nil), rec.SubTags...),
		})
	}

	// Map iteration order is randomized; sort keys so first-match
	// semantics stay deterministic across runs.
	cats := make([]string, 0, len(doc.Categories))
	for c := range doc.Categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		details := doc.Categories[cat]
		keys := make([]string, 0, len(details))
		for d := range details {
			keys = append(keys, d)
		}
		sort.Strings(keys)
		for _, det := range keys {
			rec := details[det]
			if strings.TrimSpace(rec.Name) == "" {
				return nil, fmt.Errorf("catalog: categories[%s][%s]: name is required", cat, det)
			}
			advisors = append(advisors, Advisor{
				Name:        rec.Name,
				Description: rec.description(),
				PhotoURL:    rec.PhotoURL,
				PrimaryTags: []string{cat},
				DetailTags:  []string{det},
			})
		}
	}

	if len(advisors) == 0 {
		return nil, fmt.Errorf("catalog: no advisor records found")
	}
	return &Catalog{advisors: advisors}, nil
}
