package catalog

import (
	"path/filepath"
	"strings"
	"testing"
)

const flatDoc = `
advisors:
  - name: Advisor A
    description: Algebra and calculus mentor
    tags: [Study]
    sub_tags: [Math]
  - name: Advisor B
    desc: Career counselor
    photo_url: https://example.com/b.png
    tags: [Future path]
    sub_tags: [Employment, University]
`

const nestedDoc = `
categories:
  Study:
    Math:
      name: Advisor A
      comment: Algebra and calculus mentor
  Future path:
    Employment:
      name: Advisor B
      description: Career counselor
`

func TestParseFlat(t *testing.T) {
	c, err := Parse([]byte(flatDoc), ".yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	a := c.Advisors()[0]
	if a.Name != "Advisor A" || a.Description != "Algebra and calculus mentor" {
		t.Errorf("unexpected record: %+v", a)
	}
	if !a.HasPrimary("Study") || !a.HasDetail("Math") {
		t.Errorf("tags not normalized: %+v", a)
	}
	b := c.Advisors()[1]
	if b.Description != "Career counselor" {
		t.Errorf("desc alias not honored: %+v", b)
	}
	if b.PhotoURL != "https://example.com/b.png" {
		t.Errorf("photo_url lost: %+v", b)
	}
	if !b.HasDetail("University") {
		t.Errorf("multi-detail record broken: %+v", b)
	}
}

func TestParseNested(t *testing.T) {
	c, err := Parse([]byte(nestedDoc), ".yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	// Nested categories are sorted for deterministic order.
	first := c.Advisors()[0]
	if first.Name != "Advisor B" || !first.HasPrimary("Future path") || !first.HasDetail("Employment") {
		t.Errorf("unexpected first record: %+v", first)
	}
	second := c.Advisors()[1]
	if second.Description != "Algebra and calculus mentor" {
		t.Errorf("comment alias not honored: %+v", second)
	}
}

func TestParseShapesAgree(t *testing.T) {
	flat, err := Parse([]byte(flatDoc), ".yaml")
	if err != nil {
		t.Fatalf("flat: %v", err)
	}
	nested, err := Parse([]byte(nestedDoc), ".yaml")
	if err != nil {
		t.Fatalf("nested: %v", err)
	}
	for _, pair := range [][2]string{{"Study", "Math"}, {"Future path", "Employment"}} {
		fm := NewMatcher(flat, PolicyStrict, nil)
		nm := NewMatcher(nested, PolicyStrict, nil)
		fa, fok := fm.Match(pair[0], pair[1])
		na, nok := nm.Match(pair[0], pair[1])
		if !fok || !nok {
			t.Fatalf("%v: match missing (flat=%v nested=%v)", pair, fok, nok)
		}
		if fa.Name != na.Name {
			t.Errorf("%v: flat=%s nested=%s", pair, fa.Name, na.Name)
		}
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"advisors":[{"name":"Advisor J","description":"d","tags":["Other"],"sub_tags":["Health"]}]}`
	c, err := Parse([]byte(doc), ".json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Len() != 1 || c.Advisors()[0].Name != "Advisor J" {
		t.Fatalf("unexpected catalog: %+v", c.Advisors())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"empty document", "{}", "no advisor records"},
		{"missing name flat", "advisors:\n  - tags: [Study]\n", "name is required"},
		{"missing tags flat", "advisors:\n  - name: X\n", "tags are required"},
		{"missing name nested", "categories:\n  Study:\n    Math: {description: d}\n", "name is required"},
		{"malformed yaml", "advisors: [unclosed", "parse YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), ".yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "advisors.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("expected records")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
