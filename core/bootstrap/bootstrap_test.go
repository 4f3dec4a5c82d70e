package bootstrap

import (
	"errors"
	"strings"
	"testing"

	"github.com/mentorline/mentorbot/catalog"
	coreconfig "github.com/mentorline/mentorbot/core/config"
	"github.com/mentorline/mentorbot/dialog"
)

func testConfig() *coreconfig.Config {
	return &coreconfig.Config{
		Line: coreconfig.LineConfig{
			ChannelSecret: "secret",
			ChannelToken:  "token",
		},
		Catalog: coreconfig.CatalogConfig{
			Path:   "advisors.yaml",
			Policy: coreconfig.PolicyStrict,
		},
	}
}

func stubCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(`
advisors:
  - name: Advisor A
    desc: Algebra and exams
    tags: [Study]
    sub_tags: [Math]
`), ".yaml")
	if err != nil {
		t.Fatalf("catalog.Parse: %v", err)
	}
	return cat
}

func TestRunBuildsEngine(t *testing.T) {
	res, err := Run(Options{
		Config:     testConfig(),
		LoggerInit: func(*coreconfig.Config) error { return nil },
		LoadCatalog: func(path string) (*catalog.Catalog, error) {
			if path != "advisors.yaml" {
				t.Fatalf("catalog path = %q", path)
			}
			return stubCatalog(t), nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Engine == nil || res.Store == nil || res.Catalog == nil {
		t.Fatalf("incomplete result: %+v", res)
	}
	if len(res.Menus.Categories) == 0 {
		t.Fatal("expected default menus when no menus path is configured")
	}
}

func TestRunNilConfig(t *testing.T) {
	if _, err := Run(Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunCatalogFailureIsFatal(t *testing.T) {
	_, err := Run(Options{
		Config:     testConfig(),
		LoggerInit: func(*coreconfig.Config) error { return nil },
		LoadCatalog: func(string) (*catalog.Catalog, error) {
			return nil, errors.New("file missing")
		},
	})
	if err == nil || !strings.Contains(err.Error(), "catalog load failed") {
		t.Fatalf("err = %v, want catalog load failure", err)
	}
}

func TestRunLoadsMenusWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Menus.Path = "menus.yaml"

	custom := dialog.Menus{
		StartPhrases: []string{"Go"},
		Categories:   []dialog.Category{{Name: "Health", Details: []string{"Sleep"}}},
	}
	res, err := Run(Options{
		Config:      cfg,
		LoggerInit:  func(*coreconfig.Config) error { return nil },
		LoadCatalog: func(string) (*catalog.Catalog, error) { return stubCatalog(t), nil },
		LoadMenus: func(path string) (dialog.Menus, error) {
			if path != "menus.yaml" {
				t.Fatalf("menus path = %q", path)
			}
			return custom, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Menus.Categories) != 1 || res.Menus.Categories[0].Name != "Health" {
		t.Fatalf("menus = %+v", res.Menus)
	}
}
