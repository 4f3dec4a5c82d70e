// Package bootstrap assembles the application from loaded configuration:
// logger first, then the advisor catalog and menus, then the dialogue engine.
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mentorline/mentorbot/catalog"
	coreconfig "github.com/mentorline/mentorbot/core/config"
	"github.com/mentorline/mentorbot/core/logger"
	"github.com/mentorline/mentorbot/dialog"
	"github.com/mentorline/mentorbot/session"
)

// Options control the bootstrap pipeline. Nil hooks fall back to the real
// implementations; tests swap them out.
type Options struct {
	Config *coreconfig.Config

	LoggerInit  func(*coreconfig.Config) error
	LoadCatalog func(path string) (*catalog.Catalog, error)
	LoadMenus   func(path string) (dialog.Menus, error)
}

// Result exposes everything initialized by the bootstrap pipeline.
type Result struct {
	Catalog *catalog.Catalog
	Menus   dialog.Menus
	Store   session.Store
	Engine  *dialog.Engine
}

// Run initializes the logger, loads the catalog and menus, and builds the
// dialogue engine. A missing or empty catalog is fatal: the bot must not
// serve without it.
func Run(opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.Init
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	loadCatalog := opts.LoadCatalog
	if loadCatalog == nil {
		loadCatalog = catalog.Load
	}
	start := time.Now()
	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: catalog load failed: %w", err)
	}
	logger.Info(logger.Background(), "catalog", "catalog.loaded",
		slog.String("path", cfg.Catalog.Path),
		slog.Int("advisors", cat.Len()),
		slog.Duration("duration", logger.Took(start)),
	)

	menus := dialog.DefaultMenus()
	if cfg.Menus.Path != "" {
		loadMenus := opts.LoadMenus
		if loadMenus == nil {
			loadMenus = dialog.LoadMenus
		}
		menus, err = loadMenus(cfg.Menus.Path)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: menus load failed: %w", err)
		}
	}

	store := session.NewMemoryStore(cfg.Session.TTL(), cfg.Session.Sweep())
	matcher := catalog.NewMatcher(cat, catalog.Policy(cfg.Catalog.Policy), nil)
	engine := dialog.NewEngine(store, matcher, menus)

	return &Result{
		Catalog: cat,
		Menus:   menus,
		Store:   store,
		Engine:  engine,
	}, nil
}
