package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/idilsaglam/quickcollect/internal/app"
	"github.com/idilsaglam/quickcollect/internal/clipboard"
	"github.com/idilsaglam/quickcollect/internal/config"
	"github.com/idilsaglam/quickcollect/internal/enhance"
	"github.com/idilsaglam/quickcollect/internal/export"
	"github.com/idilsaglam/quickcollect/internal/logging"
	"github.com/idilsaglam/quickcollect/internal/store"
	"github.com/idilsaglam/quickcollect/internal/store/jsonstore"
	"github.com/idilsaglam/quickcollect/internal/store/sqlitestore"
	"github.com/idilsaglam/quickcollect/internal/ui"
)

// App carries root flags and the lazily built runtime shared by subcommands.
type App struct {
	ConfigPath string
	DataDir    string
	Backend    string
	Verbose    bool
	Theme      string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Test seams; nil means the real implementation.
	Logger    *zap.Logger
	Generator enhance.Generator
	Clipboard clipboard.Writer

	cfg      *config.Config
	backend  store.Backend
	items    *store.Items
	ctrl     *app.Controller
	closeLog func()
}

func newApp() *App {
	return &App{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Config loads configuration once, applying root flag overrides.
func (a *App) Config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	path := a.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if a.DataDir != "" {
		cfg.Storage.Dir = a.DataDir
	}
	if a.Backend != "" {
		cfg.Storage.Backend = a.Backend
	}
	if a.Theme != "" {
		cfg.UI.Theme = a.Theme
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *App) logger() (*zap.Logger, error) {
	if a.Logger != nil {
		return a.Logger, nil
	}
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	l, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.LogPath(),
		Verbose: a.Verbose,
	})
	if err != nil {
		return nil, err
	}
	a.Logger = l
	a.closeLog = func() { _ = l.Sync() }
	return l, nil
}

func (a *App) openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return sqlitestore.Open(ctx, filepath.Join(cfg.Storage.Dir, "quickcollect.sqlite"))
	case "json", "":
		return jsonstore.New(cfg.Storage.Dir), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// Items opens the backend and loads the collection.
func (a *App) Items(ctx context.Context) (*store.Items, error) {
	if a.items != nil {
		return a.items, nil
	}
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	log, err := a.logger()
	if err != nil {
		return nil, err
	}
	b, err := a.openBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.backend = b
	a.items = store.New(b, log)
	a.items.Load(ctx)
	return a.items, nil
}

func (a *App) generator(ctx context.Context, cfg *config.Config, log *zap.Logger) enhance.Generator {
	if a.Generator != nil {
		return a.Generator
	}
	if cfg.Enhancer.Provider != "" && cfg.Enhancer.Provider != "gemini" {
		return enhance.Unavailable{Err: fmt.Errorf("unsupported enhancer provider %q", cfg.Enhancer.Provider)}
	}
	cred, err := cfg.Credential()
	if err != nil {
		log.Warn("credential lookup failed", zap.Error(err))
		return enhance.Unavailable{Err: err}
	}
	if cred == nil {
		return enhance.Unavailable{Err: enhance.ErrNoCredential}
	}
	timeout, _ := cfg.EnhancerTimeout()
	gen, err := enhance.NewGenAI(ctx, enhance.GenAIOptions{
		APIKey:  cred.APIKey,
		Model:   cfg.Enhancer.Model,
		Timeout: timeout,
		BaseURL: cfg.Enhancer.BaseURL,
	})
	if err != nil {
		log.Warn("enhancer unavailable", zap.Error(err))
		return enhance.Unavailable{Err: err}
	}
	log.Debug("enhancer ready", zap.String("generator", gen.Name()), zap.String("credential", cred.Source))
	return gen
}

// Enhancer builds the description enhancer.
func (a *App) Enhancer(ctx context.Context) (*enhance.Enhancer, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	log, err := a.logger()
	if err != nil {
		return nil, err
	}
	return enhance.New(a.generator(ctx, cfg, log), log), nil
}

// Controller wires store, enhancer, exporter and clipboard together.
func (a *App) Controller(ctx context.Context) (*app.Controller, error) {
	if a.ctrl != nil {
		return a.ctrl, nil
	}
	items, err := a.Items(ctx)
	if err != nil {
		return nil, err
	}
	enh, err := a.Enhancer(ctx)
	if err != nil {
		return nil, err
	}
	cfg := a.cfg
	ttl, _ := cfg.NoticeTTL()
	clip := a.Clipboard
	if clip == nil {
		clip = clipboard.New(cfg.Clipboard.Mode)
	}
	a.ctrl = app.New(items, enh, app.Options{
		Exporter: export.Exporter{
			Header:        export.HeaderFor(cfg.Export.Locale),
			FlattenSingle: cfg.Export.FlattenSingleRow,
		},
		Clipboard: clip,
		NoticeTTL: ttl,
		Logger:    a.Logger,
	})
	return a.ctrl, nil
}

// Close releases the backend and flushes logs.
func (a *App) Close() error {
	var errs []error
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
		a.backend = nil
	}
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
	return errors.Join(errs...)
}

// applyTheme configures plain-terminal rendering from config.
func (a *App) applyTheme() {
	if cfg, err := a.Config(); err == nil {
		ui.SetTheme(cfg.UI.Theme)
	}
	ui.SetOutput(a.Out, a.Err)
}
