package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/cache"
	"github.com/foampro/foamsync/internal/config"
	"github.com/foampro/foamsync/internal/gateway"
	"github.com/foampro/foamsync/internal/jobs"
	"github.com/foampro/foamsync/internal/notify"
	"github.com/foampro/foamsync/internal/prefs"
	"github.com/foampro/foamsync/internal/state"
	"github.com/foampro/foamsync/internal/syncer"
	"github.com/foampro/foamsync/internal/ui"
)

// Version is set at build time.
var Version = "dev"

// Options configure the client.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/foamsync/prefs.toml
	// LogOutput overrides the log file; tests pass io.Discard.
	LogOutput io.Writer
}

// App holds the wired components of one client process.
type App struct {
	Config    config.Config
	PrefsPath string
	Log       *logrus.Logger
	Cache     *cache.Cache
	Gateway   *gateway.Client
	Store     *state.Store
	Notifier  *notify.Notifier
	Sync      *syncer.Engine
	Jobs      *jobs.Engine

	logFile *os.File
}

// New loads configuration and wires every component. Nothing talks to the
// network until Start.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &App{Config: cfg, PrefsPath: opts.PrefsPath}
	if err := a.openLog(opts.LogOutput); err != nil {
		return nil, err
	}

	a.Cache, err = cache.Open(cfg.CachePath(), a.Log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Gateway, err = gateway.NewClient(gateway.Options{
		Endpoint:   cfg.APIURL,
		Timeout:    cfg.RequestTimeout,
		Retries:    cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		UserAgent:  "foamsync/" + Version,
		Logger:     a.Log,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init gateway: %w", err)
	}
	if !a.Gateway.Configured() {
		a.Log.Warn("api_url not set, running offline")
	}

	a.Store = state.NewStore()
	a.Notifier = notify.New(a.Store, cfg.NotificationTTL, a.Log)

	a.Sync, err = syncer.New(syncer.Options{
		Store:         a.Store,
		Remote:        a.Gateway,
		Cache:         a.Cache,
		Notifier:      a.Notifier,
		Logger:        a.Log,
		Debounce:      cfg.Debounce,
		SuccessWindow: cfg.SuccessWindow,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Jobs, err = jobs.New(jobs.Options{
		Context:  ctx,
		Store:    a.Store,
		Remote:   a.Gateway,
		Sync:     a.Sync,
		Notifier: a.Notifier,
		Logger:   a.Log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openLog(out io.Writer) error {
	a.Log = logrus.New()
	a.Log.SetLevel(a.Config.LogLevel)
	a.Log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	if out != nil {
		a.Log.SetOutput(out)
		return nil
	}

	if err := os.MkdirAll(a.Config.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	file, err := os.OpenFile(a.Config.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	a.logFile = file
	a.Log.SetOutput(file)
	return nil
}

// Start recovers a cached session and loads company state. A failed cloud
// load is not fatal: the engine has already fallen back to the local
// backup or defaults.
func (a *App) Start(ctx context.Context) {
	if err := a.Sync.Start(ctx); err != nil {
		a.Log.WithError(err).Warn("startup sync incomplete")
	}
	StartCrewRefresher(ctx, a.Store, a.Sync, a.Config.CrewRefresh, a.Log)
}

// Close waits for background work and releases resources.
func (a *App) Close() {
	if a.Jobs != nil {
		a.Jobs.Wait()
	}
	if a.Sync != nil {
		a.Sync.Close()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil && a.Log != nil {
			a.Log.WithError(err).Warn("close cache")
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// Run boots the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	a, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Start(ctx)

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     a.Store,
		Sync:      a.Sync,
		Jobs:      a.Jobs,
		LogPath:   a.Config.LogPath(),
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	})
}
