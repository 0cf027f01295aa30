package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/shiftsync/internal/calendar"
	"github.com/Tiliavir/shiftsync/internal/config"
	"github.com/Tiliavir/shiftsync/internal/storage"
)

// app bundles the configured dependencies shared by the commands.
type app struct {
	cfg    *config.Config
	loc    *time.Location
	logger *log.Logger
	repo   *storage.TwoTier
	remote *storage.RemoteStore
	tokens calendar.TokenStore

	closers []func() error
}

// loadApp reads the config and opens the stores it names. A configured but
// unreachable database is logged and the app continues local-only.
func loadApp(ctx context.Context) (*app, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)
	a := &app{cfg: cfg, loc: loc, logger: logger}

	base, err := storage.BaseDir()
	if err != nil {
		return nil, err
	}
	a.repo = &storage.TwoTier{
		Local:  storage.NewLocalCache(filepath.Join(base, "shifts")),
		Loc:    loc,
		Logger: logger,
	}

	if cfg.DatabaseURL != "" {
		db, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("remote store unavailable, working from local cache", "err", err)
		} else if err := storage.ApplyMigrations(ctx, db); err != nil {
			db.Close()
			logger.Warn("remote store migration failed, working from local cache", "err", err)
		} else {
			a.remote = storage.NewRemoteStore(db)
			a.repo.Remote = a.remote
			a.closers = append(a.closers, db.Close)
		}
	}

	if cfg.RedisURL != "" {
		rs, err := calendar.NewRedisTokenStore(cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, using token file", "err", err)
		} else {
			a.tokens = rs
			a.closers = append(a.closers, rs.Close)
		}
	}
	if a.tokens == nil {
		a.tokens = calendar.NewFileTokenStore(filepath.Join(base, "auth"))
	}
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "shiftsync"})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func (a *app) oauthConfig() (*oauth2.Config, error) {
	g := a.cfg.Google
	if g.ClientID == "" || g.ClientSecret == "" {
		return nil, errors.New("google.client_id and google.client_secret must be set in the config file or GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET")
	}
	return calendar.OAuthConfig(g.ClientID, g.ClientSecret, g.RedirectURL), nil
}

// reconciler returns a calendar reconciler authenticated as the configured
// user. It fails with calendar.ErrNotConnected when no token is stored.
func (a *app) reconciler(ctx context.Context) (*calendar.Reconciler, error) {
	oc, err := a.oauthConfig()
	if err != nil {
		return nil, err
	}
	hc, err := calendar.HTTPClient(ctx, oc, a.tokens, a.cfg.UserID, a.logger)
	if err != nil {
		return nil, err
	}
	return &calendar.Reconciler{API: calendar.NewClient(hc, ""), Logger: a.logger}, nil
}

func (a *app) syncOptions() calendar.SyncOptions {
	return calendar.SyncOptions{Prefix: a.cfg.Calendar.EventPrefix, Buffer: a.cfg.SyncBuffer(), Loc: a.loc}
}

func (a *app) reminderOptions(minutes int) calendar.ReminderOptions {
	if minutes <= 0 {
		minutes = a.cfg.Calendar.ReminderMinutes
	}
	return calendar.ReminderOptions{Minutes: minutes, Buffer: a.cfg.ReminderBuffer(), Loc: a.loc}
}

// mustApp loads the app or exits with status 2.
func mustApp(ctx context.Context) *app {
	a, err := loadApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return a
}
