package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/styrkr/styrkr/internal/content"
	"github.com/styrkr/styrkr/internal/envstruct"
	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/flightrecorder"
	"github.com/styrkr/styrkr/internal/logging"
	"github.com/styrkr/styrkr/internal/profile"
	"github.com/styrkr/styrkr/internal/sqlite"
	"github.com/styrkr/styrkr/internal/workout"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	templateFS     fs.FS
	content        *content.Store
	workoutService *workout.Service
	flightRecorder *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"STYRKR_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"STYRKR_SQLITE_URL" envDefault:"./styrkr.sqlite3"`
	// ContentDir holds exercises.latest.json and plan.template.json. Empty uses the embedded defaults.
	ContentDir string `env:"STYRKR_CONTENT_DIR" envDefault:""`
	// WatchContent reloads the documents in ContentDir when they change.
	WatchContent bool `env:"STYRKR_WATCH_CONTENT" envDefault:"false"`
	// WeekStart is the first day of a calendar week, for example mon or sun. Swaps never cross a week.
	WeekStart string `env:"STYRKR_WEEK_START" envDefault:"mon"`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"STYRKR_TEMPLATE_PATH" envDefault:""`
	// SessionLifetime is how long a browser login lasts.
	SessionLifetime time.Duration `env:"STYRKR_SESSION_LIFETIME" envDefault:"12h"`
	// TracesDir enables the flight recorder. Traces of timed out requests are written there.
	TracesDir string `env:"STYRKR_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	weekStart, ok := profile.ParseWeekday(cfg.WeekStart)
	if !ok {
		return errors.New("invalid week start", slog.String("week_start", cfg.WeekStart))
	}

	var htmlTemplatePath string
	if htmlTemplatePath, err = resolveAndVerifyTemplatePath(cfg.TemplatePath); err != nil {
		return errors.Wrap(err, "resolve template path")
	}

	store, err := content.NewStore(ctx, logger, cfg.ContentDir)
	if err != nil {
		return errors.Wrap(err, "load content", slog.String("dir", cfg.ContentDir))
	}
	if cfg.WatchContent && cfg.ContentDir != "" {
		go func() {
			if watchErr := store.Watch(ctx); watchErr != nil {
				logger.LogAttrs(ctx, slog.LevelError, "content watcher stopped", errors.SlogError(watchErr))
			}
		}()
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite, 24*time.Hour) //nolint:mnd // day
	defer sessionStore.StopCleanup()

	var recorder *flightrecorder.Recorder
	if cfg.TracesDir != "" {
		if recorder, err = startFlightRecorder(ctx, logger, cfg.TracesDir); err != nil {
			return err
		}
		defer recorder.Stop(context.WithoutCancel(ctx))
	}

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(sessionStore, cfg.SessionLifetime),
		templateFS:     os.DirFS(htmlTemplatePath),
		content:        store,
		workoutService: workout.NewService(db, store, weekStart.Time(), logger),
		flightRecorder: recorder,
	}

	handler, err := app.routes()
	if err != nil {
		return errors.Wrap(err, "routes")
	}
	if err = app.configureAndStartServer(ctx, cfg.Addr, handler); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func startFlightRecorder(ctx context.Context, logger *slog.Logger, dir string) (*flightrecorder.Recorder, error) {
	recorder, err := flightrecorder.New(flightrecorder.Config{
		Logger:   logger,
		Dir:      dir,
		MinAge:   0,
		MaxBytes: 0,
		Cooldown: 0,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new flight recorder")
	}
	if err = recorder.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "start flight recorder")
	}
	return recorder, nil
}

func initializeSessionManager(store scs.Store, lifetime time.Duration) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = lifetime
	sessionManager.Cookie.Name = "__Host-session"
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	logger := logging.New(os.Stdout, logging.ParseLevel(os.Getenv("STYRKR_LOG_LEVEL")))
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
