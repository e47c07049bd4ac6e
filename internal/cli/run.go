package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bigpicturetv/bigpicturetv/internal/config"
	"github.com/bigpicturetv/bigpicturetv/internal/daemon"
	"github.com/bigpicturetv/bigpicturetv/internal/database"
	"github.com/bigpicturetv/bigpicturetv/internal/gamemode"
	"github.com/bigpicturetv/bigpicturetv/internal/logging"
	"github.com/bigpicturetv/bigpicturetv/internal/reporter"
	"github.com/bigpicturetv/bigpicturetv/internal/watcher"
	"github.com/bigpicturetv/bigpicturetv/internal/web"
	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
	"github.com/bigpicturetv/bigpicturetv/pkg/platform"
)

const shutdownTimeout = 10 * time.Second

func platformOptions(cfg *config.Config, logger zerolog.Logger) platform.Options {
	return platform.Options{
		CommandTimeout:    cfg.Tracker.CommandTimeout,
		DisplaySwitchPath: cfg.Integrations.DisplaySwitchPath,
		DiscordLauncher:   cfg.Integrations.DiscordLauncher,
		SteamLanguage:     cfg.Integrations.SteamLanguage,
		Logger:            logger,
	}
}

// openSettings loads settings.json, creating it with defaults when missing
func openSettings(cfg *config.Config, logger zerolog.Logger) (*config.SettingsStore, error) {
	store := config.NewSettingsStore(cfg.Settings.Path, cfg.Tracker.SettleDelay, logger)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func openRepository(cfg *config.Config) (*database.DB, *database.Repository, error) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, database.NewRepository(db), nil
}

// pruneTransitions drops history past the retention window. Failures only cost disk space.
func pruneTransitions(cfg *config.Config, repo *database.Repository, logger zerolog.Logger) {
	cutoff, ok := cfg.RetentionCutoff(time.Now())
	if !ok {
		return
	}
	deleted, err := repo.DeleteOldTransitions(cutoff)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to prune old transitions")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Time("before", cutoff).Msg("pruned old transitions")
	}
}

// detectCapabilities looks for optional tooling once and logs the actions it turns off
func detectCapabilities(ctx context.Context, cfg *config.Config, port effects.Port, logger zerolog.Logger) effects.Capabilities {
	ctx, cancel := context.WithTimeout(ctx, cfg.Tracker.PollTimeout)
	defer cancel()

	caps := effects.DetectCapabilities(ctx, port)
	if !caps.AudioSwitch {
		logger.Warn().Msg("no audio switching tool installed, audio switch disabled")
	}
	if !caps.Discord {
		logger.Warn().Msg("discord does not appear to be installed, close discord disabled")
	}
	return caps
}

// spawnDaemon starts the detached child unless one is already running
func (a *app) spawnDaemon(out io.Writer, args []string, withWeb bool) error {
	dm := daemon.New(a.config.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return errors.Wrap(err, "failed to check daemon status")
	}
	if running {
		return errors.Errorf("daemon is already running (PID: %d)", pid)
	}

	pid, err = daemon.Spawn(args, a.config.Daemon.LogFile)
	if err != nil {
		return errors.Wrap(err, "failed to start daemon process")
	}

	fmt.Fprintf(out, "%s (PID: %d)\n", successStyle.Render("Daemon started"), pid)
	if withWeb {
		fmt.Fprintf(out, "Status API: http://%s\n", a.config.WebAddr())
	}
	fmt.Fprintf(out, "Logs: %s\n", a.config.Daemon.LogFile)
	return nil
}

// runDaemon runs the watcher (and optionally the status API) until a
// termination signal arrives.
func (a *app) runDaemon(ctx context.Context, withWeb bool) error {
	cfg := a.config
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	logger := a.logger
	if daemon.IsChild() {
		logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			defer logFile.Close()
			logger = logging.New(logging.Config{
				Level:      logging.ParseLevel(cfg.Logging.Level),
				Format:     cfg.Logging.Format,
				TimeFormat: logging.DefaultConfig().TimeFormat,
				Output:     logFile,
			})
		}
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	if running, pid, err := dm.IsRunning(); err == nil && running && pid != os.Getpid() {
		return errors.Errorf("daemon is already running (PID: %d)", pid)
	}

	db, repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	pruneTransitions(cfg, repo, logger)

	store, err := openSettings(cfg, logger)
	if err != nil {
		return err
	}
	if err := store.Watch(); err != nil {
		logger.Warn().Err(err).Msg("settings file will not be reloaded on change")
	}

	plat, err := platform.New(platformOptions(cfg, logger))
	if err != nil {
		return errors.Wrap(err, "failed to initialize platform")
	}
	defer plat.Close()

	controller := gamemode.NewController(logger)
	svc := watcher.NewService(cfg, store, controller, plat.Port, repo, logger)
	svc.SetCapabilities(detectCapabilities(ctx, cfg, plat.Port, logger))
	store.OnChange(func(gamemode.Settings) { svc.Reschedule() })

	if err := dm.WritePID(); err != nil {
		return errors.Wrap(err, "failed to write PID file")
	}
	defer dm.RemovePID()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("platform", plat.Name).Msg("starting bigpicturetv daemon")
	logger.Debug().Msg(cfg.String())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := svc.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if withWeb {
		handler := web.NewHandler(svc, repo, reporter.New(repo, cfg.Location()), logger)
		server := web.NewServer(cfg.WebAddr(), handler, logger)

		logger.Info().Str("addr", server.GetAddress()).Msg("status API enabled")
		g.Go(server.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info().Msg("daemon stopped")
	return err
}
