package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/five82/spotwatch/internal/config"
	"github.com/five82/spotwatch/internal/logging"
	"github.com/five82/spotwatch/internal/monitor"
	"github.com/five82/spotwatch/internal/notify"
	"github.com/five82/spotwatch/internal/prefs"
	"github.com/five82/spotwatch/internal/server"
	"github.com/five82/spotwatch/internal/state"
	"github.com/five82/spotwatch/internal/toplogger"
	"github.com/five82/spotwatch/internal/ui"
)

// Options configure the spotwatch application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/spotwatch/prefs.toml
	DelaySecs  int    // seconds; zero uses the config value
	Listen     string // overrides [server] listen
	Dashboard  bool
}

// Run resolves the configured targets and polls them until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.DelaySecs > 0 {
		cfg.Delay = time.Duration(opts.DelaySecs) * time.Second
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.Dashboard && cfg.LogFile == "" {
		cfg.LogFile = config.DefaultLogPath()
	}

	logger, closeLog, err := buildLogger(cfg, opts.Dashboard)
	if err != nil {
		return err
	}
	defer closeLog()

	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))
	slog.SetDefault(logger)

	store := &state.Store{}
	store.Begin(runID, time.Now())

	client, err := toplogger.NewClient(cfg.APIURL, cfg.RequestsPerSecond)
	if err != nil {
		return fmt.Errorf("init toplogger client: %w", err)
	}

	targets, err := ResolveTargets(ctx, client, cfg.Targets, store, logger)
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return err
	}
	gate, closeGate, err := buildGate(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeGate()

	sched := &Scheduler{
		Fetcher:  monitor.NewSlotFetcher(client),
		Notifier: notifier,
		Gate:     gate,
		Store:    store,
		Delay:    cfg.Delay,
		Logger:   logger,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Server.Listen != "" {
		srv := server.New(store, logger)
		go func() {
			if err := srv.Run(runCtx, cfg.Server.Listen); err != nil {
				logger.Error("status server stopped",
					slog.String("event", "server.fail"),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	logger.Info("polling started",
		slog.String("event", "scheduler.start"),
		slog.Int("targets", len(targets)),
		slog.Duration("delay", sched.delay()),
	)

	if !opts.Dashboard {
		return sched.Run(runCtx, targets)
	}

	done := make(chan error, 1)
	go func() { done <- sched.Run(runCtx, targets) }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("dashboard preferences ignored",
			slog.String("event", "prefs.load"),
			slog.String("error", err.Error()),
		)
	}
	uiErr := ui.Run(ui.Options{
		Context:   runCtx,
		Store:     store,
		LogPath:   cfg.LogFile,
		Delay:     sched.delay(),
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	})
	cancel()
	schedErr := <-done
	if uiErr != nil {
		return fmt.Errorf("dashboard: %w", uiErr)
	}
	return schedErr
}

func buildLogger(cfg config.Config, dashboard bool) (*slog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), func() {}, nil
	}
	file, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = file
	if !dashboard {
		w = io.MultiWriter(os.Stderr, file)
	}
	return logging.New(w, cfg.LogLevel, cfg.LogFormat), func() { _ = file.Close() }, nil
}

func buildNotifier(cfg config.Config, logger *slog.Logger) (notify.Notifier, error) {
	notifiers := notify.Multi{notify.Log{Logger: logger}}

	if len(cfg.Notify.Command) > 0 {
		cmd, err := notify.NewCommand(cfg.Notify.Command)
		if err != nil {
			return nil, fmt.Errorf("init command notifier: %w", err)
		}
		notifiers = append(notifiers, cmd)
	}

	if cfg.Notify.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("init telegram notifier: %w", err)
		}
		notifiers = append(notifiers, tg)
		logger.Info("telegram notifications enabled",
			slog.String("event", "notify.telegram.ready"),
			slog.Int64("chat_id", cfg.Notify.TelegramChatID),
		)
	}
	return notifiers, nil
}

func buildGate(ctx context.Context, cfg config.Config, logger *slog.Logger) (notify.Gate, func(), error) {
	noop := func() {}
	if cfg.Notify.Cooldown <= 0 {
		return nil, noop, nil
	}
	if cfg.Notify.RedisAddr == "" {
		return notify.NewMemoryGate(cfg.Notify.Cooldown), noop, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Notify.RedisAddr,
		Password: cfg.Notify.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Notify.RedisAddr, err)
	}
	logger.Info("notification cooldown shared via redis",
		slog.String("event", "redis.connect"),
		slog.String("addr", cfg.Notify.RedisAddr),
		slog.Duration("cooldown", cfg.Notify.Cooldown),
	)
	return notify.NewRedisGate(client, cfg.Notify.Cooldown), func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis", slog.String("error", err.Error()))
		}
	}, nil
}

