// Command memex-agent is the voice-controlled web automation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/arvindram27/memex-agent/internal/agent"
	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/internal/config"
	"github.com/arvindram27/memex-agent/internal/health"
	"github.com/arvindram27/memex-agent/internal/history"
	historypg "github.com/arvindram27/memex-agent/internal/history/postgres"
	"github.com/arvindram27/memex-agent/internal/observe"
	"github.com/arvindram27/memex-agent/internal/pagectx"
	"github.com/arvindram27/memex-agent/internal/phonetic"
	"github.com/arvindram27/memex-agent/internal/resilience"
	"github.com/arvindram27/memex-agent/internal/resolve"
	"github.com/arvindram27/memex-agent/internal/server"
	"github.com/arvindram27/memex-agent/internal/suggest"
	"github.com/arvindram27/memex-agent/internal/transcript"
	"github.com/arvindram27/memex-agent/pkg/page/rodpage"
	"github.com/arvindram27/memex-agent/pkg/transcribe"
	transcribemock "github.com/arvindram27/memex-agent/pkg/transcribe/mock"
	"github.com/arvindram27/memex-agent/pkg/transcribe/whisper"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "memex-agent: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "memex-agent: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("memex-agent starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "memex-agent",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Transcriber ───────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinTranscribers(reg)

	var transcriber transcribe.Transcriber
	if cfg.Transcriber.Provider != "" {
		primary, err := reg.CreateTranscriber(cfg.Transcriber)
		if err != nil {
			slog.Error("failed to create transcriber", "provider", cfg.Transcriber.Provider, "err", err)
			return 1
		}
		transcriber = resilience.NewTranscriberFallback(primary, cfg.Transcriber.Provider, resilience.FallbackConfig{})
		slog.Info("transcriber created", "provider", cfg.Transcriber.Provider)
	} else {
		slog.Warn("no transcriber configured — audio commands disabled")
	}

	// ── Browser session ───────────────────────────────────────────────────────
	browser, err := rodpage.New(ctx, rodpage.Options{
		RemoteURL:         cfg.Browser.RemoteURL,
		Headless:          cfg.Browser.Headless,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		StartURL:          cfg.Browser.HomeURL,
	})
	if err != nil {
		slog.Error("failed to start browser session", "err", err)
		return 1
	}
	defer func() {
		if err := browser.Close(); err != nil {
			slog.Warn("browser close error", "err", err)
		}
	}()
	slog.Info("browser session ready", "headless", cfg.Browser.Headless, "remote", cfg.Browser.RemoteURL != "")

	// A crashed tab or dead DevTools connection trips the breaker so commands
	// fail fast instead of waiting out the navigation timeout each time.
	guard := resilience.NewBrowserGuard(browser, browser, resilience.CircuitBreakerConfig{Name: "browser"})

	// ── Interaction memory ────────────────────────────────────────────────────
	checkers := []health.Checker{
		{Name: "browser", Check: browser.Ping},
	}
	logOpts := []history.Option{history.WithCapacity(cfg.Memory.Capacity)}
	if dsn := cfg.Memory.PostgresDSN; dsn != "" {
		store, err := historypg.New(ctx, dsn)
		if err != nil {
			slog.Error("failed to connect to postgres", "err", err)
			return 1
		}
		defer store.Close()
		logOpts = append(logOpts, history.WithSink(store))
		checkers = append(checkers, health.Checker{Name: "database", Check: store.Ping})
		slog.Info("postgres interaction store connected")
	}
	log := history.New(logOpts...)

	// ── Pipeline ──────────────────────────────────────────────────────────────
	matcher := phonetic.New()
	tuning := resolve.DefaultTuning()
	if cfg.Pipeline.ConfidenceThreshold > 0 {
		tuning.ConfidenceThreshold = cfg.Pipeline.ConfidenceThreshold
	}
	if cfg.Pipeline.MaxTargets > 0 {
		tuning.MaxTargets = cfg.Pipeline.MaxTargets
	}
	if cfg.Pipeline.MaxSuggestions > 0 {
		tuning.MaxSuggestions = cfg.Pipeline.MaxSuggestions
	}

	ag, err := agent.New(agent.Config{
		Transcriber: transcriber,
		Describer:   guard,
		Automator:   guard,
		Corrector:   transcript.NewCorrector(matcher),
		Classifier:  command.NewClassifier(),
		Builder:     pagectx.NewBuilder(log),
		Resolver:    resolve.New(tuning, matcher),
		Suggester:   suggest.NewEngine(),
		Log:         log,
		Timeout:     cfg.Pipeline.Timeout,
		HomeURL:     cfg.Browser.HomeURL,
		Metrics:     metrics,
	})
	if err != nil {
		slog.Error("failed to assemble pipeline", "err", err)
		return 1
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, next *config.Config) {
		applyConfigChange(logLevel, old, next)
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Server ────────────────────────────────────────────────────────────────
	srvCfg := server.Config{ListenAddr: cfg.Server.ListenAddr}
	if cfg.Server.TLS != nil {
		srvCfg.CertFile = cfg.Server.TLS.CertFile
		srvCfg.KeyFile = cfg.Server.TLS.KeyFile
	}
	srv := server.New(srvCfg, ag, health.New(checkers...), metrics, logger)

	slog.Info("server ready — press Ctrl+C to shut down")
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Transcriber wiring ────────────────────────────────────────────────────────

// registerBuiltinTranscribers wires the transcriber factories that ship with
// the server into reg.
func registerBuiltinTranscribers(reg *config.Registry) {
	reg.RegisterTranscriber("whisper", func(tc config.TranscriberConfig) (transcribe.Transcriber, error) {
		var opts []whisper.Option
		if tc.Language != "" {
			opts = append(opts, whisper.WithLanguage(tc.Language))
		}
		if tc.Translate {
			opts = append(opts, whisper.WithTranslate(true))
		}
		return whisper.New(tc.ModelPath, opts...)
	})

	reg.RegisterTranscriber("mock", func(config.TranscriberConfig) (transcribe.Transcriber, error) {
		return &transcribemock.Transcriber{}, nil
	})
}

// ── Config hot reload ─────────────────────────────────────────────────────────

// applyConfigChange applies the hot-reloadable parts of a config change. Log
// level takes effect immediately; pipeline tuning and the home URL are fixed
// at construction time and need a restart.
func applyConfigChange(logLevel *slog.LevelVar, old, next *config.Config) {
	diff := config.Diff(old, next)
	if !diff.HasChanges() {
		return
	}
	if diff.LogLevelChanged {
		logLevel.Set(slogLevel(diff.NewLogLevel))
		slog.Info("log level updated", "level", diff.NewLogLevel)
	}
	if diff.PipelineChanged || diff.HomeURLChanged {
		slog.Warn("pipeline or browser settings changed — restart to apply")
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
