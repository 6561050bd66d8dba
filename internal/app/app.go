package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/redis/go-redis/v9"

	"LaunchDigest/internal/config"
	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/infrastructure/browser"
	"LaunchDigest/internal/infrastructure/cache"
	"LaunchDigest/internal/infrastructure/catalog"
	"LaunchDigest/internal/infrastructure/llm"
	"LaunchDigest/internal/infrastructure/mcpdocs"
	"LaunchDigest/internal/infrastructure/parser"
	"LaunchDigest/internal/infrastructure/slides"
	"LaunchDigest/internal/infrastructure/storage"
	"LaunchDigest/internal/infrastructure/telegram"
	"LaunchDigest/internal/logging"
	"LaunchDigest/internal/metrics"
	"LaunchDigest/internal/ports"
	"LaunchDigest/internal/research"
	"LaunchDigest/internal/scanner"
	"LaunchDigest/internal/usecase"
)

const connectTimeout = 10 * time.Second

// Application wires configs to use cases and owns the lifetime of external clients.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	closers  []func()
}

// New builds the application. Optional backends (MCP servers, Redis, Postgres)
// that cannot be reached are logged and left out; they never fail startup.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, nil)
	}
	a := &Application{cfg: cfg, logger: baseLogger.With("component", "app")}

	httpClient := &http.Client{Timeout: cfg.Timeouts.Fetch}
	registry := scanner.NewRegistry()
	registry.Register(parser.NewHTMLScanner(httpClient, baseLogger.With("component", "scanner.html")))
	registry.Register(parser.NewFeedScanner(httpClient, baseLogger.With("component", "scanner.feed")))
	source := parser.NewStrategySource(registry, cfg.Run.Scanner, cfg.Run.ScannerOptions, baseLogger.With("component", "source"))

	sink := metrics.Nop
	if cfg.Metrics.Enabled {
		sink = metrics.New(a.metricsPath())
	}

	docs, pricing := a.docsProviders(ctx)

	var summarizer ports.Summarizer
	if cfg.ChatGPT.Enabled && cfg.ChatGPT.APIKey != "" {
		summarizer = llm.NewChatGPTClient(cfg.ChatGPT)
	}

	researcher := research.New(research.Deps{
		Docs:        docs,
		Pricing:     pricing,
		Summarizer:  summarizer,
		Store:       a.detailStore(ctx),
		Cache:       research.NewCache(),
		Metrics:     sink,
		Logger:      baseLogger.With("component", "research"),
		SearchLimit: cfg.Docs.SearchLimit,
		StoreTTL:    cfg.Redis.TTL,
	})

	var capturer ports.Capturer = browser.Disabled{}
	if !cfg.Run.SkipScreenshots && cfg.Run.MaxScreenshots != 0 {
		c := browser.NewCapturer(browser.Options{
			Timeout:  browser.ShotTimeout(cfg.Timeouts.Capture),
			Settle:   cfg.Browser.Settle,
			Width:    cfg.Browser.Width,
			Height:   cfg.Browser.Height,
			ExecPath: cfg.Browser.ExecPath,
			Logger:   baseLogger,
		})
		a.closers = append(a.closers, c.Close)
		capturer = c
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Researcher: researcher,
		Capturer:   capturer,
		Assembler:  slides.NewAssembler("../" + storage.ScreenshotsDir),
		Store:      storage.NewFileStore(cfg.Run.OutputDir),
		Runs:       a.runRepository(ctx),
		Notifier:   notifier,
		Metrics:    sink,
		Fallback:   parser.SampleAnnouncements,
		Logger:     baseLogger,
	})
	return a, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) (domain.RunSummary, error) {
	return a.pipeline.Run(ctx, a.runConfig())
}

// Close releases browsers, sessions and connection pools in reverse order.
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *Application) runConfig() usecase.RunConfig {
	run := a.cfg.Run
	return usecase.RunConfig{
		SourceURL:       run.SourceURL,
		MaxItems:        run.MaxServices,
		MaxCaptures:     run.MaxScreenshots,
		CaptureEnabled:  !run.SkipScreenshots,
		Concurrency:     run.Concurrency,
		FetchTimeout:    a.cfg.Timeouts.Fetch,
		ResearchTimeout: a.cfg.Timeouts.Research,
		CaptureTimeout:  a.cfg.Timeouts.Capture,
		Title:           run.Title,
		Subtitle:        run.Subtitle,
	}
}

func (a *Application) metricsPath() string {
	path := a.cfg.Metrics.Textfile
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.cfg.Run.OutputDir, path)
}

func (a *Application) docsProviders(ctx context.Context) (ports.DocumentationLookup, ports.PricingLookup) {
	offline := catalog.New(a.cfg.Docs.Region)
	if a.cfg.Docs.Provider != config.DocsMCP {
		return offline, offline
	}

	client, err := a.connectMCP(ctx)
	if err != nil {
		a.logger.Warn("documentation servers unavailable, using built-in catalog", "error", err)
		return offline, offline
	}
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			a.logger.Warn("close documentation sessions", "error", err)
		}
	})
	return client, client
}

func (a *Application) connectMCP(ctx context.Context) (*mcpdocs.Client, error) {
	docsTransport, err := mcpdocs.CommandTransport(a.cfg.Docs.DocsCommand)
	if err != nil {
		return nil, err
	}
	var pricingTransport sdkmcp.Transport
	if len(a.cfg.Docs.PricingCommand) > 0 {
		if pricingTransport, err = mcpdocs.CommandTransport(a.cfg.Docs.PricingCommand); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return mcpdocs.Connect(ctx, docsTransport, pricingTransport, mcpdocs.Options{
		Region:        a.cfg.Docs.Region,
		ReadMaxLength: a.cfg.Docs.ReadMaxLength,
		Logger:        a.logger,
	})
}

func (a *Application) detailStore(ctx context.Context) ports.DetailStore {
	rc := a.cfg.Redis
	if rc.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.logger.Warn("redis unavailable, research is not shared across runs", "addr", rc.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	return cache.NewRedisDetailStore(client, rc.Prefix)
}

func (a *Application) runRepository(ctx context.Context) ports.RunRepository {
	dsn := a.cfg.Database.DSN
	if dsn == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		a.logger.Warn("run history disabled", "error", fmt.Errorf("open postgres pool: %w", err))
		return nil
	}
	repo := storage.NewPostgresRunRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		a.logger.Warn("run history disabled", "error", err)
		pool.Close()
		return nil
	}
	a.closers = append(a.closers, pool.Close)
	return repo
}
