package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"TalentRadar/internal/config"
	"TalentRadar/internal/extract"
	"TalentRadar/internal/httpapi"
	"TalentRadar/internal/infrastructure/llm"
	"TalentRadar/internal/infrastructure/lock"
	"TalentRadar/internal/infrastructure/notion"
	"TalentRadar/internal/infrastructure/parser"
	"TalentRadar/internal/infrastructure/scheduler"
	"TalentRadar/internal/infrastructure/storage"
	"TalentRadar/internal/infrastructure/telegram"
	"TalentRadar/internal/logging"
	"TalentRadar/internal/mcpserver"
	"TalentRadar/internal/ports"
	"TalentRadar/internal/scanner"
	"TalentRadar/internal/usecase"
)

// Version is reported by the MCP server.
var Version = "dev"

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	prospects *usecase.Prospects
	closers   []io.Closer
}

// New builds the application: adapters, use cases and their settings.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	notionClient := notion.NewClient(cfg.Notion, nil)

	registry, err := a.buildRegistry(ctx, notionClient)
	if err != nil {
		a.Close()
		return nil, err
	}

	scanners := scanner.NewRegistry()
	scanners.Register(notion.NewDocumentScanner(notion.NewQuerier(notionClient), baseLogger.With("component", "scanner.notion")))
	source := parser.NewStrategySource(scanners, cfg.Sources, baseLogger.With("component", "source"))

	oracle, err := a.buildOracle()
	if err != nil {
		a.Close()
		return nil, err
	}
	rubric := extract.DefaultRubric()
	if path := cfg.Extraction.RubricTemplatePath; path != "" {
		if rubric, err = extract.LoadRubric(path); err != nil {
			a.Close()
			return nil, err
		}
	}
	extractor := extract.NewClient(oracle, rubric, ports.CompletionOpts{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		System:      cfg.LLM.SystemPrompt,
	})

	locker, err := a.buildLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		lookalikes ports.LookalikeSource
		directory  ports.ClientDirectory
	)
	if cfg.Notion.ClientsDatabaseID != "" {
		clients := notion.NewClientSource(notionClient, cfg.Notion.ClientsDatabaseID,
			cfg.Extraction.EnrichConcurrency, baseLogger.With("component", "clients"))
		lookalikes, directory = clients, clients
	}

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram); tg.Enabled() {
		notifier = tg
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Registry: registry,
		Source:   source,
		Profile: notion.NewProfileSource(notionClient, cfg.Notion.ProfilePageID, cfg.Extraction.FallbackProfile,
			cfg.Extraction.ProfileCacheTTL, baseLogger.With("component", "profile")),
		Lookalikes: lookalikes,
		Enricher:   a.buildEnricher(notionClient),
		Extractor:  extractor,
		Locker:     locker,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
		Settings: usecase.PipelineSettings{
			Window:            cfg.Extraction.Window,
			PerItemCharCap:    cfg.Extraction.PerItemCharCap,
			MaxDocuments:      cfg.Extraction.MaxDocuments,
			MinMatchScore:     cfg.Extraction.MinMatchScore,
			DropBelowMinScore: cfg.Extraction.DropBelowMinScore,
			MinCandidates:     cfg.Extraction.MinCandidates,
			MaxCandidates:     cfg.Extraction.MaxCandidates,
			EnrichConcurrency: cfg.Extraction.EnrichConcurrency,
			AppendConcurrency: cfg.Extraction.AppendConcurrency,
			UseLookalikes:     cfg.Extraction.LookalikeSeeds,
		},
	})

	a.prospects = usecase.NewProspects(usecase.ProspectsDeps{
		Registry:         registry,
		Source:           source,
		Clients:          directory,
		Window:           cfg.Extraction.Window,
		RejectDuplicates: cfg.Registry.UniqueNames,
		Logger:           baseLogger.With("component", "prospects"),
	})

	return a, nil
}

func (a *Application) buildRegistry(ctx context.Context, client *notion.Client) (ports.Registry, error) {
	switch strings.ToLower(a.cfg.Registry.Backend) {
	case "", config.BackendNotion:
		return notion.NewRegistry(client, a.cfg.Notion.RegistryDatabaseID, a.logger.With("component", "registry")), nil
	case config.BackendSQLite, config.BackendPostgres:
		reg, err := storage.Open(ctx, a.cfg.Registry)
		if err != nil {
			return nil, fmt.Errorf("open registry: %w", err)
		}
		a.closers = append(a.closers, reg)
		return reg, nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", a.cfg.Registry.Backend)
	}
}

// buildOracle returns nil when no credential is configured, so runs fail
// fast with domain.ErrConfigurationMissing before touching the content store.
func (a *Application) buildOracle() (ports.Oracle, error) {
	if strings.TrimSpace(a.cfg.LLM.APIKey) == "" {
		a.logger.Warn("llm api key not set; radar runs are disabled", "provider", a.cfg.LLM.Provider)
		return nil, nil
	}
	oracle, err := llm.NewOracle(a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	if c, ok := oracle.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	return oracle, nil
}

func (a *Application) buildLocker(ctx context.Context) (ports.RunLocker, error) {
	if a.cfg.Lock.RedisAddr == "" {
		if a.cfg.Lock.InProcess {
			return lock.NewLocalLocker(), nil
		}
		return nil, nil
	}
	locker, err := lock.NewRedisLocker(ctx, a.cfg.Lock, a.logger.With("component", "lock"))
	if err != nil {
		return nil, fmt.Errorf("connect run lock: %w", err)
	}
	a.closers = append(a.closers, locker)
	return locker, nil
}

func (a *Application) buildEnricher(client *notion.Client) ports.BodyFetcher {
	switch a.cfg.Extraction.EnrichMode {
	case config.EnrichNotion:
		return notion.NewBlockBodyFetcher(client)
	case config.EnrichWeb:
		return parser.NewPageFetcher(nil)
	default:
		return nil
	}
}

// Pipeline exposes the radar use case.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Prospects exposes the registry use case.
func (a *Application) Prospects() *usecase.Prospects {
	return a.prospects
}

// RunOnce performs a single radar run bounded by the configured run timeout.
func (a *Application) RunOnce(ctx context.Context) (usecase.RunResult, error) {
	if a.cfg.Server.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Server.RunTimeout)
		defer cancel()
	}
	return a.pipeline.Run(ctx, usecase.RunRequest{})
}

// Serve runs the HTTP API and, when enabled, the scheduler until ctx ends.
func (a *Application) Serve(ctx context.Context) error {
	srv := httpapi.NewServer(httpapi.Deps{
		Radar:       a.pipeline,
		Prospects:   a.prospects,
		RunTimeout:  a.cfg.Server.RunTimeout,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Logger:      a.logger.With("component", "http"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, a.cfg.Server.Addr)
	})

	if a.cfg.Scheduler.Enabled {
		sched := usecase.NewScheduler(
			scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.Location()),
			a.pipeline,
			a.cfg.Server.RunTimeout,
			a.logger.With("component", "scheduler"),
		)
		if err := sched.Start(gctx); err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			return sched.Stop(context.Background())
		})
	}

	return g.Wait()
}

// ServeMCP serves the MCP tools over stdio.
func (a *Application) ServeMCP() error {
	return mcpserver.Serve(mcpserver.Config{
		Radar:      a.pipeline,
		Prospects:  a.prospects,
		RunTimeout: a.cfg.Server.RunTimeout,
		Version:    Version,
	})
}

// Close releases database handles, Redis and model clients.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
