package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/plumechat/plume/internal/config"
	"github.com/plumechat/plume/internal/db"
	"github.com/plumechat/plume/internal/handlers"
	"github.com/plumechat/plume/internal/logger"
	"github.com/plumechat/plume/internal/memory"
	"github.com/plumechat/plume/internal/message"
	"github.com/plumechat/plume/internal/provider"
	"github.com/plumechat/plume/internal/server"
	"github.com/plumechat/plume/internal/turn"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			provideMemoryStore,
			provideFactExtractor,
			provideMemoryService,
			provideDecayJob,
			provideMessageService,
			provideProviderAdapter,
			provideProviderClient,
			provideAssembler,
			providePipeline,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideChatHandler),
			provideServerHandler(provideMemoryHandler),
			provideServer,
		),
		fx.Invoke(
			runMigrations,
			startDecayJob,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideMemoryStore(conn *pgxpool.Pool) memory.Store {
	return memory.NewPostgresStore(conn)
}

func provideFactExtractor() memory.FactExtractor {
	return memory.NewRuleExtractor()
}

func provideMemoryService(log *slog.Logger, store memory.Store, extractor memory.FactExtractor, cfg config.Config) *memory.Service {
	return memory.NewService(log, store, extractor, cfg.Memory.DefaultImportance)
}

func provideDecayJob(log *slog.Logger, store memory.Store, cfg config.Config) *memory.DecayJob {
	return memory.NewDecayJob(log, store, cfg.Memory.DecaySchedule, cfg.Memory.DecayAfterDays)
}

func provideMessageService(log *slog.Logger, conn *pgxpool.Pool) *message.Service {
	return message.NewService(log, conn)
}

func provideProviderAdapter(log *slog.Logger) *provider.Adapter {
	return provider.NewAdapter(log)
}

func provideProviderClient(log *slog.Logger, adapter *provider.Adapter, cfg config.Config) *provider.Client {
	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	return provider.NewClient(log, adapter, cfg.Provider.BaseURL, cfg.Provider.Token, timeout)
}

func provideAssembler(log *slog.Logger, cfg config.Config) *turn.Assembler {
	return turn.NewAssembler(log, cfg.Pipeline.MaxDocumentChars)
}

// memoryContextLoader narrows the memory service to the pipeline's view.
type memoryContextLoader struct {
	svc *memory.Service
}

func (l *memoryContextLoader) LoadContext(ctx context.Context, userID string, minImportance, limit int) (string, error) {
	return l.svc.LoadContext(ctx, userID, memory.ContextOptions{
		MinImportance: minImportance,
		Limit:         limit,
	})
}

func providePipeline(log *slog.Logger, assembler *turn.Assembler, memoryService *memory.Service, messageService *message.Service, adapter *provider.Adapter, cfg config.Config) *turn.Pipeline {
	return turn.NewPipeline(log, assembler, &memoryContextLoader{svc: memoryService}, messageService, adapter, turn.PipelineOptions{
		MaxArtifactBytes: cfg.Pipeline.MaxArtifactBytes,
		MinImportance:    cfg.Memory.MinImportance,
		ContextLimit:     cfg.Memory.ContextLimit,
	})
}

func provideChatHandler(log *slog.Logger, pipeline *turn.Pipeline, client *provider.Client, memoryService *memory.Service, messageService *message.Service, cfg config.Config) *handlers.ChatHandler {
	return handlers.NewChatHandler(log, pipeline, client, memoryService, messageService, cfg.Pipeline.MaxArtifactBytes)
}

func provideMemoryHandler(log *slog.Logger, memoryService *memory.Service) *handlers.MemoryHandler {
	return handlers.NewMemoryHandler(log, memoryService)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.ServerHandlers)
}

func runMigrations(cfg config.Config, log *slog.Logger) error {
	if err := db.Migrate(cfg.Postgres); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("database migrations applied")
	return nil
}

func startDecayJob(lc fx.Lifecycle, job *memory.DecayJob) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return job.Start() },
		OnStop:  func(ctx context.Context) error { return job.Stop(ctx) },
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
