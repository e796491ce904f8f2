package app

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"collage/internal/gateway/bundler"
	"collage/internal/gateway/config"
	"collage/internal/gateway/external"
	"collage/internal/gateway/handler"
	"collage/internal/gateway/importmap"
	"collage/internal/gateway/latch"
	"collage/internal/gateway/middleware"
	"collage/internal/gateway/server"
)

// App is one gateway instance: it owns the import map, the readiness gate,
// and the session's externalized-module record. No process-wide singletons;
// everything hangs off this struct.
type App struct {
	cfg *config.Config
	log *zap.Logger

	store  *importmap.Store
	gate   *latch.Latch
	record *external.Record
	events *handler.EventHub

	isExternal external.Predicate
	isBare     func(string) bool

	endpoint   string
	admission  *middleware.Admission
	transforms *lru.Cache[string, string]

	server *server.Server
}

var _ bundler.Plugin = (*App)(nil)

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg *config.Config) (*App, error) {
	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	transforms, err := lru.New[string, string](32)
	if err != nil {
		return nil, err
	}

	buildExternals := make([]any, 0, len(cfg.Externals))
	for _, e := range cfg.Externals {
		buildExternals = append(buildExternals, e)
	}

	a := &App{
		cfg:        cfg,
		log:        log,
		store:      importmap.NewStore(),
		gate:       latch.New(),
		record:     external.NewRecord(),
		events:     handler.NewEventHub(log),
		isExternal: external.Merge(buildExternals...),
		isBare:     external.PrefixPredicate(cfg.BarePrefixes),
		endpoint:   "http://localhost" + cfg.Port + cfg.ReceiverPath,
		transforms: transforms,
	}

	a.admission = middleware.NewAdmission(a.gate, middleware.AdmissionOptions{
		Dev:               cfg.Dev(),
		Root:              cfg.Root,
		Timeout:           cfg.WaitTimeout,
		ClientRuntimePath: cfg.ClientRuntimePath,
		SenderPath:        cfg.SenderPath,
	}, log)

	mux := server.NewMux(cfg, server.Routes{
		Receiver:  handler.NewImportMapHandler(a.store, a.gate, cfg.AllowedOrigins, a.events, log),
		Sender:    handler.NewSenderHandler(cfg.Root, a.endpoint, log),
		Events:    a.events,
		Admission: a.admission,
		App:       handler.NewAppHandler(cfg.AppRoot, cfg.ClientRuntimePath, a.Transform, log),
	})
	a.server = server.New(cfg.Port, mux, log)

	return a, nil
}

func (a *App) Start() error {
	if a.cfg.Banner {
		printBanner(a.cfg)
	}
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	entries := a.record.Entries()
	a.log.Info("externalized modules this session", zap.Int("count", len(entries)))
	for _, e := range entries {
		a.log.Debug("externalized", zap.String("specifier", e.Specifier), zap.String("resolved", e.Resolved))
	}
	err := a.server.Shutdown(ctx)
	_ = a.log.Sync()
	return err
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
