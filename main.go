package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/courtfunds/payhub-bridge/internal/application/audit"
	"github.com/courtfunds/payhub-bridge/internal/application/dispatch"
	"github.com/courtfunds/payhub-bridge/internal/domain/instruction"
	"github.com/courtfunds/payhub-bridge/internal/domain/setting"
	"github.com/courtfunds/payhub-bridge/internal/infrastructure/bus"
	"github.com/courtfunds/payhub-bridge/internal/infrastructure/memory"
	payhubclient "github.com/courtfunds/payhub-bridge/internal/infrastructure/payhub"
	"github.com/courtfunds/payhub-bridge/internal/infrastructure/s2s"
	"github.com/courtfunds/payhub-bridge/internal/infrastructure/sqlite"
	httppresentation "github.com/courtfunds/payhub-bridge/internal/presentation/http"
	"github.com/courtfunds/payhub-bridge/internal/pkg/config"
	"github.com/courtfunds/payhub-bridge/internal/pkg/logging"
)

type dataStore interface {
	instruction.Repository
	setting.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger := logging.MustNewLogger(cfg.Service.Name, cfg.Service.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	if err := cfg.Validate(); err != nil {
		baseLogger.Fatal("invalid_configuration", zap.Error(err))
	}

	var store dataStore
	if cfg.DB.Path != "" {
		sqlStore, err := sqlite.Open(cfg.DB.Path)
		if err != nil {
			baseLogger.Fatal("sqlite_open_failed", zap.Error(err))
		}
		defer func() { _ = sqlStore.Close() }()
		store = sqlStore
	} else {
		baseLogger.Warn("no_db_path_configured_using_memory_store")
		store = memory.NewInstructionStore()
	}

	dispatchRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_requests_total",
			Help: "Total number of dispatch invocations by outcome.",
		},
		[]string{"outcome"},
	)
	instructionTransfers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "instruction_transfers_total",
			Help: "Per-instruction transfer outcomes.",
		},
		[]string{"outcome"},
	)
	dispatchDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Duration of dispatch invocations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{},
	)
	prometheus.MustRegister(dispatchRequests, instructionTransfers, dispatchDurations)

	eventBus := bus.New(baseLogger)
	eventBus.Start(context.Background())
	defer eventBus.Stop(context.Background())

	auditWorker := audit.New(eventBus)
	auditWorker.Start()

	// One HTTP client per process; per-request deadlines come from config.
	httpClient := &http.Client{}
	tokens := s2s.NewTokenGenerator(cfg.S2S.URL, httpClient, cfg.HTTP.RequestTimeout())
	submitter := payhubclient.NewClient(cfg.Payment.API.URL, httpClient, cfg.HTTP.RequestTimeout())

	dispatchService := dispatch.NewService(store, tokens, submitter, eventBus, dispatch.Metrics{
		Dispatches: dispatchRequests,
		Transfers:  instructionTransfers,
		Duration:   dispatchDurations,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), httppresentation.RequestContext(baseLogger))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := httppresentation.NewHandler(dispatchService, store)
	handler.Register(router)

	server := &http.Server{
		Addr:    cfg.HTTP.ListenAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		baseLogger.Info("http_server_stopped")
	}
}
