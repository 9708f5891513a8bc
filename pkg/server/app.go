package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradeBot365/internal/service/accountsync"
	"TradeBot365/internal/usecase"
	pkgch "TradeBot365/pkg/clickhouse"
	"TradeBot365/pkg/config"
	xhttp "TradeBot365/pkg/http"
	pkgkafka "TradeBot365/pkg/kafka"
	applogger "TradeBot365/pkg/logger"
	"TradeBot365/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.SignalCollector
	consumer    *pkgkafka.Consumer
	chClient    *pkgch.Client
	resolveQ    *queue.RedisQueue
	syncer      *accountsync.Syncer
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	SignalProc  *usecase.SignalProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.SignalCollector,
	consumer *pkgkafka.Consumer,
	chClient *pkgch.Client,
	resolveQ *queue.RedisQueue,
) *App {
	return &App{
		cfg:       cfg,
		logger:    l,
		collector: collector,
		consumer:  consumer,
		chClient:  chClient,
		resolveQ:  resolveQ,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetAccountSyncer allows DI to inject the account snapshot syncer.
func (a *App) SetAccountSyncer(s *accountsync.Syncer) { a.syncer = s }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("channels", a.cfg.Stream.Channels))

	// Start consumer if configured
	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started",
			applogger.String("executions_topic", a.cfg.Kafka.ExecutionsTopic),
			applogger.String("errors_topic", a.cfg.Kafka.ErrorsTopic))
	}

	// Start account snapshot sync
	if a.syncer != nil {
		a.syncer.Start(ctx)
		l.Info("account sync started")
	}

	// Start resolution queue workers
	if a.resolveQ != nil {
		if err := a.resolveQ.Start(); err != nil {
			l.Error("resolve queue start error", applogger.Error(err))
		} else {
			l.Info("resolve queue started")
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop queue workers
	if a.resolveQ != nil {
		if err := a.resolveQ.Stop(shutdownCtx); err != nil {
			l.Warn("resolve queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close processor resources (publisher/store)
	if a.SignalProc != nil {
		a.SignalProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
