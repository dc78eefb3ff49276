package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mailbridge/mailbridge/internal/agent"
	"github.com/mailbridge/mailbridge/internal/config"
	"github.com/mailbridge/mailbridge/internal/instrumentation"
)

// Context holds the shared state for the front-end servers. Everything in
// it is constructed once at startup and read-only afterwards, except the
// shutdown flag.
type Context struct {
	ctx          context.Context
	cancel       context.CancelFunc
	cfg          *config.Config
	gateway      agent.Gateway
	orchestrator *agent.Orchestrator
	metrics      *instrumentation.Metrics
	logger       *slog.Logger
	mu           sync.RWMutex
	shutdown     bool
}

// NewContext creates a server context.
func NewContext(ctx context.Context, cfg *config.Config, gateway agent.Gateway, orchestrator *agent.Orchestrator, metrics *instrumentation.Metrics, logger *slog.Logger) *Context {
	shutdownCtx, cancel := context.WithCancel(ctx)
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		ctx:          shutdownCtx,
		cancel:       cancel,
		cfg:          cfg,
		gateway:      gateway,
		orchestrator: orchestrator,
		metrics:      metrics,
		logger:       logger,
	}
}

// Context returns the server's base context, cancelled on shutdown.
func (sc *Context) Context() context.Context {
	return sc.ctx
}

// Config returns the process configuration.
func (sc *Context) Config() *config.Config {
	return sc.cfg
}

// Gateway returns the connector gateway.
func (sc *Context) Gateway() agent.Gateway {
	return sc.gateway
}

// Orchestrator returns the prompt orchestrator for the configured app.
func (sc *Context) Orchestrator() *agent.Orchestrator {
	return sc.orchestrator
}

// Metrics returns the metrics recorder. May record to nothing when metrics
// are disabled, but is never nil-unsafe.
func (sc *Context) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Logger returns the server logger.
func (sc *Context) Logger() *slog.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shut down.
func (sc *Context) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown marks the context as shut down and cancels its base context.
func (sc *Context) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
