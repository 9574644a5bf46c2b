// Package container provides dependency injection and lifecycle management
// for the bill backend.
package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/config"
	httpapi "github.com/garyjia/billed/internal/interfaces/http"
	"github.com/garyjia/billed/internal/observability/metrics"
	"github.com/garyjia/billed/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are built in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	db           *database.DB
	repositories *RepositoryBundle
	files        port.FileStorage

	// Application
	events   dispatcher.Dispatcher
	services *ServiceBundle
	metrics  *metrics.ServerMetrics
	server   *httpapi.Server

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components; call Init.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Init builds every component:
// 1. Database, migrations and repositories
// 2. Receipt storage
// 3. Metrics and the bill event dispatcher
// 4. Application services
// 5. The HTTP server
func (c *Container) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already initialized")
	}

	c.logger.Info("Starting container initialization")

	db, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db
	c.repositories = ProvideRepositories(db, c.logger)
	c.logger.Info("Database initialized")

	files, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.files = files
	c.logger.Info("Storage initialized")

	c.metrics = metrics.NewServerMetrics("billed")
	c.events = ProvideDispatcher(c.metrics, c.logger)

	c.services = ProvideServices(&ServiceDeps{
		Repos:     c.repositories,
		Events:    c.events,
		TxManager: c.repositories.TxManager,
		Files:     files,
		Auth:      c.config.Auth,
		PublicURL: c.config.Storage.PublicURL,
		Logger:    c.logger,
	})
	c.logger.Info("Application services initialized")

	c.server = ProvideServer(&c.config.Server, c.services, files, c.metrics, c.logger)

	c.ready.Store(true)
	c.logger.Info("Container initialized", zap.String("address", c.server.Address()))
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (c *Container) Run(ctx context.Context) error {
	if !c.ready.Load() {
		return fmt.Errorf("container not initialized")
	}
	return c.server.Start(ctx)
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error
	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}
	if c.events != nil {
		if err := c.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}
	if err := c.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors: %v", len(errs), errs)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeDatabase() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	} else {
		c.logger.Info("Database closed")
	}
	c.db = nil
	return err
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.db == nil {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	} else if err := c.db.Ping(); err != nil {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err)}
		status.Overall = false
	} else {
		status.Components["database"] = ComponentHealth{Healthy: true}
	}

	if c.files == nil {
		status.Components["storage"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	} else {
		status.Components["storage"] = ComponentHealth{Healthy: true}
	}

	return status
}

// Server returns the HTTP server.
func (c *Container) Server() *httpapi.Server {
	return c.server
}

// Services returns the application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}
