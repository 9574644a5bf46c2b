package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/auth"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	httpapi "github.com/garyjia/billed/internal/interfaces/http"
	"github.com/garyjia/billed/internal/observability/metrics"
	"github.com/garyjia/billed/pkg/database"
	"github.com/garyjia/billed/pkg/utils"
)

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Bill      port.BillRepository
	User      port.UserRepository
	TxManager port.TransactionManager
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Auth   service.AuthService
	Bills  service.BillService
	Export service.ExportService
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos     *RepositoryBundle
	Events    dispatcher.Dispatcher
	TxManager port.TransactionManager
	Files     port.FileStorage
	Auth      config.AuthConfig
	PublicURL string
	Logger    *zap.Logger
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(cfg.MigrationsDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) *RepositoryBundle {
	return &RepositoryBundle{
		Bill:      repository.NewBillRepository(db.DB, logger),
		User:      repository.NewUserRepository(db.DB, logger),
		TxManager: sqlite.NewDB(db.DB, logger),
	}
}

// ProvideStorage creates the receipt storage.
func ProvideStorage(cfg *config.StorageConfig, logger *zap.Logger) (port.FileStorage, error) {
	return storage.NewReceiptStorage(cfg.ReceiptsDir, logger)
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) *ServiceBundle {
	serviceLogger := utils.NewLoggerAdapter(deps.Logger)

	bills := service.NewBillService(
		deps.Repos.Bill,
		deps.Files,
		deps.TxManager,
		service.BillServiceConfig{PublicURL: deps.PublicURL, Events: deps.Events},
		serviceLogger,
	)

	return &ServiceBundle{
		Auth: service.NewAuthService(
			deps.Repos.User,
			auth.NewJWTManager(deps.Auth.JWTSecret, deps.Auth.TokenTTL),
			service.AuthServiceConfig{AllowAdminSignup: deps.Auth.AllowAdminSignup},
			serviceLogger,
		),
		Bills:  bills,
		Export: service.NewExportService(bills, serviceLogger),
	}
}

// ProvideDispatcher creates the bill event dispatcher with the audit log
// and metrics subscribers.
func ProvideDispatcher(m *metrics.ServerMetrics, logger *zap.Logger) dispatcher.Dispatcher {
	d := dispatcher.NewDispatcher(dispatcher.WithLogger(utils.NewLoggerAdapter(logger)))

	audit := logger.Named("audit")
	for _, typ := range []event.Type{event.TypeBillCreated, event.TypeBillAccepted, event.TypeBillRefused} {
		d.SubscribeNamed(typ, "audit-log", func(ctx context.Context, evt *event.Event) error {
			audit.Info("Bill event",
				zap.String("event_id", evt.ID),
				zap.String("event_type", evt.Type.String()),
				zap.String("bill_id", evt.BillID),
				zap.String("by", evt.Email),
				zap.Any("payload", evt.Payload),
				zap.Time("at", evt.Timestamp),
			)
			return nil
		})
	}

	if m != nil {
		m.Subscribe(d)
	}
	return d
}

// ProvideServer creates the HTTP server.
func ProvideServer(cfg *config.ServerConfig, services *ServiceBundle, files port.FileStorage, m *metrics.ServerMetrics, logger *zap.Logger) *httpapi.Server {
	return httpapi.NewServer(
		httpapi.ServerConfig{
			Host:           cfg.Host,
			Port:           cfg.Port,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			MaxUploadBytes: cfg.MaxUploadBytes,
		},
		httpapi.Services{
			Auth:   services.Auth,
			Bills:  services.Bills,
			Export: services.Export,
			Files:  files,
		},
		m,
		utils.NewLoggerAdapter(logger),
	)
}
