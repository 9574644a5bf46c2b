package main

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/external/billapi"
	"github.com/garyjia/billed/internal/infrastructure/resilience"
	"github.com/garyjia/billed/pkg/utils"
)

// env is the state shared by every command of one invocation
type env struct {
	stdout io.Writer
	stderr io.Writer

	config   *config.ClientConfig
	logger   *zap.Logger
	client   *billapi.Client
	sessions sessionFile
}

func newApp(stdout, stderr io.Writer) *cli.App {
	e := &env{stdout: stdout, stderr: stderr}

	return &cli.App{
		Name:      "billed",
		Usage:     "submit and review expense bills",
		Version:   "1.0.0",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"BILLED_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "bill backend base URL, overrides client.api_url",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "session file, overrides client.session_path",
			},
		},
		Before: e.setup,
		After:  e.teardown,
		Commands: []*cli.Command{
			signupCommand(e),
			loginCommand(e),
			logoutCommand(e),
			billsCommand(e),
			newBillCommand(e),
			dashboardCommand(e),
			showCommand(e),
			acceptCommand(e),
			refuseCommand(e),
			exportCommand(e),
		},
	}
}

func (e *env) setup(c *cli.Context) error {
	cfg, err := config.LoadClient(c.String("config"))
	if err != nil {
		return err
	}
	if url := c.String("api-url"); url != "" {
		cfg.APIURL = url
	}
	if path := c.String("session"); path != "" {
		cfg.SessionPath = path
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	e.config = cfg
	e.logger = logger
	e.sessions = sessionFile{path: cfg.SessionPath}
	e.client = billapi.New(billapi.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
		Policy: resilience.Policy{
			RetryMaxAttempts:    cfg.Retry.MaxAttempts,
			RetryInitialBackoff: cfg.Retry.InitialBackoff,
			RetryMaxBackoff:     cfg.Retry.MaxBackoff,
			BreakerEnabled:      cfg.Breaker.Enabled,
			BreakerMinRequests:  cfg.Breaker.MinRequests,
			BreakerFailureRatio: cfg.Breaker.FailureRatio,
			BreakerOpenTimeout:  cfg.Breaker.OpenTimeout,
		},
	}, logger)
	return nil
}

func (e *env) teardown(*cli.Context) error {
	if e.logger != nil {
		_ = e.logger.Sync()
	}
	return nil
}

// connected returns the saved session and a client carrying its token
func (e *env) connected() (entity.Session, *billapi.Client, error) {
	session, err := e.sessions.Load()
	if err != nil {
		return entity.Session{}, nil, err
	}
	return session, e.client.WithToken(session.Token), nil
}

func (e *env) serviceLogger() *utils.LoggerAdapter {
	return utils.NewLoggerAdapter(e.logger)
}
