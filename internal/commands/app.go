package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/moasq/nanogen/internal/config"
	"github.com/moasq/nanogen/internal/gemini"
	"github.com/moasq/nanogen/internal/logging"
	"github.com/moasq/nanogen/internal/secrets"
	"github.com/moasq/nanogen/internal/service"
	"github.com/moasq/nanogen/internal/storage"
)

// app is everything a command needs, built once per process.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	secrets secrets.SecretStore
	svc     *service.Service
}

// current is set by the root PersistentPreRunE.
var current *app

// dialer replaces the Gemini SDK constructor when set. Tests use it.
var dialer gemini.Dialer

func newApp(home, model string, verbose bool) (*app, error) {
	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	if model != "" {
		cfg.Model = model
	}

	logger, err := logging.New(cfg.LogPath(), cfg.LogLevel, verbose)
	if err != nil {
		return nil, err
	}

	backend, err := secrets.ParseBackend(cfg.SecretBackend)
	if err != nil {
		return nil, err
	}
	store := secrets.New(cfg.Home, backend)

	var opts []gemini.Option
	if dialer != nil {
		opts = append(opts, gemini.WithDialer(dialer))
	}

	svc, err := service.New(service.Options{
		Client:             gemini.NewClient(cfg.Model, opts...),
		Credentials:        secrets.NewCredentialStore(store),
		Usage:              storage.NewUsageStore(cfg.Home),
		Logger:             logger,
		CredentialOverride: cfg.APIKeyOverride,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	logger.Debug("session started",
		zap.String("home", cfg.Home),
		zap.String("model", cfg.Model),
		zap.String("secret_backend", secrets.Describe(store)),
		zap.Bool("api_key_override", cfg.APIKeyOverride != ""),
	)
	return &app{cfg: cfg, logger: logger, secrets: store, svc: svc}, nil
}

// keySource describes where the session credential came from.
func (a *app) keySource() string {
	if a.cfg.APIKeyOverride != "" {
		return "environment"
	}
	return secrets.Describe(a.secrets)
}
