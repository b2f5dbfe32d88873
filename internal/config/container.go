package config

import (
	"fmt"

	"docproc/internal/domain"
	"docproc/internal/repository"
	"docproc/internal/service"
	"docproc/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient
	Storage        domain.ClientStorage
	Backend        domain.ExtractionBackend

	Workspaces *service.WorkspaceManager
	Sessions   *service.SessionService
	Themes     *service.ThemeService
	Uploads    *service.UploadService
	Extraction *service.ExtractionService
	Exports    *service.ExportService
	Previews   *service.PreviewService
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig wires the application around an existing config.
func NewContainerWithConfig(config domain.Config) (*Container, error) {
	appLogger := logger.NewLogger(config.GetLogLevel())

	supabaseClient := repository.NewSupabaseClient(config, appLogger)
	storage, err := newStorage(config, supabaseClient, appLogger)
	if err != nil {
		return nil, err
	}

	backend := repository.NewBackendClient(config, appLogger)

	return &Container{
		Config:         config,
		Logger:         appLogger,
		SupabaseClient: supabaseClient,
		Storage:        storage,
		Backend:        backend,
		Workspaces:     service.NewWorkspaceManager(appLogger),
		Sessions:       service.NewSessionService(storage, backend, appLogger),
		Themes:         service.NewThemeService(storage, appLogger),
		Uploads:        service.NewUploadService(backend, appLogger),
		Extraction:     service.NewExtractionService(backend, appLogger),
		Exports:        service.NewExportService(backend, appLogger),
		Previews:       service.NewPreviewService(backend, appLogger),
	}, nil
}

// newStorage picks the client storage driver. Supabase falls back to memory
// when it cannot be initialized so the UI stays usable.
func newStorage(config domain.Config, supabaseClient domain.SupabaseClient, log domain.Logger) (domain.ClientStorage, error) {
	switch driver := config.GetStorageDriver(); driver {
	case StorageMemory:
		return repository.NewMemoryStateStore(), nil
	case StorageFile, "":
		store, err := repository.NewFileStateStore(config.GetStatePath(), log)
		if err != nil {
			return nil, fmt.Errorf("open state file: %w", err)
		}
		return store, nil
	case StorageSupabase:
		if err := supabaseClient.Initialize(); err != nil {
			log.Warn("Supabase unavailable, keeping client state in memory", "error", err)
			return repository.NewMemoryStateStore(), nil
		}
		return repository.NewSupabaseStateStore(supabaseClient, log), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
