package domain

import (
	"context"
	"time"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetBackendURL() string
	GetBackendTimeout() time.Duration
	GetLogLevel() string
	GetStorageDriver() string
	GetStatePath() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetAllowedOrigins() []string
	GetMaxUploadMemory() int64
}

// ClientStorage persists small string flags per browser client, the way a
// browser keeps them in local storage.
type ClientStorage interface {
	// Get returns ErrStorageKeyNotFound when the key was never set.
	Get(ctx context.Context, clientID, key string) (string, error)
	Set(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID, key string) error
}

// ProgressFunc receives transfer progress in percent (0-100).
type ProgressFunc func(percent int)

// ExtractionBackend is the external document-extraction service.
type ExtractionBackend interface {
	Login(ctx context.Context, username, password string) error
	Upload(ctx context.Context, file *LocalFile, progress ProgressFunc) (string, error)
	ExtractText(ctx context.Context, serverPath string) (*ExtractResponse, error)
	ExportData(ctx context.Context, serverPath string, format ExportFormat) (*Rendition, error)
	FetchFile(ctx context.Context, serverPath string) (*Rendition, error)
}

// Downloader performs the local save-as-file action. Implementations must not
// retain data after Save returns.
type Downloader interface {
	Save(filename, contentType string, data []byte) error
}
