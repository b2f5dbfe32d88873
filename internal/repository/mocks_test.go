package repository

import "time"

// MockLogger for testing
type MockLogger struct{}

func (l *MockLogger) Info(msg string, fields ...interface{})             {}
func (l *MockLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockLogger) Warn(msg string, fields ...interface{})             {}

type mockConfig struct {
	supabaseURL string
	supabaseKey string
}

func (c *mockConfig) GetServerPort() string            { return "8080" }
func (c *mockConfig) GetBackendURL() string            { return "http://localhost:8000" }
func (c *mockConfig) GetBackendTimeout() time.Duration { return 0 }
func (c *mockConfig) GetLogLevel() string              { return "info" }
func (c *mockConfig) GetStorageDriver() string         { return "memory" }
func (c *mockConfig) GetStatePath() string             { return "" }
func (c *mockConfig) GetSupabaseURL() string           { return c.supabaseURL }
func (c *mockConfig) GetSupabaseKey() string           { return c.supabaseKey }
func (c *mockConfig) GetAllowedOrigins() []string      { return nil }
func (c *mockConfig) GetMaxUploadMemory() int64        { return 32 << 20 }
