package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"docproc/internal/domain"
)

// MockLogger records messages for assertions.
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{messages: []string{}}
}

func (m *MockLogger) record(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{})  { m.record("INFO: " + msg) }
func (m *MockLogger) Debug(msg string, args ...interface{}) { m.record("DEBUG: " + msg) }
func (m *MockLogger) Warn(msg string, args ...interface{})  { m.record("WARN: " + msg) }

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	line := "ERROR: " + msg
	if err != nil {
		line += " - " + err.Error()
	}
	m.record(line)
}

func (m *MockLogger) count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, line := range m.messages {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

// mockBackend is a scriptable ExtractionBackend.
type mockBackend struct {
	mu sync.Mutex

	loginErr   error
	loginCalls int
	loginPairs [][2]string

	uploadPath     string
	uploadErr      error
	uploadProgress []int
	uploadGate     chan struct{}
	uploadCalls    int
	uploadedNames  []string

	extractResp  *domain.ExtractResponse
	extractErr   error
	extractGate  chan struct{}
	extractCalls int

	exportData     []byte
	exportType     string
	exportErr      error
	exportGate     chan struct{}
	exportCalls    int
	exportFormats  []domain.ExportFormat
	releasedExport int

	fetchData  []byte
	fetchErr   error
	fetchCalls int
}

func (m *mockBackend) Login(ctx context.Context, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCalls++
	m.loginPairs = append(m.loginPairs, [2]string{username, password})
	return m.loginErr
}

func (m *mockBackend) Upload(ctx context.Context, file *domain.LocalFile, progress domain.ProgressFunc) (string, error) {
	m.mu.Lock()
	m.uploadCalls++
	m.uploadedNames = append(m.uploadedNames, file.Name)
	gate := m.uploadGate
	steps := append([]int(nil), m.uploadProgress...)
	path, err := m.uploadPath, m.uploadErr
	m.mu.Unlock()

	for _, p := range steps {
		if progress != nil {
			progress(p)
		}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", err
	}
	if path == "" {
		path = "uploads/" + file.Name
	}
	return path, nil
}

func (m *mockBackend) ExtractText(ctx context.Context, serverPath string) (*domain.ExtractResponse, error) {
	m.mu.Lock()
	m.extractCalls++
	gate := m.extractGate
	resp, err := m.extractResp, m.extractErr
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &domain.ExtractResponse{}, nil
	}
	return resp, nil
}

func (m *mockBackend) ExportData(ctx context.Context, serverPath string, format domain.ExportFormat) (*domain.Rendition, error) {
	m.mu.Lock()
	m.exportCalls++
	m.exportFormats = append(m.exportFormats, format)
	gate := m.exportGate
	exportErr := m.exportErr
	data := append([]byte(nil), m.exportData...)
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if exportErr != nil {
		return nil, exportErr
	}
	return domain.NewRendition(m.exportType, data, func() {
		m.mu.Lock()
		m.releasedExport++
		m.mu.Unlock()
	}), nil
}

func (m *mockBackend) FetchFile(ctx context.Context, serverPath string) (*domain.Rendition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return domain.NewRendition("application/octet-stream", m.fetchData, nil), nil
}

// mockStorage is an in-memory ClientStorage with failure injection.
type mockStorage struct {
	mu        sync.Mutex
	values    map[string]string
	getErr    error
	setErr    error
	deleteErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{values: make(map[string]string)}
}

func (m *mockStorage) Get(ctx context.Context, clientID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[clientID+"/"+key]
	if !ok {
		return "", domain.ErrStorageKeyNotFound
	}
	return v, nil
}

func (m *mockStorage) Set(ctx context.Context, clientID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[clientID+"/"+key] = value
	return nil
}

func (m *mockStorage) Delete(ctx context.Context, clientID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.values, clientID+"/"+key)
	return nil
}

// recordingDownloader captures saved files.
type recordingDownloader struct {
	saves []savedFile
	err   error
}

type savedFile struct {
	name        string
	contentType string
	data        []byte
}

func (d *recordingDownloader) Save(filename, contentType string, data []byte) error {
	if d.err != nil {
		return d.err
	}
	d.saves = append(d.saves, savedFile{name: filename, contentType: contentType, data: append([]byte(nil), data...)})
	return nil
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }
