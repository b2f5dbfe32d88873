package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"docproc/internal/domain"
	"docproc/internal/repository"
	"docproc/internal/service"
	apperrors "docproc/pkg/errors"
)

// fakeBackend is an in-process ExtractionBackend.
type fakeBackend struct {
	mu         sync.Mutex
	password   string
	uploadErr  error
	extract    *domain.ExtractResponse
	extractErr error
	exportErr  error
	exports    []domain.ExportFormat
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) error {
	if password != f.password {
		return apperrors.NewAuthError(domain.MsgInvalidCredentials, domain.ErrInvalidCredentials)
	}
	return nil
}

func (f *fakeBackend) Upload(ctx context.Context, file *domain.LocalFile, progress domain.ProgressFunc) (string, error) {
	if progress != nil {
		progress(100)
	}
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "uploads/" + file.Name, nil
}

func (f *fakeBackend) ExtractText(ctx context.Context, serverPath string) (*domain.ExtractResponse, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.extract, nil
}

func (f *fakeBackend) ExportData(ctx context.Context, serverPath string, format domain.ExportFormat) (*domain.Rendition, error) {
	f.mu.Lock()
	f.exports = append(f.exports, format)
	f.mu.Unlock()
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return domain.NewRendition("text/csv", []byte("a,b\n1,2\n"), nil), nil
}

func (f *fakeBackend) FetchFile(ctx context.Context, serverPath string) (*domain.Rendition, error) {
	return domain.NewRendition("application/octet-stream", []byte("stored"), nil), nil
}

// testApp wires the real services around a fake backend.
type testApp struct {
	handler    http.Handler
	backend    *fakeBackend
	workspaces *service.WorkspaceManager
	cookie     *http.Cookie
}

func newTestApp(t *testing.T, backend *fakeBackend) *testApp {
	t.Helper()
	logger := NewMockHandlerLogger()
	storage := repository.NewMemoryStateStore()

	sessions := service.NewSessionService(storage, backend, logger)
	themes := service.NewThemeService(storage, logger)
	workspaces := service.NewWorkspaceManager(logger)
	renderer := NewRenderer(logger)

	h := Handlers{
		Auth:  NewAuthHandler(sessions, themes, workspaces, renderer, logger),
		Theme: NewThemeHandler(themes, logger),
		Workspace: NewWorkspaceHandler(WorkspaceHandlerDeps{
			Workspaces: workspaces,
			Themes:     themes,
			Uploads:    service.NewUploadService(backend, logger),
			Extraction: service.NewExtractionService(backend, logger),
			Exports:    service.NewExportService(backend, logger),
			Previews:   service.NewPreviewService(backend, logger),
			Renderer:   renderer,
			Logger:     logger,
		}),
		Sessions: sessions,
		Logger:   logger,
	}

	return &testApp{handler: NewRouter(h), backend: backend, workspaces: workspaces}
}

// do sends req with the client cookie and keeps any cookie issued.
func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.Name == ClientCookieName {
			a.cookie = c
		}
	}
	return rr
}
