package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"docproc/internal/domain"
	"docproc/internal/service"
	apperrors "docproc/pkg/errors"

	"github.com/gorilla/mux"
)

// WorkspaceRegistry hands out the workspace of a client.
type WorkspaceRegistry interface {
	WorkspaceRemover
	GetOrCreate(clientID string) *service.Workspace
}

// Uploader selects and transfers a file.
type Uploader interface {
	SelectFile(ctx context.Context, ws *service.Workspace, file *domain.LocalFile) (string, error)
}

// Extractor runs an extraction on the uploaded file.
type Extractor interface {
	Extract(ctx context.Context, ws *service.Workspace) (*domain.ExtractionResult, error)
}

// Exporter downloads a rendition of the uploaded file.
type Exporter interface {
	Export(ctx context.Context, ws *service.Workspace, format string, saver domain.Downloader) error
}

// Previewer returns the selected file for display.
type Previewer interface {
	Source(ctx context.Context, ws *service.Workspace) (*domain.Rendition, error)
	Thumbnail(ctx context.Context, ws *service.Workspace) ([]byte, service.PreviewMetadata, error)
}

// WorkspaceHandler serves the processor view and its actions
type WorkspaceHandler struct {
	workspaces      WorkspaceRegistry
	themes          ThemeService
	uploads         Uploader
	extraction      Extractor
	exports         Exporter
	previews        Previewer
	renderer        *Renderer
	logger          domain.Logger
	maxUploadMemory int64
}

// WorkspaceHandlerDeps groups the collaborators of WorkspaceHandler.
type WorkspaceHandlerDeps struct {
	Workspaces      WorkspaceRegistry
	Themes          ThemeService
	Uploads         Uploader
	Extraction      Extractor
	Exports         Exporter
	Previews        Previewer
	Renderer        *Renderer
	Logger          domain.Logger
	MaxUploadMemory int64
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(deps WorkspaceHandlerDeps) *WorkspaceHandler {
	maxMemory := deps.MaxUploadMemory
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}
	return &WorkspaceHandler{
		workspaces:      deps.Workspaces,
		themes:          deps.Themes,
		uploads:         deps.Uploads,
		extraction:      deps.Extraction,
		exports:         deps.Exports,
		previews:        deps.Previews,
		renderer:        deps.Renderer,
		logger:          deps.Logger,
		maxUploadMemory: maxMemory,
	}
}

func (h *WorkspaceHandler) workspace(r *http.Request) *service.Workspace {
	clientID, _ := ClientIDFromContext(r)
	return h.workspaces.GetOrCreate(clientID)
}

// respond finishes a state-changing action: JSON callers get the snapshot,
// form posts are redirected to the processor view.
func (h *WorkspaceHandler) respond(w http.ResponseWriter, r *http.Request, ws *service.Workspace, err error) {
	if wantsJSON(r) {
		writeJSON(w, statusFor(err), ws.Snapshot())
		return
	}
	http.Redirect(w, r, ProcessorPath, http.StatusSeeOther)
}

// Page renders the processor view. The upload notice is shown once.
func (h *WorkspaceHandler) Page(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	snap := ws.Snapshot()
	if snap.Notice != "" {
		ws.ClearNotice()
	}

	h.renderer.Render(w, http.StatusOK, "processor.html", PageData{
		Title:     "AI-Document Processor",
		Theme:     h.themes.Get(r.Context(), ws.ClientID),
		Workspace: snap,
	})
}

// State returns the workspace snapshot, polled by the page while uploading.
func (h *WorkspaceHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workspace(r).Snapshot())
}

// Upload replaces the selection with the posted file and uploads it. No
// type or size validation happens here; the backend decides.
func (h *WorkspaceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)

	var local *domain.LocalFile
	if err := r.ParseMultipartForm(h.maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.logger.Warn("Failed to parse upload form", "client_id", ws.ClientID, "error", err)
	}
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			writeError(w, http.StatusBadRequest, "Could not read uploaded file")
			return
		}
		local = &domain.LocalFile{
			Name:        sanitizeFilename(header.Filename),
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	_, err = h.uploads.SelectFile(r.Context(), ws, local)
	h.respond(w, r, ws, err)
}

// Extract runs one extraction on the uploaded file.
func (h *WorkspaceHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	_, err := h.extraction.Extract(r.Context(), ws)
	h.respond(w, r, ws, err)
}

// SetTab switches the result tab.
func (h *WorkspaceHandler) SetTab(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	ws.SetActiveTab(domain.Tab(r.FormValue("tab")))
	h.respond(w, r, ws, nil)
}

// Search sets the text filter.
func (h *WorkspaceHandler) Search(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	ws.SetSearchQuery(r.FormValue("q"))
	h.respond(w, r, ws, nil)
}

// Paginate jumps to a table page.
func (h *WorkspaceHandler) Paginate(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	n, err := strconv.Atoi(r.FormValue("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid page number")
		return
	}
	ws.Paginate(n)
	h.respond(w, r, ws, nil)
}

// PrevPage moves to the previous table page.
func (h *WorkspaceHandler) PrevPage(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	ws.PrevPage()
	h.respond(w, r, ws, nil)
}

// NextPage moves to the next table page.
func (h *WorkspaceHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	ws.NextPage()
	h.respond(w, r, ws, nil)
}

// ToggleTable flips the visibility of one table.
func (h *WorkspaceHandler) ToggleTable(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil || i < 0 {
		writeError(w, http.StatusBadRequest, "Invalid table index")
		return
	}
	ws.ToggleTable(i)
	h.respond(w, r, ws, nil)
}

// Export streams a backend rendition as an attachment. Failures are logged
// only; the browser gets 204 and stays on the page.
func (h *WorkspaceHandler) Export(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	saver := &httpDownloader{w: w}

	err := h.exports.Export(r.Context(), ws, mux.Vars(r)["format"], saver)
	switch {
	case err == nil || saver.written:
	case errors.Is(err, domain.ErrBusy):
		writeError(w, statusFor(err), domain.MsgBusy)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Preview serves the selected file inline.
func (h *WorkspaceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	rendition, err := h.previews.Source(r.Context(), ws)
	if err != nil {
		h.writePreviewError(w, ws, err)
		return
	}
	defer rendition.Release()

	snap := ws.Snapshot()
	w.Header().Set("Content-Type", rendition.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", snap.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(rendition.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendition.Data)
}

// Thumbnail serves page 1 of the selected PDF as PNG.
func (h *WorkspaceHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	img, meta, err := h.previews.Thumbnail(r.Context(), ws)
	if err != nil {
		h.writePreviewError(w, ws, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Page-Count", strconv.Itoa(meta.PageCount))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (h *WorkspaceHandler) writePreviewError(w http.ResponseWriter, ws *service.Workspace, err error) {
	if errors.Is(err, domain.ErrPreviewNotAvailable) {
		writeError(w, http.StatusNotFound, "No preview available")
		return
	}
	h.logger.Warn("Preview failed", "client_id", ws.ClientID, "error", err)
	writeError(w, statusFor(err), apperrors.UserMessage(err))
}

// httpDownloader saves an export by sending it as an attachment.
type httpDownloader struct {
	w       http.ResponseWriter
	written bool
}

func (d *httpDownloader) Save(filename, contentType string, data []byte) error {
	if d.written {
		return errors.New("download already sent")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := d.w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Cache-Control", "no-store")
	d.w.WriteHeader(http.StatusOK)
	d.written = true

	_, err := d.w.Write(data)
	return err
}

// sanitizeFilename strips any path components from a client file name.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}
