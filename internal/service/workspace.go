package service

import (
	"sync"
	"time"

	"docproc/internal/domain"
	apperrors "docproc/pkg/errors"

	"github.com/google/uuid"
)

// Workspace is the client-side state of one browser client: the selected
// file, the extraction result bound to it, the view state and the banner.
// Mutations happen under mu; backend calls happen between a begin/finish pair
// with mu released, so a late finish may find that the file was replaced.
type Workspace struct {
	ClientID string

	logger domain.Logger

	mu           sync.Mutex
	file         *domain.UploadedFile
	uploading    bool
	progress     int
	inputResets  int
	extracting   bool
	exporting    bool
	result       *domain.ExtractionResult
	view         ViewState
	banner       string
	notice       string
	lastAccessed time.Time
}

// fileTicket captures the selection an in-flight call works on.
type fileTicket struct {
	fileID     string
	local      *domain.LocalFile
	serverPath string
}

// WorkspaceSnapshot is a copy of the workspace for rendering.
type WorkspaceSnapshot struct {
	ClientID     string                `json:"client_id"`
	HasFile      bool                  `json:"has_file"`
	FileName     string                `json:"file_name,omitempty"`
	FileType     string                `json:"file_type,omitempty"`
	ServerPath   string                `json:"server_path,omitempty"`
	IsImage      bool                  `json:"is_image"`
	IsPDF        bool                  `json:"is_pdf"`
	Uploading    bool                  `json:"uploading"`
	Progress     int                   `json:"progress"`
	InputResets  int                   `json:"input_resets"`
	Extracting   bool                  `json:"extracting"`
	Exporting    bool                  `json:"exporting"`
	CanExtract   bool                  `json:"can_extract"`
	Error        string                `json:"error,omitempty"`
	Notice       string                `json:"notice,omitempty"`
	HasResult    bool                  `json:"has_result"`
	Text         string                `json:"text"`
	FilteredText string                `json:"filtered_text"`
	Fields       []domain.Field        `json:"fields"`
	TableCount   int                   `json:"table_count"`
	Tables       []domain.IndexedTable `json:"tables"`
	PageNumbers  []int                 `json:"page_numbers"`
	CurrentPage  int                   `json:"current_page"`
	TotalPages   int                   `json:"total_pages"`
	CanPrev      bool                  `json:"can_prev"`
	CanNext      bool                  `json:"can_next"`
	ActiveTab    domain.Tab            `json:"active_tab"`
	SearchQuery  string                `json:"search_query"`
}

// NewWorkspace creates an empty workspace for a client.
func NewWorkspace(clientID string, logger domain.Logger) *Workspace {
	return &Workspace{
		ClientID:     clientID,
		logger:       logger,
		view:         NewViewState(),
		lastAccessed: time.Now(),
	}
}

// reportLocked routes a failure through the error policy: surfaced errors
// replace the banner, log-only errors leave it alone.
func (w *Workspace) reportLocked(op string, err error) {
	if apperrors.ShouldSurface(err) {
		w.banner = apperrors.UserMessage(err)
		w.logger.Warn("Operation failed", "op", op, "client_id", w.ClientID, "error", err)
		return
	}
	w.logger.Error("Operation failed", err, "op", op, "client_id", w.ClientID)
}

func (w *Workspace) touchLocked() {
	w.lastAccessed = time.Now()
}

// selectFile replaces the selection wholesale. The result of the previous
// file is dropped so it is never shown against the new one.
func (w *Workspace) selectFile(local *domain.LocalFile) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()

	if w.uploading {
		return apperrors.NewValidationError(domain.MsgBusy, domain.ErrBusy)
	}

	w.file = &domain.UploadedFile{ID: uuid.New().String(), Local: local}
	if w.result != nil {
		w.logger.Debug("Dropping result of replaced file", "client_id", w.ClientID, "file_id", w.result.FileID)
	}
	w.result = nil
	w.view.ResetTables()
	w.notice = ""
	return nil
}

func (w *Workspace) beginUpload() (fileTicket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()

	if w.file == nil || w.file.Local == nil {
		err := apperrors.NewValidationError(domain.MsgSelectFileFirst, domain.ErrNoFileSelected)
		w.reportLocked("upload", err)
		return fileTicket{}, err
	}
	if w.uploading {
		return fileTicket{}, apperrors.NewValidationError(domain.MsgBusy, domain.ErrBusy)
	}

	w.uploading = true
	w.progress = 0
	w.notice = ""
	return fileTicket{fileID: w.file.ID, local: w.file.Local}, nil
}

func (w *Workspace) setUploadProgress(fileID string, percent int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.uploading || w.file == nil || w.file.ID != fileID {
		return
	}
	if percent > 100 {
		percent = 100
	}
	if percent > w.progress {
		w.progress = percent
	}
}

// finishUpload always clears busy and progress and resets the file input.
func (w *Workspace) finishUpload(t fileTicket, serverPath string, uploadErr error) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()

	w.uploading = false
	w.progress = 0
	w.inputResets++

	if w.file == nil || w.file.ID != t.fileID {
		w.logger.Warn("Discarding upload response for replaced file", "client_id", w.ClientID, "file_id", t.fileID)
		return "", domain.ErrStaleFile
	}

	if uploadErr != nil {
		w.file.ServerPath = ""
		w.reportLocked("upload", uploadErr)
		return "", uploadErr
	}

	w.file.ServerPath = serverPath
	w.banner = ""
	w.notice = domain.MsgUploadSucceeded
	w.logger.Info("File uploaded", "client_id", w.ClientID, "file_id", t.fileID, "path", serverPath)
	return serverPath, nil
}

func (w *Workspace) beginExtraction() (fileTicket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()

	if !w.file.HasServerPath() {
		err := apperrors.NewValidationError(domain.MsgUploadFirst, domain.ErrNoServerPath)
		w.reportLocked("extract", err)
		return fileTicket{}, err
	}
	if w.extracting {
		return fileTicket{}, apperrors.NewValidationError(domain.MsgBusy, domain.ErrBusy)
	}

	w.extracting = true
	return fileTicket{fileID: w.file.ID, local: w.file.Local, serverPath: w.file.ServerPath}, nil
}

// finishExtraction clears busy on every path. A failure leaves the previous
// result in place.
func (w *Workspace) finishExtraction(t fileTicket, result *domain.ExtractionResult, extractErr error) (*domain.ExtractionResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()

	w.extracting = false

	if w.file == nil || w.file.ID != t.fileID {
		if extractErr != nil {
			w.logger.Error("Extraction failed for replaced file", extractErr, "client_id", w.ClientID, "file_id", t.fileID)
		} else {
			w.logger.Warn("Discarding extraction result for replaced file", "client_id", w.ClientID, "file_id", t.fileID)
		}
		return nil, domain.ErrStaleFile
	}
	if extractErr != nil {
		w.reportLocked("extract", extractErr)
		return nil, extractErr
	}

	w.result = result
	w.view.ResetTables()
	w.banner = ""
	w.logger.Info("Extraction stored",
		"client_id", w.ClientID,
		"file_id", t.fileID,
		"fields", len(result.Fields),
		"tables", len(result.Tables))
	return result, nil
}

func (w *Workspace) beginExport() (fileTicket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()

	if !w.file.HasServerPath() {
		err := apperrors.NewExportError("no uploaded file to export", domain.ErrNoServerPath)
		w.reportLocked("export", err)
		return fileTicket{}, err
	}
	if w.exporting {
		err := apperrors.NewValidationError(domain.MsgBusy, domain.ErrBusy)
		w.logger.Warn("Export refused while another is running", "client_id", w.ClientID)
		return fileTicket{}, err
	}
	w.exporting = true
	return fileTicket{fileID: w.file.ID, local: w.file.Local, serverPath: w.file.ServerPath}, nil
}

func (w *Workspace) finishExport(format domain.ExportFormat, exportErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.exporting = false
	if exportErr != nil {
		w.reportLocked("export", exportErr)
		return
	}
	w.logger.Info("Export downloaded", "client_id", w.ClientID, "format", format)
}

func (w *Workspace) reportExport(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reportLocked("export", err)
}

// currentFile returns the selection the preview should show.
func (w *Workspace) currentFile() fileTicket {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return fileTicket{}
	}
	return fileTicket{fileID: w.file.ID, local: w.file.Local, serverPath: w.file.ServerPath}
}

func (w *Workspace) tableCountLocked() int {
	if w.result == nil {
		return 0
	}
	return len(w.result.Tables)
}

// SetActiveTab switches the result tab.
func (w *Workspace) SetActiveTab(tab domain.Tab) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()
	w.view.SetActiveTab(tab)
}

// SetSearchQuery sets the text filter.
func (w *Workspace) SetSearchQuery(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()
	w.view.SetSearchQuery(query)
}

// PrevPage moves the tables tab back one page.
func (w *Workspace) PrevPage() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()
	w.view.PrevPage()
}

// NextPage moves the tables tab forward one page.
func (w *Workspace) NextPage() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()
	w.view.NextPage(w.tableCountLocked())
}

// Paginate jumps to page n, clamped to the available pages.
func (w *Workspace) Paginate(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()
	w.view.Paginate(n, w.tableCountLocked())
}

// ToggleTable flips the visibility of table i.
func (w *Workspace) ToggleTable(i int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()
	w.view.ToggleTable(i)
}

// ClearNotice drops the one-shot success notice after it has been shown.
func (w *Workspace) ClearNotice() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notice = ""
}

// LastAccessed returns the time of the last interaction.
func (w *Workspace) LastAccessed() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastAccessed
}

// Snapshot copies the workspace for rendering.
func (w *Workspace) Snapshot() WorkspaceSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	count := w.tableCountLocked()
	total := TotalPages(count)
	snap := WorkspaceSnapshot{
		ClientID:    w.ClientID,
		Uploading:   w.uploading,
		Progress:    w.progress,
		InputResets: w.inputResets,
		Extracting:  w.extracting,
		Exporting:   w.exporting,
		Error:       w.banner,
		Notice:      w.notice,
		Fields:      []domain.Field{},
		Tables:      []domain.IndexedTable{},
		TableCount:  count,
		PageNumbers: PageNumbers(count),
		CurrentPage: w.view.CurrentPage,
		TotalPages:  total,
		CanPrev:     w.view.CurrentPage > 1,
		CanNext:     w.view.CurrentPage < total,
		ActiveTab:   w.view.ActiveTab,
		SearchQuery: w.view.SearchQuery,
	}

	if w.file != nil {
		snap.HasFile = true
		snap.ServerPath = w.file.ServerPath
		snap.CanExtract = w.file.HasServerPath() && !w.extracting
		if w.file.Local != nil {
			snap.FileName = w.file.Local.Name
			snap.FileType = w.file.Local.ContentType
			snap.IsImage = w.file.Local.IsImage()
			snap.IsPDF = w.file.Local.IsPDF()
		}
	}

	if w.result != nil {
		snap.HasResult = true
		snap.Text = w.result.Text
		snap.FilteredText = FilteredText(w.result.Text, w.view.SearchQuery)
		snap.Fields = append(snap.Fields, w.result.Fields...)
		if current := w.view.CurrentTables(w.result.Tables); current != nil {
			snap.Tables = current
		}
	}
	return snap
}

// ServerPath returns the server path of the current selection.
func (w *Workspace) ServerPath() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return ""
	}
	return w.file.ServerPath
}

// Result returns the extraction result bound to the current selection.
func (w *Workspace) Result() *domain.ExtractionResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// View returns a copy of the view state.
func (w *Workspace) View() ViewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := w.view
	v.TableVisibility = make(map[int]bool, len(w.view.TableVisibility))
	for k, val := range w.view.TableVisibility {
		v.TableVisibility[k] = val
	}
	return v
}

// Banner returns the user-visible error message.
func (w *Workspace) Banner() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.banner
}
