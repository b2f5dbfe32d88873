package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"docproc/internal/domain"
	apperrors "docproc/pkg/errors"

	"github.com/google/uuid"
)

var bufferPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// BackendClient talks to the extraction service over HTTP.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	logger     domain.Logger
}

// NewBackendClient creates a backend client. A zero timeout leaves requests
// unbounded.
func NewBackendClient(config domain.Config, logger domain.Logger) *BackendClient {
	return NewBackendClientWithHTTP(config.GetBackendURL(), &http.Client{Timeout: config.GetBackendTimeout()}, logger)
}

// NewBackendClientWithHTTP creates a backend client on top of httpClient.
func NewBackendClientWithHTTP(baseURL string, httpClient *http.Client, logger domain.Logger) *BackendClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type uploadResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Login checks the credential pair with HTTP basic auth. Only a 200 counts.
func (c *BackendClient) Login(ctx context.Context, username, password string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login/", nil)
	if err != nil {
		return apperrors.NewInternalError("failed to build login request", err)
	}
	req.SetBasicAuth(username, password)

	resp, raw, err := c.do(req)
	if err != nil {
		return apperrors.NewAuthError(domain.MsgInvalidCredentials, err)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewAuthError(domain.MsgInvalidCredentials, domain.ErrInvalidCredentials).
			WithDetails(detailOrStatus(raw, resp.StatusCode))
	}
	return nil
}

// Upload sends the file as multipart field "file" and returns the server path.
func (c *BackendClient) Upload(ctx context.Context, file *domain.LocalFile, progress domain.ProgressFunc) (string, error) {
	if file == nil {
		return "", apperrors.NewValidationError(domain.MsgSelectFileFirst, domain.ErrNoFileSelected)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", apperrors.NewInternalError("failed to build upload body", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", apperrors.NewInternalError("failed to build upload body", err)
	}
	if err := writer.Close(); err != nil {
		return "", apperrors.NewInternalError("failed to build upload body", err)
	}

	total := int64(body.Len())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/", newProgressReader(body, total, progress))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build upload request", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, raw, err := c.do(req)
	if err != nil {
		return "", apperrors.NewTransportError(domain.MsgUploadFailed, err)
	}
	if resp.StatusCode/100 != 2 {
		return "", apperrors.NewTransportError(domain.MsgUploadFailed, fmt.Errorf("upload rejected with status %d", resp.StatusCode)).
			WithDetails(detailOrStatus(raw, resp.StatusCode))
	}

	var payload uploadResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", apperrors.NewTransportError(domain.MsgUploadFailed, fmt.Errorf("decode upload response: %w", err))
	}
	if payload.Path == "" {
		return "", apperrors.NewTransportError(domain.MsgUploadFailed, fmt.Errorf("upload response without path"))
	}
	return payload.Path, nil
}

// ExtractText asks the backend to extract text, fields and tables.
func (c *BackendClient) ExtractText(ctx context.Context, serverPath string) (*domain.ExtractResponse, error) {
	payload, err := json.Marshal(map[string]string{"file_path": serverPath})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode extraction request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract_text/", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build extraction request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, raw, err := c.do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(domain.MsgExtractionFailed, err)
	}
	if resp.StatusCode/100 != 2 {
		appErr := apperrors.NewTransportError(domain.MsgExtractionFailed, fmt.Errorf("extraction rejected with status %d", resp.StatusCode))
		if detail := parseDetail(raw); detail != "" {
			// the backend detail replaces the generic banner text
			appErr.Message = detail
		}
		return nil, appErr
	}

	var out domain.ExtractResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperrors.NewTransportError(domain.MsgExtractionFailed, fmt.Errorf("decode extraction response: %w", err))
	}
	return &out, nil
}

// ExportData fetches a rendition of the latest extraction for serverPath.
// The caller must Release the rendition.
func (c *BackendClient) ExportData(ctx context.Context, serverPath string, format domain.ExportFormat) (*domain.Rendition, error) {
	query := url.Values{}
	query.Set("file_path", serverPath)
	query.Set("format", string(format))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/export_data/?"+query.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewExportError("failed to build export request", err)
	}
	rendition, err := c.fetchBinary(req)
	if err != nil {
		return nil, apperrors.NewExportError(domain.MsgExportFailed, err)
	}
	return rendition, nil
}

// FetchFile retrieves the uploaded file back by its server path.
// The caller must Release the rendition.
func (c *BackendClient) FetchFile(ctx context.Context, serverPath string) (*domain.Rendition, error) {
	if !strings.HasPrefix(serverPath, "/") {
		serverPath = "/" + serverPath
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+serverPath, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build file request", err)
	}
	rendition, err := c.fetchBinary(req)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to fetch uploaded file", err)
	}
	return rendition, nil
}

func (c *BackendClient) fetchBinary(req *http.Request) (*domain.Rendition, error) {
	reqID := uuid.New().String()
	start := time.Now()
	c.logger.Debug("backend request", "req_id", reqID, "method", req.Method, "path", req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", err, "req_id", reqID, "path", req.URL.Path)
		return nil, err
	}
	defer resp.Body.Close()

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	release := func() {
		buf.Reset()
		bufferPool.Put(buf)
	}
	if _, err := io.Copy(buf, resp.Body); err != nil {
		release()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.Debug("backend response", "req_id", reqID, "status", resp.StatusCode, "bytes", buf.Len(), "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		detail := detailOrStatus(buf.Bytes(), resp.StatusCode)
		release()
		return nil, fmt.Errorf("backend returned %d: %s", resp.StatusCode, detail)
	}
	return domain.NewRendition(resp.Header.Get("Content-Type"), buf.Bytes(), release), nil
}

func (c *BackendClient) do(req *http.Request) (*http.Response, []byte, error) {
	reqID := uuid.New().String()
	start := time.Now()
	c.logger.Debug("backend request", "req_id", reqID, "method", req.Method, "path", req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", err, "req_id", reqID, "path", req.URL.Path)
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read backend response", err, "req_id", reqID, "path", req.URL.Path)
		return nil, nil, err
	}

	c.logger.Debug("backend response", "req_id", reqID, "status", resp.StatusCode, "bytes", len(raw), "elapsed_ms", time.Since(start).Milliseconds())
	return resp, raw, nil
}

// parseDetail returns the string detail of an error body, if any.
func parseDetail(raw []byte) string {
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}

func detailOrStatus(raw []byte, status int) string {
	if detail := parseDetail(raw); detail != "" {
		return detail
	}
	if summary := summarizeBody(raw); summary != "" && !json.Valid(raw) {
		return fmt.Sprintf("status %d: %s", status, summary)
	}
	return fmt.Sprintf("status %d", status)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
