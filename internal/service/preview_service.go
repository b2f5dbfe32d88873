package service

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"docproc/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// PreviewMetadata describes a previewable PDF.
type PreviewMetadata struct {
	PageCount int    `json:"page_count"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
}

// PreviewService serves the selected file back to the browser: images and
// other files as-is, PDFs additionally as a first-page thumbnail.
type PreviewService struct {
	backend domain.ExtractionBackend
	logger  domain.Logger
}

func NewPreviewService(backend domain.ExtractionBackend, logger domain.Logger) *PreviewService {
	return &PreviewService{
		backend: backend,
		logger:  logger,
	}
}

// Source returns the raw bytes of the current selection. The local copy is
// used when present; otherwise the file is fetched from the backend's
// uploads directory. The caller must Release the rendition.
func (s *PreviewService) Source(ctx context.Context, ws *Workspace) (*domain.Rendition, error) {
	t := ws.currentFile()
	if t.local != nil && len(t.local.Data) > 0 {
		contentType := t.local.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return domain.NewRendition(contentType, t.local.Data, nil), nil
	}
	if t.serverPath == "" {
		return nil, domain.ErrPreviewNotAvailable
	}
	return s.backend.FetchFile(ctx, t.serverPath)
}

// Thumbnail renders page 1 of the selected PDF as PNG.
func (s *PreviewService) Thumbnail(ctx context.Context, ws *Workspace) ([]byte, PreviewMetadata, error) {
	t := ws.currentFile()
	if t.local == nil || !t.local.IsPDF() {
		return nil, PreviewMetadata{}, domain.ErrPreviewNotAvailable
	}

	if err := ctx.Err(); err != nil {
		return nil, PreviewMetadata{}, err
	}

	img, meta, err := renderFirstPage(t.local.Data)
	if err != nil {
		s.logger.Warn("PDF thumbnail failed", "client_id", ws.ClientID, "file", t.local.Name, "error", err)
		return nil, PreviewMetadata{}, fmt.Errorf("%w: %v", domain.ErrPreviewNotAvailable, err)
	}
	s.logger.Debug("PDF thumbnail rendered", "client_id", ws.ClientID, "pages", meta.PageCount, "bytes", len(img))
	return img, meta, nil
}

func renderFirstPage(pdfBytes []byte) ([]byte, PreviewMetadata, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, PreviewMetadata{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	info := doc.Metadata()
	meta := PreviewMetadata{
		PageCount: doc.NumPage(),
		Title:     info["title"],
		Author:    info["author"],
	}
	if meta.PageCount == 0 {
		return nil, meta, fmt.Errorf("PDF has no pages")
	}

	page, err := doc.Image(0)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to render page 1: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return nil, meta, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), meta, nil
}
