package service

import (
	"context"

	"docproc/internal/domain"
)

// UploadService owns the lifecycle of the selected file: selection, transfer
// and the server path that comes back.
type UploadService struct {
	backend domain.ExtractionBackend
	logger  domain.Logger
}

func NewUploadService(backend domain.ExtractionBackend, logger domain.Logger) *UploadService {
	return &UploadService{
		backend: backend,
		logger:  logger,
	}
}

// SelectFile replaces the selection without validating type or size and
// immediately uploads it. A nil file still reaches Upload, which reports the
// missing selection.
func (s *UploadService) SelectFile(ctx context.Context, ws *Workspace, file *domain.LocalFile) (string, error) {
	if file != nil {
		if err := ws.selectFile(file); err != nil {
			return "", err
		}
		s.logger.Debug("File selected", "client_id", ws.ClientID, "name", file.Name, "type", file.ContentType, "bytes", len(file.Data))
	}
	return s.Upload(ctx, ws)
}

// Upload transfers the current selection. On return busy is false and
// progress is 0; either the server path is set and the banner cleared, or
// the server path is empty and the banner holds the failure.
func (s *UploadService) Upload(ctx context.Context, ws *Workspace) (string, error) {
	ticket, err := ws.beginUpload()
	if err != nil {
		return "", err
	}

	path, err := s.backend.Upload(ctx, ticket.local, func(percent int) {
		ws.setUploadProgress(ticket.fileID, percent)
	})
	return ws.finishUpload(ticket, path, err)
}
