package service

import (
	"context"

	"docproc/internal/domain"
	apperrors "docproc/pkg/errors"
)

// ExportService downloads a backend rendition of the current file. Failures
// are logged and never reach the banner.
type ExportService struct {
	backend domain.ExtractionBackend
	logger  domain.Logger
}

func NewExportService(backend domain.ExtractionBackend, logger domain.Logger) *ExportService {
	return &ExportService{
		backend: backend,
		logger:  logger,
	}
}

// Export fetches the rendition in format and hands it to saver exactly once
// under the fixed file name. The response buffer is released after the save.
func (s *ExportService) Export(ctx context.Context, ws *Workspace, format string, saver domain.Downloader) error {
	f, err := domain.ParseExportFormat(format)
	if err != nil {
		appErr := apperrors.NewExportError("unsupported export format", err).WithDetails(format)
		ws.reportExport(appErr)
		return appErr
	}

	ticket, err := ws.beginExport()
	if err != nil {
		return err
	}

	rendition, err := s.backend.ExportData(ctx, ticket.serverPath, f)
	if err != nil {
		ws.finishExport(f, err)
		return err
	}
	defer rendition.Release()

	if err := saver.Save(f.Filename(), rendition.ContentType, rendition.Data); err != nil {
		appErr := apperrors.NewExportError(domain.MsgExportFailed, err)
		ws.finishExport(f, appErr)
		return appErr
	}

	ws.finishExport(f, nil)
	return nil
}
