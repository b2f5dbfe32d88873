package service

import (
	"context"

	"docproc/internal/domain"
)

// ExtractionService runs one extraction for the current server path and
// binds the result to the file it came from.
type ExtractionService struct {
	backend domain.ExtractionBackend
	logger  domain.Logger
}

func NewExtractionService(backend domain.ExtractionBackend, logger domain.Logger) *ExtractionService {
	return &ExtractionService{
		backend: backend,
		logger:  logger,
	}
}

// Extract fails fast without a server path. On success text, fields and
// tables are replaced wholesale; on failure the previous result stays.
func (s *ExtractionService) Extract(ctx context.Context, ws *Workspace) (*domain.ExtractionResult, error) {
	ticket, err := ws.beginExtraction()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Extracting", "client_id", ws.ClientID, "path", ticket.serverPath)
	resp, err := s.backend.ExtractText(ctx, ticket.serverPath)
	if err != nil {
		return ws.finishExtraction(ticket, nil, err)
	}
	return ws.finishExtraction(ticket, resp.ToResult(ticket.fileID), nil)
}
