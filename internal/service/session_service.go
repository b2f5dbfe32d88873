package service

import (
	"context"
	"errors"

	"docproc/internal/domain"
	apperrors "docproc/pkg/errors"
)

// SessionService is the session guard: a purely local logged-in flag that is
// set after the backend accepts a credential pair.
type SessionService struct {
	storage domain.ClientStorage
	backend domain.ExtractionBackend
	logger  domain.Logger
}

func NewSessionService(
	storage domain.ClientStorage,
	backend domain.ExtractionBackend,
	logger domain.Logger,
) *SessionService {
	return &SessionService{
		storage: storage,
		backend: backend,
		logger:  logger,
	}
}

// CheckSession reports whether the client holds a session. Storage failures
// count as logged out.
func (s *SessionService) CheckSession(ctx context.Context, clientID string) domain.Session {
	value, err := s.storage.Get(ctx, clientID, domain.StorageKeyLoggedIn)
	if err != nil {
		if !errors.Is(err, domain.ErrStorageKeyNotFound) {
			s.logger.Error("Failed to read session flag", err, "client_id", clientID)
		}
		return domain.Session{}
	}
	return domain.Session{Authenticated: value != "" && value != "false"}
}

// Login makes a single attempt against the backend, even for empty
// credentials. The flag is only written when the backend answers 200.
func (s *SessionService) Login(ctx context.Context, clientID, username, password string) error {
	if err := s.backend.Login(ctx, username, password); err != nil {
		s.logger.Warn("Login rejected", "client_id", clientID, "error", err)
		if apperrors.IsType(err, apperrors.ErrorTypeAuth) {
			return err
		}
		return apperrors.NewAuthError(domain.MsgInvalidCredentials, err)
	}

	if err := s.storage.Set(ctx, clientID, domain.StorageKeyLoggedIn, "true"); err != nil {
		s.logger.Error("Failed to persist session flag", err, "client_id", clientID)
		return apperrors.NewInternalError("Could not start a session. Please try again.", err)
	}

	s.logger.Info("Client logged in", "client_id", clientID)
	return nil
}

// Logout clears the flag unconditionally.
func (s *SessionService) Logout(ctx context.Context, clientID string) {
	if err := s.storage.Delete(ctx, clientID, domain.StorageKeyLoggedIn); err != nil {
		s.logger.Error("Failed to clear session flag", err, "client_id", clientID)
		return
	}
	s.logger.Info("Client logged out", "client_id", clientID)
}
