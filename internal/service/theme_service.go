package service

import (
	"context"
	"errors"
	"strconv"

	"docproc/internal/domain"
)

// ThemeService stores the dark/light preference. It never touches the session
// or any workspace.
type ThemeService struct {
	storage domain.ClientStorage
	logger  domain.Logger
}

func NewThemeService(storage domain.ClientStorage, logger domain.Logger) *ThemeService {
	return &ThemeService{
		storage: storage,
		logger:  logger,
	}
}

// Get returns the stored preference, light when unset.
func (s *ThemeService) Get(ctx context.Context, clientID string) domain.ThemePreference {
	value, err := s.storage.Get(ctx, clientID, domain.StorageKeyDarkMode)
	if err != nil {
		if !errors.Is(err, domain.ErrStorageKeyNotFound) {
			s.logger.Error("Failed to read theme preference", err, "client_id", clientID)
		}
		return domain.ThemePreference{}
	}
	return domain.ThemePreference{Dark: value == "true"}
}

// Toggle flips and persists the preference.
func (s *ThemeService) Toggle(ctx context.Context, clientID string) (domain.ThemePreference, error) {
	next := domain.ThemePreference{Dark: !s.Get(ctx, clientID).Dark}
	if err := s.storage.Set(ctx, clientID, domain.StorageKeyDarkMode, strconv.FormatBool(next.Dark)); err != nil {
		s.logger.Error("Failed to persist theme preference", err, "client_id", clientID)
		return domain.ThemePreference{Dark: !next.Dark}, err
	}
	s.logger.Debug("Theme toggled", "client_id", clientID, "theme", next.Attribute())
	return next, nil
}
