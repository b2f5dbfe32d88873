package handler

import (
	"net/http"

	"docproc/internal/domain"
)

// ThemeHandler flips the dark mode preference from either view.
type ThemeHandler struct {
	themes ThemeService
	logger domain.Logger
}

func NewThemeHandler(themes ThemeService, logger domain.Logger) *ThemeHandler {
	return &ThemeHandler{themes: themes, logger: logger}
}

// Toggle persists the flipped preference and sends the browser back.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := ClientIDFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Client id missing")
		return
	}

	theme, err := h.themes.Toggle(r.Context(), clientID)
	if wantsJSON(r) {
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not save theme")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"dark": theme.Dark, "theme": theme.Attribute()})
		return
	}
	redirectBack(w, r, LoginPath)
}
