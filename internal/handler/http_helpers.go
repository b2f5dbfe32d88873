package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"docproc/internal/domain"
	apperrors "docproc/pkg/errors"
)

type contextKey string

const clientIDContextKey contextKey = "client_id"

// ClientIDFromContext extracts the browser client id set by ClientMiddleware
func ClientIDFromContext(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(clientIDContextKey).(string)
	return id, ok && id != ""
}

func withClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey, clientID)
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// wantsJSON reports whether the caller is the page script rather than a
// plain form submit.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}

// statusFor maps an operation error to the HTTP status of a JSON reply.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrStaleFile):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrPreviewNotAvailable):
		return http.StatusNotFound
	default:
		return apperrors.GetStatusCode(err)
	}
}

// redirectBack sends the browser to the referring page when it belongs to
// this site, otherwise to fallback.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if u, err := url.Parse(r.Referer()); err == nil && u.Host == r.Host && strings.HasPrefix(u.Path, "/") {
		target = u.RequestURI()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
