package handler

import (
	"context"
	"net/http"
	"time"

	"docproc/internal/domain"

	"github.com/google/uuid"
)

// ClientCookieName identifies the browser client across requests.
const ClientCookieName = "docproc_client"

const clientCookieMaxAge = 365 * 24 * 60 * 60

// SessionChecker is the part of the session guard the middleware needs.
type SessionChecker interface {
	CheckSession(ctx context.Context, clientID string) domain.Session
}

// ClientMiddleware assigns every browser a stable client id cookie and puts
// it in the request context.
func ClientMiddleware(logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ""
			if c, err := r.Cookie(ClientCookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					clientID = id.String()
				}
			}

			if clientID == "" {
				clientID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     ClientCookieName,
					Value:    clientID,
					Path:     "/",
					MaxAge:   clientCookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   r.TLS != nil,
				})
				logger.Debug("Issued client id", "client_id", clientID)
			}

			next.ServeHTTP(w, r.WithContext(withClientID(r.Context(), clientID)))
		})
	}
}

// SessionGuard keeps clients without a session out of the processor. Page
// requests are redirected to the login view, everything else gets 401.
func SessionGuard(sessions SessionChecker, logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, ok := ClientIDFromContext(r)
			if ok && sessions.CheckSession(r.Context(), clientID).Authenticated {
				next.ServeHTTP(w, r)
				return
			}

			logger.Debug("Session required", "path", r.URL.Path, "client_id", clientID)
			if r.Method == http.MethodGet && !wantsJSON(r) {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			writeError(w, http.StatusUnauthorized, "Login required")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// RequestLogger logs one line per request.
func RequestLogger(logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			clientID, _ := ClientIDFromContext(r)
			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration", time.Since(start).String(),
				"client_id", clientID)
		})
	}
}
