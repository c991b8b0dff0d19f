package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/korssa/gong34/internal/admin"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/cryptox"
	"github.com/korssa/gong34/internal/storage"
)

// TokenCookie carries the admin token for browser clients.
const TokenCookie = "gallery_admin"

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// identity attaches the admin identity of a valid token to the request
// context. A genuine token that has expired means authentication was lost,
// so the gate is refreshed. Forged or malformed tokens are only ignored.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		id, err := s.deps.Auth.Verify(token)
		if err != nil {
			s.logger.Info(ctx, "admin token rejected", "error", err)
			if errors.Is(err, common.ErrTokenExpired) {
				if err := s.deps.Gate.Refresh(ctx); err != nil {
					s.logger.Warn(ctx, "gate refresh failed", "error", err)
				}
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(admin.WithIdentity(ctx, id)))
	})
}

// requireReady holds requests back until startup has loaded the catalog.
func (s *Server) requireReady(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			s.writeError(w, r, common.ErrNotReady)
			return
		}
		h(w, r)
	}
}

// requireIdentity admits requests that carry an admin identity.
func (s *Server) requireIdentity(h http.HandlerFunc) http.Handler {
	return s.requireReady(func(w http.ResponseWriter, r *http.Request) {
		if !admin.Authenticated(r.Context()) {
			s.writeError(w, r, common.ErrUnauthorized)
			return
		}
		h(w, r)
	})
}

// requireAdmin admits requests that carry an admin identity while the gate
// is unlocked.
func (s *Server) requireAdmin(h http.HandlerFunc) http.Handler {
	return s.requireReady(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !admin.Authenticated(ctx) {
			s.writeError(w, r, common.ErrUnauthorized)
			return
		}
		if !s.deps.Gate.Visible(ctx) {
			s.writeJSON(w, r, http.StatusForbidden, errorBody{Success: false, Error: "admin mode is locked"})
			return
		}
		h(w, r)
	})
}

// requireUploadKey guards the local file endpoints. Without a configured key
// they are open.
func (s *Server) requireUploadKey(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.UploadKey != "" && !cryptox.EqualSecret(r.Header.Get(storage.UploadKeyHeader), s.deps.UploadKey) {
			s.writeJSON(w, r, http.StatusUnauthorized, storage.UploadResult{Success: false, Error: "invalid upload key"})
			return
		}
		h(w, r)
	})
}
