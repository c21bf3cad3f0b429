package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielsct56bm/cerro-service/internal/models"
	"github.com/danielsct56bm/cerro-service/internal/store"
)

type authContextKey struct{}

type authInfo struct {
	Session models.Session
	User    models.User
}

// AuthMiddleware resolves the session once and carries the user in
// the request context. Kiosk-facing and bootstrap endpoints stay
// public.
func AuthMiddleware(st store.AuthStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) {
			next.ServeHTTP(w, r)
			return
		}
		sessionID := sessionIDFromRequest(r)
		if sessionID == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
			return
		}
		session, user, err := st.GetSession(r.Context(), sessionID)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid session")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		ctx := context.WithValue(r.Context(), authContextKey{}, authInfo{Session: session, User: user})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authFromContext(ctx context.Context) (authInfo, bool) {
	value := ctx.Value(authContextKey{})
	if value == nil {
		return authInfo{}, false
	}
	info, ok := value.(authInfo)
	return info, ok
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (authInfo, bool) {
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return authInfo{}, false
	}
	return info, true
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, roles ...models.RoleKey) (authInfo, bool) {
	info, ok := h.requireUser(w, r)
	if !ok {
		return authInfo{}, false
	}
	for _, role := range roles {
		if info.User.RoleKey == role {
			return info, true
		}
	}
	writeError(w, http.StatusForbidden, "access_denied", "role does not allow this action")
	return authInfo{}, false
}

func sessionIDFromRequest(r *http.Request) string {
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.Header.Get("X-Session-ID"))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func isPublicEndpoint(r *http.Request) bool {
	switch {
	case r.URL.Path == "/healthz" || r.URL.Path == "/metrics":
		return true
	case r.URL.Path == "/api/setup":
		return true
	case r.URL.Path == "/api/auth/login":
		return true
	case strings.HasPrefix(r.URL.Path, "/api/kiosk/"):
		return true
	case strings.HasPrefix(r.URL.Path, "/api/kiosks/register/"):
		return true
	case strings.HasPrefix(r.URL.Path, "/ws/"):
		return true
	default:
		return r.Method == http.MethodOptions
	}
}
