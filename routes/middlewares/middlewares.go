package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/danschewy/lexiform/config"
)

// Authenticated validates a bearer token and requires a user identity claim.
func Authenticated(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(cfg.TokenSecret, nil), requireUser).Handler(next)
	}
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r) == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MaybeAuthenticated validates the bearer token only when one is present,
// so a handler can tell an authenticated submitter from an anonymous one
// without turning anonymous requests away at the door.
func MaybeAuthenticated(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authorized := oauth.Authorize(cfg.TokenSecret, nil)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			authorized.ServeHTTP(w, r)
		})
	}
}

// CookieToBearer lets browser sessions established by the OAuth callback
// reach the API: when no Authorization header is set, the access_token
// cookie is promoted to one.
func CookieToBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if token, err := r.Cookie("access_token"); err == nil {
				r.Header.Set("Authorization", "Bearer "+token.Value)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the session user, or "" on anonymous requests.
func UserID(r *http.Request) string {
	claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string)
	if !ok {
		return ""
	}
	return claims["sub"]
}

func Email(r *http.Request) string {
	claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string)
	if !ok {
		return ""
	}
	return claims["email"]
}
