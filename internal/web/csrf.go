package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/net/xsrftoken"
)

const (
	CSRF_COOKIE = "csrf_id"
	CSRF_FIELD  = "csrf_token"
	MSG_CSRF    = "The form has expired, please try again."
)

type csrfKey struct{}

// withCSRFIdentity gives every browser a random id that CSRF tokens are
// bound to.
func (s *Server) withCSRFIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(CSRF_COOKIE); err == nil {
			if parsed, err := uuid.Parse(cookie.Value); err == nil {
				id = parsed.String()
			}
		}

		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CSRF_COOKIE,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), csrfKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func csrfIdentity(r *http.Request) string {
	id, _ := r.Context().Value(csrfKey{}).(string)
	return id
}

func (s *Server) csrfToken(r *http.Request, action string) string {
	return xsrftoken.Generate(string(s.secret), csrfIdentity(r), action)
}

// validCSRF checks the token sent as a form field or query parameter.
func (s *Server) validCSRF(r *http.Request, action string) bool {
	token := r.FormValue(CSRF_FIELD)
	if token == "" {
		return false
	}
	return xsrftoken.Valid(token, string(s.secret), csrfIdentity(r), action)
}
