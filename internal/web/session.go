package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/monorkin/lab-roster/internal/auth"
)

const (
	SESSION_COOKIE     = "session"
	MSG_LOGIN_REQUIRED = "You need to log in to access this page."
)

type principalKey struct{}

func principalFromContext(ctx context.Context) *auth.Principal {
	principal, _ := ctx.Value(principalKey{}).(*auth.Principal)
	return principal
}

// clientOf describes the browser behind r. Forwarding headers only count
// when the server trusts its proxy, in which case RealIP has already
// rewritten RemoteAddr.
func clientOf(r *http.Request) auth.Client {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return auth.Client{UserAgent: r.UserAgent(), IP: ip}
}

func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(SESSION_COOKIE); err == nil {
			token = cookie.Value
		}

		principal, err := s.auth.Authenticate(r.Context(), token, clientOf(r))
		if err != nil {
			if !errors.Is(err, auth.ErrUnauthenticated) {
				s.serverError(w, r, err)
				return
			}
			if token != "" {
				s.clearSessionCookie(w)
			}
			s.flash(r, FLASH_INFO, MSG_LOGIN_REQUIRED)
			s.redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()))
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, grant *auth.Grant) {
	cookie := &http.Cookie{
		Name:     SESSION_COOKIE,
		Value:    grant.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if grant.Persistent {
		cookie.Expires = grant.ExpiresAt
	}
	http.SetCookie(w, cookie)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SESSION_COOKIE,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext accepts only same-site absolute paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
