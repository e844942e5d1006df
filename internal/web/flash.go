package web

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	FLASH_COOKIE = "flash"
	FLASH_TTL    = 5 * time.Minute
	flashSubject = "flash"
)

const (
	FLASH_INFO    = "info"
	FLASH_SUCCESS = "success"
	FLASH_WARNING = "warning"
	FLASH_ERROR   = "error"
)

type Flash struct {
	Category string `json:"c"`
	Text     string `json:"t"`
}

type flashClaims struct {
	Messages []Flash `json:"msgs"`
	jwt.RegisteredClaims
}

// flashBuffer holds messages queued during the current request.
type flashBuffer struct {
	pending []Flash
}

type flashKey struct{}

func (s *Server) withFlashes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), flashKey{}, &flashBuffer{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func flashBufferOf(r *http.Request) *flashBuffer {
	buf, _ := r.Context().Value(flashKey{}).(*flashBuffer)
	return buf
}

// flash queues a message for the next rendered page.
func (s *Server) flash(r *http.Request, category, text string) {
	if buf := flashBufferOf(r); buf != nil {
		buf.pending = append(buf.pending, Flash{Category: category, Text: text})
	}
}

// redirect carries queued messages over to the next request.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, location string) {
	if buf := flashBufferOf(r); buf != nil && len(buf.pending) > 0 {
		messages := append(s.readFlashCookie(r), buf.pending...)
		buf.pending = nil
		if err := s.writeFlashCookie(w, messages); err != nil {
			s.logger.Error("Failed to write flash cookie", "error", err)
		}
	}
	http.Redirect(w, r, location, http.StatusFound)
}

// takeFlashes returns every message for this render and clears the cookie.
func (s *Server) takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	messages := s.readFlashCookie(r)
	if _, err := r.Cookie(FLASH_COOKIE); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     FLASH_COOKIE,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if buf := flashBufferOf(r); buf != nil {
		messages = append(messages, buf.pending...)
		buf.pending = nil
	}
	return messages
}

func (s *Server) writeFlashCookie(w http.ResponseWriter, messages []Flash) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, flashClaims{
		Messages: messages,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   flashSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(FLASH_TTL)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FLASH_COOKIE,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// readFlashCookie ignores cookies that are missing, forged or stale.
func (s *Server) readFlashCookie(r *http.Request) []Flash {
	cookie, err := r.Cookie(FLASH_COOKIE)
	if err != nil || cookie.Value == "" {
		return nil
	}

	var claims flashClaims
	_, err = jwt.ParseWithClaims(cookie.Value, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(flashSubject))
	if err != nil {
		s.logger.Debug("Dropped invalid flash cookie", "error", err)
		return nil
	}
	return claims.Messages
}
