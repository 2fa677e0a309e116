// Package session derives a request-scoped user identity from the JWT
// Authorization cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"quill/db"
	"quill/domain"
	"quill/repository"
)

const CookieName = "Authorization"

const tokenLifetime = 7 * 24 * time.Hour

// Cookie issues the signed session cookie for email.
func Cookie(email, secret string) (*http.Cookie, error) {
	if secret == "" {
		return nil, errors.New("missing secret")
	}
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["email"] = email
	exp := time.Now().Add(tokenLifetime)
	claims["exp"] = exp.Unix()
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	cookie := new(http.Cookie)
	cookie.Name = CookieName
	cookie.Value = signed
	cookie.Expires = exp
	cookie.Path = "/"
	cookie.HttpOnly = true

	return cookie, nil
}

// ClearedCookie expires the session cookie.
func ClearedCookie() *http.Cookie {
	cookie := new(http.Cookie)
	cookie.Name = CookieName
	cookie.Value = ""
	cookie.Path = "/"
	cookie.Expires = time.Now().Add(-1 * time.Second)
	return cookie
}

// Resolver maps the session cookie to a stored user, consulting the
// availability gate before touching the store.
type Resolver struct {
	Users  repository.UserRepository
	Gate   *db.Gate
	Secret string
}

// CurrentUser returns the user for the request's session cookie. A
// missing or invalid cookie is anonymous (nil, nil), as is a valid
// claim with no matching row. The only error paths are the gate
// reporting the store unreachable and the lookup itself failing.
func (r *Resolver) CurrentUser(c echo.Context) (*domain.User, error) {
	email := EmailFromCookie(c, r.Secret)
	if email == "" {
		return nil, nil
	}

	ctx := c.Request().Context()
	if !r.Gate.Available(ctx) {
		return nil, db.ErrUnavailable
	}

	user, err := r.Users.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		r.Gate.MarkDown()
		return nil, fmt.Errorf("resolving session user: %w", err)
	}
	return user, nil
}

// EmailFromCookie extracts the verified email claim from the session
// cookie, or "" when there is no usable session.
func EmailFromCookie(c echo.Context, secret string) string {
	if secret == "" {
		return ""
	}

	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		// SigningMethodHMAC implements the HMAC-SHA family of signing methods.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}
