package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"quill/config"
	"quill/domain"
	"quill/repository"
	"quill/session"
)

const bcryptCost = 12

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := (domain.User{Name: req.Name, Email: req.Email}).Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}

	if !h.Gate.Available(c.Request().Context()) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return err
	}

	user, err := h.Users.Create(c.Request().Context(), req.Name, req.Email, string(hashed))
	if errors.Is(err, repository.ErrConflict) {
		return echo.NewHTTPError(http.StatusConflict, "a user with this email already exists")
	}
	if err != nil {
		h.Gate.MarkDown()
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user": userDTO{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, err := h.authenticate(c, req.Email, req.Password)
	if err != nil {
		return err
	}

	cookie, err := session.Cookie(user.Email, h.Config.JWTSecret)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, echo.Map{
		"user": userDTO{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (h *Handler) authenticate(c echo.Context, email, password string) (*domain.User, error) {
	if !h.Gate.Available(c.Request().Context()) {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}

	user, err := h.Users.ByEmail(c.Request().Context(), email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		h.Gate.MarkDown()
		return nil, httpError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	return user, nil
}

// GetLoginForm handles GET /login.
func (h *Handler) GetLoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "user-login.html", echo.Map{})
}

// GetSignupForm handles GET /signup.
func (h *Handler) GetSignupForm(c echo.Context) error {
	if !h.Config.EnableSignup {
		return c.HTML(http.StatusForbidden, "<h1>Forbidden!</h1><p>Sign up has been disabled.</p>")
	}
	return c.Render(http.StatusOK, "user-signup.html", echo.Map{})
}

// LoginSubmit handles the POST /login form.
func (h *Handler) LoginSubmit(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return c.HTML(http.StatusBadRequest, "Bad request")
	}

	user, err := h.authenticate(c, email, password)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusUnauthorized {
			return c.HTML(http.StatusUnauthorized, "Wrong email or password")
		}
		return err
	}

	cookie, err := session.Cookie(user.Email, h.Config.JWTSecret)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/dashboard")
}

// SignupSubmit handles the POST /signup form.
func (h *Handler) SignupSubmit(c echo.Context) error {
	if h.Config.Env != config.DevEnv && !h.Config.EnableSignup {
		return c.HTML(http.StatusForbidden, "<h1>Forbidden!</h1><p>Sign up has been disabled.</p>")
	}

	u := domain.User{Name: c.FormValue("name"), Email: c.FormValue("email")}
	password := c.FormValue("password")
	if err := u.Validate(); err != nil {
		return c.HTML(http.StatusBadRequest, err.Error())
	}
	if len(password) < 6 {
		return c.HTML(http.StatusBadRequest, "password must be at least 6 characters")
	}

	if !h.Gate.Available(c.Request().Context()) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	user, err := h.Users.Create(c.Request().Context(), u.Name, u.Email, string(hashed))
	if errors.Is(err, repository.ErrConflict) {
		return c.HTML(http.StatusConflict, "Email already taken")
	}
	if err != nil {
		h.Gate.MarkDown()
		return httpError(err)
	}

	cookie, err := session.Cookie(user.Email, h.Config.JWTSecret)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/dashboard")
}

// Logout handles GET /logout.
func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(session.ClearedCookie())
	return c.Redirect(http.StatusFound, "/")
}
