package handler

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"quill/session"
)

// JWTMiddleware rejects mutation requests without a valid session
// cookie. Reads and the auth endpoints themselves stay open; their
// handlers resolve the session on their own when they need it.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		TokenLookup: "cookie:" + session.CookieName,
		Skipper: func(c echo.Context) bool {
			if c.Request().Method == http.MethodGet || c.Request().Method == http.MethodOptions {
				return true
			}
			switch c.Path() {
			case "/auth/register", "/auth/login", "/login", "/signup":
				return true
			}
			return false
		},
	})
}

// Register wires every route onto e.
func Register(e *echo.Echo, h *Handler) {
	// JSON API
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.GET("/posts", h.ListPosts)
	e.GET("/posts/:id", h.GetPost)
	e.POST("/posts", h.CreatePost)
	e.PATCH("/posts/:id", h.UpdatePost)
	e.DELETE("/posts/:id", h.DeletePost)
	e.GET("/health", h.Health)

	// Frontend
	e.GET("/", h.Home)
	e.GET("/blog/:id", h.BlogPost)
	e.GET("/dashboard", h.Dashboard)
	e.GET("/dashboard/posts/new", h.GetNewPostForm)
	e.GET("/dashboard/posts/:id/edit", h.GetEditPostForm)
	e.POST("/dashboard/posts", h.NewPostSubmit)
	e.POST("/dashboard/posts/:id", h.EditPostSubmit)
	e.POST("/dashboard/posts/:id/delete", h.DeletePostSubmit)
	e.GET("/signup", h.GetSignupForm)
	e.POST("/signup", h.SignupSubmit)
	e.GET("/login", h.GetLoginForm)
	e.POST("/login", h.LoginSubmit)
	e.GET("/logout", h.Logout)
	e.Static("/static", "assets")
	e.File("/favicon.ico", "assets/favicon.ico")
}
