package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/acme/autocert"

	"quill/config"
	"quill/db"
	"quill/handler"
	"quill/repository"
	"quill/session"
	"quill/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	fmt.Println("Running database schema migrations...")
	d, err := db.Open(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		panic(err)
	}
	if err := db.Migrate(d, cfg.DBDriver, cfg.MigrationsURL); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No database schema migration ran. Database schema already in latest version")
		} else {
			// A down store at boot is not fatal; the gate keeps the app
			// in degraded mode until it comes back.
			fmt.Printf("Error during database schema migration: %v\n", err)
		}
	}

	gate := db.NewGate(context.Background(), d)
	cache := web.NewPageCache()
	users := repository.NewUserRepository(d)
	posts := repository.NewPostRepository(d, cache)
	resolver := &session.Resolver{Users: users, Gate: gate, Secret: cfg.JWTSecret}

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(handler.JWTMiddleware(cfg.JWTSecret))

	h := &handler.Handler{
		Users:    users,
		Posts:    posts,
		Resolver: resolver,
		Gate:     gate,
		Cache:    cache,
		Renderer: web.NewTemplateRegistry("templates",
			"index.html", "post-view.html", "post-edit.html", "dashboard.html",
			"user-login.html", "user-signup.html"),
		Config: cfg,
	}
	e.Renderer = h.Renderer

	handler.Register(e, h)

	e.HTTPErrorHandler = customHTTPErrorHandler

	if cfg.Addr != "" {
		e.Logger.Fatal(e.Start(cfg.Addr))
	} else {
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache("/var/www/.cache")
		if cfg.WhitelistHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.WhitelistHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		e.Logger.Fatal(e.StartAutoTLS(":443"))
	}
}

// customHTTPErrorHandler serves the static error pages for page routes
// and leaves API routes with echo's JSON errors.
func customHTTPErrorHandler(err error, c echo.Context) {
	path := c.Request().URL.Path
	if path == "/health" || strings.HasPrefix(path, "/auth") || strings.HasPrefix(path, "/posts") {
		c.Echo().DefaultHTTPErrorHandler(err, c)
		return
	}

	code := http.StatusInternalServerError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
	}
	if code != http.StatusNotFound {
		c.Logger().Error(err)
	}
	errorPage := fmt.Sprintf("assets/%d.html", code)
	if err := c.File(errorPage); err != nil {
		c.Logger().Error(err)
	}
}
