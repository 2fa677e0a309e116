// Package handler contains the HTTP handlers for the JSON API and the
// server-rendered pages.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"quill/config"
	"quill/db"
	"quill/domain"
	"quill/repository"
	"quill/session"
	"quill/web"
)

type Handler struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Resolver *session.Resolver
	Gate     *db.Gate
	Cache    *web.PageCache
	Renderer *web.TemplateRegistry
	Config   config.Config
}

// currentUser resolves the session, translating gate failures into the
// 503 the write paths must surface.
func (h *Handler) currentUser(c echo.Context) (*domain.User, error) {
	user, err := h.Resolver.CurrentUser(c)
	if errors.Is(err, db.ErrUnavailable) {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve session")
	}
	return user, nil
}

// httpError maps a repository error to its HTTP status.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrAuthorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "author not found")
	case errors.Is(err, repository.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "already exists")
	case errors.Is(err, db.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

type authorDTO struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

type postDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	AuthorID  string    `json:"authorId"`
	Author    authorDTO `json:"author"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

func toPostDTO(p domain.Post) postDTO {
	return postDTO{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Published: p.Published,
		AuthorID:  p.AuthorID,
		Author:    authorDTO{ID: p.Author.ID, Name: p.Author.Name, Image: p.Author.Image},
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

func toPostDTOs(posts []domain.Post) []postDTO {
	dtos := make([]postDTO, 0, len(posts))
	for _, p := range posts {
		dtos = append(dtos, toPostDTO(p))
	}
	return dtos
}
