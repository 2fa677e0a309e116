package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"quill/domain"
	"quill/repository"
)

// ListPosts handles GET /posts, the public paginated listing.
func (h *Handler) ListPosts(c echo.Context) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", h.Config.PageSize)

	result := h.Posts.ListPublished(c.Request().Context(), page, limit)

	return c.JSON(http.StatusOK, echo.Map{
		"posts":       toPostDTOs(result.Posts),
		"totalPages":  result.TotalPages,
		"currentPage": result.CurrentPage,
	})
}

// GetPost handles GET /posts/:id. Unpublished posts are only visible to
// their author; everyone else gets the same 404 as for a missing post.
func (h *Handler) GetPost(c echo.Context) error {
	post, err := h.Posts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	if !post.Published {
		user, err := h.currentUser(c)
		if err != nil {
			return err
		}
		if user == nil || !domain.CanMutate(*user, *post) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
	}

	return c.JSON(http.StatusOK, toPostDTO(*post))
}

type postCreateRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
	AuthorID  string `json:"authorId"`
}

// CreatePost handles POST /posts. The author defaults to the current
// user; an explicit authorId must resolve to an existing user.
func (h *Handler) CreatePost(c echo.Context) error {
	var req postCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := (domain.Post{Title: req.Title, Content: req.Content}).Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	authorID := req.AuthorID
	if authorID == "" {
		user, err := h.currentUser(c)
		if err != nil {
			return err
		}
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authorized")
		}
		authorID = user.ID
	}

	if !h.Gate.Available(c.Request().Context()) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}

	post, err := h.Posts.Create(c.Request().Context(), repository.PostCreate{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
		AuthorID:  authorID,
	})
	if err != nil {
		if !errors.Is(err, repository.ErrAuthorNotFound) {
			h.Gate.MarkDown()
		}
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"post": toPostDTO(*post)})
}

type postUpdateRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

// UpdatePost handles PATCH /posts/:id. Only the author may update, and
// only the fields present in the body change.
func (h *Handler) UpdatePost(c echo.Context) error {
	post, err := h.authorizeMutation(c)
	if err != nil {
		return err
	}

	var req postUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title != nil && *req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if req.Content != nil && *req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	updated, err := h.Posts.Update(c.Request().Context(), repository.PostUpdate{
		ID:        post.ID,
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, toPostDTO(*updated))
}

// DeletePost handles DELETE /posts/:id.
func (h *Handler) DeletePost(c echo.Context) error {
	post, err := h.authorizeMutation(c)
	if err != nil {
		return err
	}

	if err := h.Posts.Delete(c.Request().Context(), post.ID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// authorizeMutation walks the mutation state machine up to the
// ownership check: resolve session, fetch the post, verify the caller
// is its author.
func (h *Handler) authorizeMutation(c echo.Context) (*domain.Post, error) {
	user, err := h.currentUser(c)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authorized")
	}

	post, err := h.Posts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, httpError(err)
	}

	if !domain.CanMutate(*user, *post) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "you don't have permission to modify this post")
	}
	return post, nil
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
