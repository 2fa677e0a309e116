package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"quill/domain"
	"quill/repository"
)

type postView struct {
	ID        string
	Title     string
	Content   template.HTML
	Published bool
	Author    string
	CreatedAt string
}

func toPostView(p domain.Post) postView {
	return postView{
		ID:        p.ID,
		Title:     sanitizerStrict.Sanitize(p.Title),
		Content:   safeMd(p.Content),
		Published: p.Published,
		Author:    sanitizerStrict.Sanitize(p.Author.Name),
		CreatedAt: p.CreatedAt.Format(time.DateOnly),
	}
}

type listingData struct {
	Posts       []postView
	CurrentPage int
	TotalPages  int
	PrevPage    int
	NextPage    int
	HasPrev     bool
	HasNext     bool
	LoggedIn    bool
	Degraded    bool
}

func toListingData(result domain.PostPage, loggedIn bool) listingData {
	data := listingData{
		Posts:       make([]postView, 0, len(result.Posts)),
		CurrentPage: result.CurrentPage,
		TotalPages:  result.TotalPages,
		PrevPage:    result.CurrentPage - 1,
		NextPage:    result.CurrentPage + 1,
		HasPrev:     result.CurrentPage > 1,
		HasNext:     result.CurrentPage < result.TotalPages,
		LoggedIn:    loggedIn,
	}
	for _, p := range result.Posts {
		data.Posts = append(data.Posts, toPostView(p))
	}
	return data
}

// Home handles GET /, the public front page. Anonymous renders are
// cached; a mutation invalidates the cached body through the repository.
func (h *Handler) Home(c echo.Context) error {
	user, err := h.Resolver.CurrentUser(c)
	if err != nil {
		// The front page keeps rendering in degraded mode instead of
		// failing the request; a logged-in visitor with an unreachable
		// store is served the anonymous view.
		user = nil
	}

	// Only the first page is cached, so only the first page may be
	// served from the cache.
	page := queryInt(c, "page", 1)
	if user == nil && page == 1 {
		if body, ok := h.Cache.Get("/"); ok {
			return c.HTMLBlob(http.StatusOK, body)
		}
	}

	result := h.Posts.ListPublished(c.Request().Context(), page, h.Config.PageSize)

	data := toListingData(result, user != nil)
	data.Degraded = !h.Gate.Available(c.Request().Context())

	buf := new(bytes.Buffer)
	if err := h.Renderer.Render(buf, "index.html", data, c); err != nil {
		return err
	}
	if user == nil && page == 1 && !data.Degraded {
		h.Cache.Set("/", buf.Bytes())
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// BlogPost handles GET /blog/:id, the rendered single-post page.
func (h *Handler) BlogPost(c echo.Context) error {
	post, err := h.Posts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	user, _ := h.Resolver.CurrentUser(c)
	if !post.Published {
		if user == nil || !domain.CanMutate(*user, *post) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
	}

	return c.Render(http.StatusOK, "post-view.html", struct {
		postView
		LoggedIn bool
		IsAuthor bool
	}{
		postView: toPostView(*post),
		LoggedIn: user != nil,
		IsAuthor: user != nil && domain.CanMutate(*user, *post),
	})
}

// Dashboard handles GET /dashboard: the author's own posts, drafts
// included.
func (h *Handler) Dashboard(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if user == nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	page := queryInt(c, "page", 1)
	result := h.Posts.ListByAuthor(c.Request().Context(), user.ID, page, h.Config.PageSize)

	return c.Render(http.StatusOK, "dashboard.html", toListingData(result, true))
}

// GetNewPostForm handles GET /dashboard/posts/new.
func (h *Handler) GetNewPostForm(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if user == nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.Render(http.StatusOK, "post-edit.html", echo.Map{"LoggedIn": true})
}

// GetEditPostForm handles GET /dashboard/posts/:id/edit.
func (h *Handler) GetEditPostForm(c echo.Context) error {
	post, err := h.authorizeMutation(c)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "post-edit.html", echo.Map{
		"ID":        post.ID,
		"Title":     post.Title,
		"Content":   template.HTML(post.Content),
		"Published": post.Published,
		"LoggedIn":  true,
	})
}

// NewPostSubmit handles the POST /dashboard/posts form.
func (h *Handler) NewPostSubmit(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if user == nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	in := repository.PostCreate{
		Title:     c.FormValue("title"),
		Content:   c.FormValue("content"),
		Published: c.FormValue("published") == "on",
		AuthorID:  user.ID,
	}
	if err := (domain.Post{Title: in.Title, Content: in.Content}).Validate(); err != nil {
		return c.HTML(http.StatusBadRequest, err.Error())
	}

	if _, err := h.Posts.Create(c.Request().Context(), in); err != nil {
		return httpError(err)
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

// EditPostSubmit handles the POST /dashboard/posts/:id form.
func (h *Handler) EditPostSubmit(c echo.Context) error {
	post, err := h.authorizeMutation(c)
	if err != nil {
		return err
	}

	title := c.FormValue("title")
	content := c.FormValue("content")
	published := c.FormValue("published") == "on"
	if err := (domain.Post{Title: title, Content: content}).Validate(); err != nil {
		return c.HTML(http.StatusBadRequest, err.Error())
	}

	if _, err := h.Posts.Update(c.Request().Context(), repository.PostUpdate{
		ID:        post.ID,
		Title:     &title,
		Content:   &content,
		Published: &published,
	}); err != nil {
		return httpError(err)
	}
	return c.Redirect(http.StatusFound, "/blog/"+post.ID)
}

// DeletePostSubmit handles the POST /dashboard/posts/:id/delete form.
func (h *Handler) DeletePostSubmit(c echo.Context) error {
	post, err := h.authorizeMutation(c)
	if err != nil {
		return err
	}

	if err := h.Posts.Delete(c.Request().Context(), post.ID); err != nil {
		return httpError(err)
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}
