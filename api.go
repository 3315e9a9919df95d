package postdesk

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/postdesk/content"
)

// postRequest is the JSON body of create-post and update-post.
type postRequest struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	ReadTime    string   `json:"readTime"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
	Content     string   `json:"content"`
}

func (r postRequest) post() content.Post {
	return content.Post{
		Title:       strings.TrimSpace(r.Title),
		Slug:        strings.TrimSpace(r.Slug),
		Description: strings.TrimSpace(r.Description),
		Date:        strings.TrimSpace(r.Date),
		ReadTime:    strings.TrimSpace(r.ReadTime),
		Tags:        FilterEmpty(r.Tags),
		Featured:    r.Featured,
		Content:     r.Content,
	}
}

type deleteRequest struct {
	Slug         string `json:"slug"`
	ConfirmTitle string `json:"confirmTitle"`
}

type previewRequest struct {
	Content string `json:"content"`
}

func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.Content.List(c.Request().Context())
	if err != nil {
		return a.apiFailure(c, err)
	}
	return apiOK(c, http.StatusOK, echo.Map{"posts": posts})
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Content.Get(c.Request().Context(), c.QueryParam("slug"))
	if err != nil {
		return a.apiFailure(c, err)
	}
	return apiOK(c, http.StatusOK, echo.Map{"post": post})
}

func (a *App) handleCreatePost(c echo.Context) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid JSON body")
	}
	created, err := a.Content.Create(c.Request().Context(), req.post())
	if err != nil {
		return a.apiFailure(c, err)
	}
	return apiOK(c, http.StatusOK, echo.Map{
		"message": "Post created",
		"slug":    created.Slug,
		"path":    created.Path,
	})
}

func (a *App) handleUpdatePost(c echo.Context) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid JSON body")
	}
	post := req.post()
	if err := a.Content.Update(c.Request().Context(), post); err != nil {
		return a.apiFailure(c, err)
	}
	return apiOK(c, http.StatusOK, echo.Map{
		"message": "Post updated",
		"slug":    post.Slug,
	})
}

func (a *App) handleDeletePost(c echo.Context) error {
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid JSON body")
	}
	slug := strings.TrimSpace(req.Slug)
	if err := a.Content.Delete(c.Request().Context(), slug, req.ConfirmTitle); err != nil {
		return a.apiFailure(c, err)
	}
	return apiOK(c, http.StatusOK, echo.Map{
		"message": "Post deleted",
		"slug":    slug,
	})
}

func (a *App) handlePreview(c echo.Context) error {
	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid JSON body")
	}
	return apiOK(c, http.StatusOK, echo.Map{"html": a.Previews.Render(req.Content)})
}

// apiFailure maps a content error to its status code and JSON body.
func (a *App) apiFailure(c echo.Context, err error) error {
	code := statusFor(err)
	if code >= 500 {
		c.Logger().Errorf("api %s: %v", c.Path(), err)
	}
	return apiError(c, code, err.Error())
}

func statusFor(err error) int {
	switch {
	case content.IsValidation(err),
		errors.Is(err, content.ErrPostExists),
		errors.Is(err, content.ErrTitleMismatch):
		return http.StatusBadRequest
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
