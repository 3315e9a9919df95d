package postdesk

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/postdesk/content"
)

func (a *App) handleManage(c echo.Context) error {
	posts, err := a.Content.List(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Manage(a.site(), posts, c.QueryParam("msg")))
}

func (a *App) handleNewPost(c echo.Context) error {
	post := content.Post{
		Date:     time.Now().Format("2006-01-02"),
		ReadTime: "5 min",
		Tags:     []string{},
	}
	return Render(c, a.Views.Editor(a.site(), post, true, a.Previews.Component("")))
}

func (a *App) handleEditPost(c echo.Context) error {
	post, err := a.Content.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) || content.IsValidation(err) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
		}
		return err
	}
	return Render(c, a.Views.Editor(a.site(), post, false, a.Previews.Component(post.Content)))
}
