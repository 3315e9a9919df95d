package postdesk

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/postdesk/content"
	"github.com/eringen/postdesk/views"
)

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Content.Published(c.Request().Context())
	if err != nil {
		return err
	}
	tags := content.Tags(posts)
	tag := strings.TrimSpace(c.QueryParam("tag"))
	return Render(c, a.Views.Home(a.site(), FeaturedFirst(FilterByTag(posts, tag)), tag, tags))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Content.Find(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
		}
		return err
	}
	posts, err := a.Content.Published(ctx)
	if err != nil {
		return err
	}
	related := views.FilterRelatedPosts(post, posts)
	return Render(c, a.Views.Post(a.site(), post, a.Renderer.HTML(post.Content), related))
}

// handlePostAsset serves files uploaded for a post.
func (a *App) handlePostAsset(c echo.Context) error {
	slug, file := c.Param("slug"), c.Param("file")
	if !content.ValidSlug(slug) || file == "" || file != filepath.Base(file) || strings.HasPrefix(file, ".") {
		return echo.ErrNotFound
	}
	return c.File(filepath.Join(a.Config.PublicDir, "posts", slug, file))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Content.Published(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Content.Published(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleCodeCSS(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/css; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.Renderer.WriteCSS(c.Response())
}

// handleFavicon prefers the site's own favicon over the embedded default.
func (a *App) handleFavicon(c echo.Context) error {
	if p := filepath.Join(a.Config.PublicDir, "favicon.svg"); fileExists(p) {
		return c.File(p)
	}
	return echo.StaticFileHandler("favicon.svg", views.StaticFS())(c)
}

func (a *App) handleRobots(c echo.Context) error {
	if p := filepath.Join(a.Config.PublicDir, "robots.txt"); fileExists(p) {
		return c.File(p)
	}
	robots := "User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: " + BuildURL(a.Config.URL) + "sitemap.xml\n"
	return c.String(http.StatusOK, robots)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}

	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		msg := http.StatusText(code)
		if code >= 500 {
			c.Logger().Errorf("api error: %v", err)
		} else if ok {
			if m, isString := he.Message.(string); isString {
				msg = m
			}
		}
		_ = apiError(c, code, msg)
		return
	}

	if code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
		return
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
