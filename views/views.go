// Package views holds the default page components. Pages are html/template
// files embedded in the binary and exposed as templ.Components, so callers
// can swap any of them for their own templ templates.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/a-h/templ"

	"github.com/eringen/postdesk/content"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// StaticFS holds editor.js, site.css and favicon.svg.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Assets serves StaticFS over HTTP.
func Assets() http.FileSystem {
	return http.FS(StaticFS())
}

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"tagClass":    TagClass,
	"pathEscape":  PathEscape,
	"queryEscape": url.QueryEscape,
	"joinTags":    JoinTags,
}).ParseFS(templateFS, "templates/*.html"))

type page struct {
	Site   Site
	Meta   PageMeta
	JSONLD template.JS
}

func render(name string, data interface{}) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

// Home renders the post listing. posts are shown in the given order.
func Home(site Site, posts []content.PublishedPost, activeTag string, tags []string) templ.Component {
	meta := PageMeta{Description: site.Description, URL: buildURL(site.URL), OGType: "website"}
	if activeTag != "" {
		meta.Title = "#" + activeTag
	}
	return render("home", struct {
		page
		Posts     []content.PublishedPost
		ActiveTag string
		Tags      []string
	}{
		page:      page{Site: site, Meta: meta, JSONLD: WebsiteJsonLD(site)},
		Posts:     posts,
		ActiveTag: activeTag,
		Tags:      tags,
	})
}

// Post renders a single published post. body is the rendered Markdown.
func Post(site Site, post content.PublishedPost, body templ.Component, related []content.PublishedPost) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := templ.ToGoHTML(ctx, body)
		if err != nil {
			return err
		}
		return templates.ExecuteTemplate(w, "post", struct {
			page
			Post    content.PublishedPost
			Body    template.HTML
			Related []content.PublishedPost
		}{
			page: page{
				Site: site,
				Meta: PageMeta{
					Title:       post.Title,
					Description: post.Description,
					URL:         PostURL(site.URL, post.Slug),
					OGType:      "article",
				},
				JSONLD: BlogPostingJsonLD(site, post),
			},
			Post:    post,
			Body:    html,
			Related: related,
		})
	})
}

// Manage renders the authoring list of every content file.
func Manage(site Site, posts []content.Summary, message string) templ.Component {
	return render("manage", struct {
		page
		Posts   []content.Summary
		Message string
	}{
		page:    page{Site: site, Meta: PageMeta{Title: "管理文章", URL: buildURL(site.URL, "admin"), OGType: "website"}},
		Posts:   posts,
		Message: message,
	})
}

// Editor renders the create/edit form with a server-rendered preview pane.
func Editor(site Site, post content.Post, isNew bool, preview templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := templ.ToGoHTML(ctx, preview)
		if err != nil {
			return err
		}
		title := "編輯文章"
		if isNew {
			title = "新增文章"
		}
		return templates.ExecuteTemplate(w, "editor", struct {
			page
			Post    content.Post
			IsNew   bool
			Preview template.HTML
		}{
			page:    page{Site: site, Meta: PageMeta{Title: title, URL: buildURL(site.URL, "admin"), OGType: "website"}},
			Post:    post,
			IsNew:   isNew,
			Preview: html,
		})
	})
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return errorPage(site, http.StatusNotFound, "找不到這個頁面。")
}

// ServerError renders the 500 page.
func ServerError(site Site) templ.Component {
	return errorPage(site, http.StatusInternalServerError, "伺服器發生錯誤，請稍後再試。")
}

func errorPage(site Site, code int, message string) templ.Component {
	return render("error", struct {
		page
		Code    int
		Message string
	}{
		page:    page{Site: site, Meta: PageMeta{Title: http.StatusText(code), URL: buildURL(site.URL), OGType: "website"}},
		Code:    code,
		Message: message,
	})
}
