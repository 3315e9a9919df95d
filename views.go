package postdesk

import (
	"github.com/a-h/templ"

	"github.com/eringen/postdesk/content"
	"github.com/eringen/postdesk/views"
)

// ViewFuncs holds the templ components the framework calls when rendering
// pages. Any nil field is filled from DefaultViews.
type ViewFuncs struct {
	Home        func(site views.Site, posts []content.PublishedPost, activeTag string, tags []string) templ.Component
	Post        func(site views.Site, post content.PublishedPost, body templ.Component, related []content.PublishedPost) templ.Component
	Manage      func(site views.Site, posts []content.Summary, message string) templ.Component
	Editor      func(site views.Site, post content.Post, isNew bool, preview templ.Component) templ.Component
	NotFound    func(site views.Site) templ.Component
	ServerError func(site views.Site) templ.Component
}

// DefaultViews returns the embedded page templates of the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Post:        views.Post,
		Manage:      views.Manage,
		Editor:      views.Editor,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v ViewFuncs) withDefaults() ViewFuncs {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.Manage == nil {
		v.Manage = d.Manage
	}
	if v.Editor == nil {
		v.Editor = d.Editor
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
	return v
}
