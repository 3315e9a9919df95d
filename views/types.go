package views

// Site holds site-wide settings every page template receives.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	Dev         bool // authoring links are only shown in development mode
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
