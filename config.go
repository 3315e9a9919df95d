package postdesk

import (
	"path/filepath"
	"time"

	"github.com/eringen/postdesk/content"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// SiteConfig holds all configuration for a postdesk site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr string // Listen address (default ":3000")
	Mode string // "development" enables the authoring API (default "production")

	ContentDir string // Directory of <slug>.mdx files (default "content/posts")
	PublicDir  string // Static files and uploaded images (default "public")
	IndexPath  string // SQLite content index (default "data/index.db")

	MaxUploadSize int64 // Upload limit in bytes (default 5 MiB)
	MaxImageWidth int   // Wider JPEG/PNG uploads are downscaled (default 1600)

	TranslateURL    string        // Translation endpoint (default Google gtx)
	TranslateLimit  int           // Translate requests per window and IP (default 30)
	TranslateWindow time.Duration // (default 1 minute)

	CodeStyle        string // chroma style for published code blocks (default "github")
	PreviewCacheSize int    // Rendered previews kept in memory (default 64)

	WatchContent  bool          // Reconcile the index when content files change
	WatchDebounce time.Duration // (default 500ms)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Mode == "" {
		c.Mode = ModeProduction
	}
	if c.ContentDir == "" {
		c.ContentDir = filepath.Join("content", "posts")
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.IndexPath == "" {
		c.IndexPath = filepath.Join("data", "index.db")
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = 5 << 20
	}
	if c.MaxImageWidth <= 0 {
		c.MaxImageWidth = 1600
	}
	if c.TranslateURL == "" {
		c.TranslateURL = defaultTranslateURL
	}
	if c.TranslateLimit <= 0 {
		c.TranslateLimit = 30
	}
	if c.TranslateWindow <= 0 {
		c.TranslateWindow = time.Minute
	}
	if c.WatchDebounce <= 0 {
		c.WatchDebounce = 500 * time.Millisecond
	}
}

// IsDev reports whether the authoring surface is enabled.
func (c SiteConfig) IsDev() bool {
	return c.Mode == ModeDevelopment
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithTranslator replaces the HTTP translator used by /api/translate-title.
func WithTranslator(t Translator) Option {
	return func(a *App) {
		a.Translator = t
	}
}

// WithContentService uses an already opened content service instead of
// opening one from ContentDir and IndexPath. The App does not close it.
func WithContentService(svc *content.Service) Option {
	return func(a *App) {
		a.Content = svc
		a.externalContent = true
	}
}
