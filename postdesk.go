// Package postdesk is a personal blog served from Markdown/MDX content
// files. Published pages are rendered from the content index; in
// development mode an authoring API creates, edits and deletes posts and
// keeps the index in sync with the content directory.
//
// Users may provide their own templ templates via the ViewFuncs struct;
// any view left nil falls back to the defaults in the views package.
package postdesk

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/postdesk/content"
	"github.com/eringen/postdesk/markdown"
	"github.com/eringen/postdesk/views"
)

// App is the central postdesk application. It wires together the content
// service, renderers, handlers, middleware, and views.
type App struct {
	Config     SiteConfig
	Echo       *echo.Echo
	Content    *content.Service
	Renderer   *markdown.Renderer
	Previews   *markdown.PreviewCache
	Translator Translator
	Views      ViewFuncs

	translateLimiter *RateLimiter
	customRoutes     []func(*App)
	externalContent  bool

	initOnce  sync.Once
	initErr   error
	stopWatch context.CancelFunc
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  v.withDefaults(),
	}
	a.Echo.HideBanner = true
	if cfg.IsDev() {
		a.Echo.Logger.SetLevel(log.DEBUG)
	} else {
		a.Echo.Logger.SetLevel(log.INFO)
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.Translator == nil {
		a.Translator = NewGoogleTranslator(cfg.TranslateURL, nil)
	}
	return a
}

// Init opens the content service, reconciles the index and registers
// middleware and routes. Start calls it; tests call it directly.
func (a *App) Init() error {
	a.initOnce.Do(func() {
		a.initErr = a.init()
	})
	return a.initErr
}

func (a *App) init() error {
	if a.Content == nil {
		svc, err := content.Open(content.Config{
			Dir:       a.Config.ContentDir,
			IndexPath: a.Config.IndexPath,
			Logger:    a.Echo.Logger,
		})
		if err != nil {
			return fmt.Errorf("postdesk: init content: %w", err)
		}
		a.Content = svc
	}
	if _, err := a.Content.Reconcile(context.Background()); err != nil {
		return fmt.Errorf("postdesk: reconcile index: %w", err)
	}

	a.Renderer = markdown.NewRenderer(a.Config.CodeStyle)
	a.Previews = markdown.NewPreviewCache(a.Config.PreviewCacheSize)
	a.translateLimiter = NewRateLimiter(a.Config.TranslateLimit, a.Config.TranslateWindow)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app, starts the content watcher if enabled and
// serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if a.Config.WatchContent {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopWatch = cancel
		w, err := NewWatcher(a.Content, a.Config.WatchDebounce, a.Echo.Logger)
		if err != nil {
			cancel()
			return fmt.Errorf("postdesk: watch content: %w", err)
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				a.Echo.Logger.Errorf("content watcher stopped: %v", err)
			}
		}()
	}

	a.Echo.Logger.Infof("postdesk: serving %s on %s (%s mode)", a.Config.ContentDir, a.Config.Addr, a.Config.Mode)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Dev:         a.Config.IsDev(),
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets and the code highlighting stylesheet.
	e.GET("/assets/chroma.css", a.handleCodeCSS)
	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(views.Assets()))))

	// User's static assets
	e.Static("/public", a.Config.PublicDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/:slug/", a.handlePost)
	e.GET("/posts/:slug/:file", a.handlePostAsset)

	// Authoring pages; devOnly middleware hides them in production.
	e.GET("/admin/", a.handleManage)
	e.GET("/admin/posts/new/", a.handleNewPost)
	e.GET("/admin/posts/:slug/edit/", a.handleEditPost)

	api := e.Group("/api")
	api.GET("/list-posts", a.handleListPosts)
	api.GET("/get-post", a.handleGetPost)
	api.POST("/create-post", a.handleCreatePost, requireJSON)
	api.PUT("/update-post", a.handleUpdatePost, requireJSON)
	api.DELETE("/delete-post", a.handleDeletePost, requireJSON)
	api.POST("/preview", a.handlePreview, requireJSON)
	api.POST("/upload-image", a.handleUploadImage)
	api.POST("/translate-title", a.handleTranslateTitle, requireJSON)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.translateLimiter != nil {
		a.translateLimiter.Stop()
	}
	if a.Content != nil && !a.externalContent {
		return a.Content.Close()
	}
	return nil
}
