package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"

	"github.com/eringen/postdesk"
	"github.com/eringen/postdesk/content"
)

// fileConfig mirrors postdesk.yaml.
type fileConfig struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
	Author      string `mapstructure:"author"`

	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`

	ContentDir string `mapstructure:"content_dir"`
	PublicDir  string `mapstructure:"public_dir"`
	IndexPath  string `mapstructure:"index_path"`

	MaxUploadSize int64 `mapstructure:"max_upload_size"`
	MaxImageWidth int   `mapstructure:"max_image_width"`

	TranslateURL    string        `mapstructure:"translate_url"`
	TranslateLimit  int           `mapstructure:"translate_limit"`
	TranslateWindow time.Duration `mapstructure:"translate_window"`

	CodeStyle        string `mapstructure:"code_style"`
	PreviewCacheSize int    `mapstructure:"preview_cache_size"`

	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

func (f fileConfig) site() postdesk.SiteConfig {
	return postdesk.SiteConfig{
		Name:             f.Name,
		URL:              strings.TrimSuffix(f.URL, "/"),
		Description:      f.Description,
		Author:           f.Author,
		Addr:             f.Addr,
		Mode:             f.Mode,
		ContentDir:       f.ContentDir,
		PublicDir:        f.PublicDir,
		IndexPath:        f.IndexPath,
		MaxUploadSize:    f.MaxUploadSize,
		MaxImageWidth:    f.MaxImageWidth,
		TranslateURL:     f.TranslateURL,
		TranslateLimit:   f.TranslateLimit,
		TranslateWindow:  f.TranslateWindow,
		CodeStyle:        f.CodeStyle,
		PreviewCacheSize: f.PreviewCacheSize,
		WatchContent:     f.Watch,
		WatchDebounce:    f.WatchDebounce,
	}
}

// options is shared by every subcommand. PersistentPreRunE fills cfg.
type options struct {
	cfgFile string
	cfg     postdesk.SiteConfig
	source  string
}

func newViper(cfgFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("addr", ":3000")
	v.SetDefault("mode", postdesk.ModeProduction)
	v.SetDefault("content_dir", "content/posts")
	v.SetDefault("public_dir", "public")
	v.SetDefault("index_path", "data/index.db")
	v.SetDefault("max_upload_size", 5<<20)
	v.SetDefault("max_image_width", 1600)
	v.SetDefault("translate_url", "")
	v.SetDefault("translate_limit", 30)
	v.SetDefault("translate_window", time.Minute)
	v.SetDefault("code_style", "github")
	v.SetDefault("preview_cache_size", 64)
	v.SetDefault("watch", false)
	v.SetDefault("watch_debounce", 500*time.Millisecond)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("postdesk")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("POSTDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// load reads postdesk.yaml (if present) and POSTDESK_* variables.
func (o *options) load() error {
	v := newViper(o.cfgFile)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || o.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		o.source = v.ConfigFileUsed()
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	o.cfg = fc.site()
	return nil
}

// openContent opens the content service for commands that work on files
// directly, without the HTTP server.
func (o *options) openContent() (*content.Service, error) {
	logger := log.New("postdesk")
	logger.SetLevel(log.WARN)
	return content.Open(content.Config{
		Dir:       o.cfg.ContentDir,
		IndexPath: o.cfg.IndexPath,
		Logger:    logger,
	})
}
