// Package content manages the blog's content files and the index that binds
// each post slug to its file. Every mutation goes through Service so the
// content directory and the index stay consistent.
package content

import "time"

// FileExt is the extension of every content file.
const FileExt = ".mdx"

// Post is a single content file: its frontmatter fields plus the raw body.
type Post struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	ReadTime    string   `json:"readTime"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
	Content     string   `json:"content"`
}

// Summary is the listing view of a post.
type Summary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Entry is one row of the content index. It only carries the immutable
// slug, the identifiers derived from it and the file it points at; every
// other field is resolved from the file's frontmatter when read.
type Entry struct {
	Slug           string
	Component      string
	FrontmatterRef string
	Source         string
	Position       int
	CreatedAt      time.Time
}

// PublishedPost is an index entry resolved against its content file.
type PublishedPost struct {
	Post
	DisplayDate    string
	Component      string
	FrontmatterRef string
}

// Created describes a freshly created post.
type Created struct {
	Slug string `json:"slug"`
	Path string `json:"path"`
}

// Logger is the subset of echo's logger the service writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
