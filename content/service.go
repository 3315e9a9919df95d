package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// Config configures a Service.
type Config struct {
	Dir       string // content directory holding <slug>.mdx files
	IndexPath string // SQLite index path
	Logger    Logger
}

// Service keeps the content directory and the index in sync. Mutations are
// serialised by a single writer lock; reads go straight to disk.
type Service struct {
	dir   string
	index *Index
	log   Logger

	mu sync.Mutex
}

// Open creates the content directory if needed and opens the index.
func Open(cfg Config) (*Service, error) {
	if cfg.Dir == "" {
		return nil, errors.New("content: Dir is required")
	}
	if cfg.IndexPath == "" {
		return nil, errors.New("content: IndexPath is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("content: create dir: %w", err)
	}
	idx, err := OpenIndex(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("content: open index: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = nopLogger{}
	}
	return &Service{dir: cfg.Dir, index: idx, log: log}, nil
}

// Close closes the index.
func (s *Service) Close() error {
	return s.index.Close()
}

// Dir returns the content directory.
func (s *Service) Dir() string {
	return s.dir
}

// Index exposes the underlying content index.
func (s *Service) Index() *Index {
	return s.index
}

// Path returns the content file path for slug.
func (s *Service) Path(slug string) string {
	return filepath.Join(s.dir, FileName(slug))
}

// List returns a summary of every content file, newest first. Only the
// frontmatter of each file is read.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	slugs, err := s.scan()
	if err != nil {
		return nil, err
	}
	posts := make([]Summary, 0, len(slugs))
	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.read(slug)
		if err != nil {
			s.log.Warnf("content: skip %s: %v", FileName(slug), err)
			continue
		}
		posts = append(posts, Summary{
			Slug:        slug,
			Title:       p.Title,
			Date:        p.Date,
			Description: p.Description,
		})
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return newerFirst(posts[i].Date, posts[j].Date, posts[i].Slug, posts[j].Slug)
	})
	return posts, nil
}

// Get returns the post stored under slug.
func (s *Service) Get(ctx context.Context, slug string) (Post, error) {
	if err := validateSlug(slug); err != nil {
		return Post{}, err
	}
	return s.read(slug)
}

// Create writes a new content file and adds its index entry. If the index
// cannot be updated the content file is removed again.
func (s *Service) Create(ctx context.Context, p Post) (Created, error) {
	if err := validatePost(p); err != nil {
		return Created{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(p.Slug)
	exists, err := fileExists(path)
	if err != nil {
		return Created{}, err
	}
	if exists {
		return Created{}, fmt.Errorf("%w: %q, choose another slug", ErrPostExists, p.Slug)
	}

	if err := s.dropStale(ctx, p.Slug); err != nil {
		return Created{}, fmt.Errorf("%w: %v", ErrIndex, err)
	}

	data, err := EncodeDocument(p)
	if err != nil {
		return Created{}, err
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return Created{}, fmt.Errorf("write content file: %w", err)
	}

	if _, err := s.index.Add(ctx, p.Slug); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			s.log.Errorf("content: rollback %s: %v", path, rmErr)
		}
		return Created{}, fmt.Errorf("%w: %v", ErrIndex, err)
	}

	s.log.Infof("content: created %s", p.Slug)
	return Created{Slug: p.Slug, Path: filepath.ToSlash(path)}, nil
}

// dropStale removes index entries that would collide with slug but whose
// content file no longer exists, e.g. after a file was deleted by hand
// while nothing was watching the directory. Callers hold s.mu.
func (s *Service) dropStale(ctx context.Context, slug string) error {
	entries, err := s.index.Entries(ctx)
	if err != nil {
		return err
	}
	component, ref := ComponentName(slug), FrontmatterName(slug)
	for _, e := range entries {
		if e.Slug != slug && e.Component != component && e.FrontmatterRef != ref {
			continue
		}
		exists, err := fileExists(s.Path(e.Slug))
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.index.Remove(ctx, e.Slug); err != nil {
			return err
		}
		s.log.Warnf("content: dropped stale index entry %s", e.Slug)
	}
	return nil
}

// Update rewrites the content file of an existing post. The slug is the
// immutable key and the index is left untouched: its entries only reference
// the file, so metadata changes are picked up when the file is read.
func (s *Service) Update(ctx context.Context, p Post) error {
	if err := validatePost(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(p.Slug)
	exists, err := fileExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, p.Slug)
	}

	data, err := EncodeDocument(p)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write content file: %w", err)
	}
	s.log.Infof("content: updated %s", p.Slug)
	return nil
}

// Delete removes the index entry and then the content file of slug.
// confirmTitle must equal the stored title.
func (s *Service) Delete(ctx context.Context, slug, confirmTitle string) error {
	if err := (validation.Errors{
		"slug":         validation.Validate(slug, validation.Required, validation.Match(slugPattern).Error(invalidSlugMessage)),
		"confirmTitle": validation.Validate(confirmTitle, validation.Required),
	}).Filter(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid delete request: "+err.Error()).
			WithTextCode(postValidationCode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.read(slug)
	if err != nil {
		return err
	}
	if p.Title != confirmTitle {
		return ErrTitleMismatch
	}

	if err := s.index.Remove(ctx, slug); err != nil {
		return fmt.Errorf("%w: %v", ErrIndex, err)
	}
	if err := os.Remove(s.Path(slug)); err != nil {
		return fmt.Errorf("remove content file: %w", err)
	}
	s.log.Infof("content: deleted %s", slug)
	return nil
}

// ReconcileResult lists the index changes made by Reconcile. Skipped holds
// files that could not be indexed, usually because their slug derives the
// same component name as an indexed post (a-b and a--b).
type ReconcileResult struct {
	Added   []string
	Removed []string
	Skipped []string
}

// Reconcile brings the index in line with the content directory: valid
// files without an entry are added, entries without a file are removed.
func (s *Service) Reconcile(ctx context.Context) (ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res ReconcileResult
	slugs, err := s.scan()
	if err != nil {
		return res, err
	}
	entries, err := s.index.Entries(ctx)
	if err != nil {
		return res, err
	}

	onDisk := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		onDisk[slug] = struct{}{}
	}
	indexed := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		indexed[e.Slug] = struct{}{}
		if _, ok := onDisk[e.Slug]; ok {
			continue
		}
		if err := s.index.Remove(ctx, e.Slug); err != nil {
			return res, fmt.Errorf("%w: %v", ErrIndex, err)
		}
		res.Removed = append(res.Removed, e.Slug)
	}
	for _, slug := range slugs {
		if _, ok := indexed[slug]; ok {
			continue
		}
		if _, err := s.index.Add(ctx, slug); err != nil {
			s.log.Warnf("content: cannot index %s: %v", slug, err)
			res.Skipped = append(res.Skipped, slug)
			continue
		}
		res.Added = append(res.Added, slug)
	}
	if len(res.Added) > 0 || len(res.Removed) > 0 || len(res.Skipped) > 0 {
		s.log.Infof("content: reconciled index (+%d -%d, %d skipped)", len(res.Added), len(res.Removed), len(res.Skipped))
	}
	return res, nil
}

// Published resolves every index entry against its content file and returns
// the collection sorted newest first.
func (s *Service) Published(ctx context.Context) ([]PublishedPost, error) {
	entries, err := s.index.Entries(ctx)
	if err != nil {
		return nil, err
	}
	posts := make([]PublishedPost, 0, len(entries))
	for _, e := range entries {
		p, err := s.read(e.Slug)
		if err != nil {
			s.log.Warnf("content: index entry %s unresolved: %v", e.Slug, err)
			continue
		}
		posts = append(posts, resolve(e, p))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return newerFirst(posts[i].Date, posts[j].Date, posts[i].Slug, posts[j].Slug)
	})
	return posts, nil
}

// Find returns the published post for slug. Posts without an index entry
// are reported as ErrNotFound.
func (s *Service) Find(ctx context.Context, slug string) (PublishedPost, error) {
	if !ValidSlug(slug) {
		return PublishedPost{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	ok, err := s.index.Has(ctx, slug)
	if err != nil {
		return PublishedPost{}, err
	}
	if !ok {
		return PublishedPost{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	p, err := s.read(slug)
	if err != nil {
		return PublishedPost{}, err
	}
	return resolve(Entry{Slug: slug, Component: ComponentName(slug), FrontmatterRef: FrontmatterName(slug)}, p), nil
}

// Tags returns the sorted, deduplicated tags of posts.
func Tags(posts []PublishedPost) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			if t = strings.TrimSpace(t); t != "" {
				set[t] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func resolve(e Entry, p Post) PublishedPost {
	return PublishedPost{
		Post:           p,
		DisplayDate:    DisplayDate(p.Date),
		Component:      e.Component,
		FrontmatterRef: e.FrontmatterRef,
	}
}

func (s *Service) read(slug string) (Post, error) {
	src, err := os.ReadFile(s.Path(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return Post{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return Post{}, err
	}
	p, err := ParseDocument(src)
	if err != nil {
		return Post{}, fmt.Errorf("%s: %w", FileName(slug), err)
	}
	p.Slug = slug
	return p, nil
}

// scan returns the slugs of every content file in the directory.
func (s *Service) scan() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var slugs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, FileExt) {
			continue
		}
		slug := strings.TrimSuffix(name, FileExt)
		if !ValidSlug(slug) {
			s.log.Warnf("content: ignoring %s: not a valid slug", name)
			continue
		}
		slugs = append(slugs, slug)
	}
	return slugs, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006/01/02", "2006-01-02 15:04"}

// ParseDate parses a frontmatter date in any of the accepted layouts.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DisplayDate formats a frontmatter date for readers, or returns it as is
// when it cannot be parsed.
func DisplayDate(value string) string {
	t, ok := ParseDate(value)
	if !ok {
		return value
	}
	return t.Format("2006 年 1 月 2 日")
}

// newerFirst orders by date descending. Unparseable dates sort after every
// valid date; ties fall back to the slug so the order is deterministic.
func newerFirst(dateA, dateB, slugA, slugB string) bool {
	ta, okA := ParseDate(dateA)
	tb, okB := ParseDate(dateB)
	switch {
	case okA && !okB:
		return true
	case !okA && okB:
		return false
	case okA && okB && !ta.Equal(tb):
		return ta.After(tb)
	}
	return slugA < slugB
}
