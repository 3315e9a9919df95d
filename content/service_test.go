package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	root := t.TempDir()
	svc, err := Open(Config{
		Dir:       filepath.Join(root, "content", "posts"),
		IndexPath: filepath.Join(root, "data", "index.db"),
	})
	if err != nil {
		t.Fatalf("failed to open service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func samplePost(slug, title string) Post {
	return Post{
		Title:       title,
		Slug:        slug,
		Description: "A test post",
		Date:        "2024-01-15",
		ReadTime:    "3 min",
		Tags:        []string{"go"},
		Content:     "# Heading\n\nBody text.",
	}
}

func TestCreateAndGet(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, samplePost("hello-world", "Hello World"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Slug != "hello-world" {
		t.Errorf("Slug = %q, want %q", created.Slug, "hello-world")
	}
	if filepath.Base(created.Path) != "hello-world.mdx" {
		t.Errorf("Path = %q, want a hello-world.mdx file", created.Path)
	}

	got, err := svc.Get(ctx, "hello-world")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Hello World" || got.Date != "2024-01-15" || got.ReadTime != "3 min" {
		t.Errorf("Get returned %+v", got)
	}
	if got.Content != "# Heading\n\nBody text." {
		t.Errorf("Content = %q", got.Content)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "go" {
		t.Errorf("Tags = %v, want [go]", got.Tags)
	}

	ok, err := svc.Index().Has(ctx, "hello-world")
	if err != nil || !ok {
		t.Errorf("index entry missing after create (ok=%v, err=%v)", ok, err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		edit func(*Post)
	}{
		{"missing title", func(p *Post) { p.Title = "" }},
		{"missing description", func(p *Post) { p.Description = "" }},
		{"missing date", func(p *Post) { p.Date = "" }},
		{"missing readTime", func(p *Post) { p.ReadTime = "" }},
		{"missing content", func(p *Post) { p.Content = "" }},
		{"missing slug", func(p *Post) { p.Slug = "" }},
		{"uppercase slug", func(p *Post) { p.Slug = "Hello" }},
		{"path slug", func(p *Post) { p.Slug = "../escape" }},
	}
	for _, tt := range tests {
		p := samplePost("valid-slug", "Valid")
		tt.edit(&p)
		_, err := svc.Create(ctx, p)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tt.name, err)
		}
	}
	if _, err := os.Stat(svc.Path("valid-slug")); !os.IsNotExist(err) {
		t.Error("invalid requests must not write content files")
	}
}

func TestCreateDuplicateSlug(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, samplePost("taken", "Original")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := svc.Create(ctx, samplePost("taken", "Second"))
	if !errors.Is(err, ErrPostExists) {
		t.Fatalf("expected ErrPostExists, got %v", err)
	}

	got, err := svc.Get(ctx, "taken")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Original" {
		t.Errorf("duplicate create overwrote the file: title %q", got.Title)
	}
	entries, err := svc.Index().Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(entries) = %d, want 1", len(entries))
	}
}

func TestCreateRollsBackWhenIndexFails(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	// a--b derives the same component name as the published a-b, so the
	// index insert fails after the file has been written.
	if _, err := svc.Create(ctx, samplePost("a-b", "A B")); err != nil {
		t.Fatalf("Create(a-b) failed: %v", err)
	}
	_, err := svc.Create(ctx, samplePost("a--b", "A B again"))
	if !errors.Is(err, ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
	if _, err := os.Stat(svc.Path("a--b")); !os.IsNotExist(err) {
		t.Error("content file should be removed after index failure")
	}
	if ok, _ := svc.Index().Has(ctx, "a-b"); !ok {
		t.Error("the existing entry must be kept")
	}
}

func TestCreateReplacesStaleEntry(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, samplePost("hello", "Hello")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Deleted by hand while nothing watched the directory.
	if err := os.Remove(svc.Path("hello")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, samplePost("hello", "Hello again")); err != nil {
		t.Fatalf("re-creating a post whose file vanished failed: %v", err)
	}
	post, err := svc.Find(ctx, "hello")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if post.Title != "Hello again" {
		t.Errorf("Title = %q", post.Title)
	}
	entries, _ := svc.Index().Entries(ctx)
	if len(entries) != 1 {
		t.Errorf("len(entries) = %d, want 1", len(entries))
	}
}

func TestCreateReplacesStaleCollidingEntry(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	// A row left behind for a-b, whose file is gone, must not block a--b.
	if _, err := svc.Index().Add(ctx, "a-b"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := svc.Create(ctx, samplePost("a--b", "A B")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ok, _ := svc.Index().Has(ctx, "a-b"); ok {
		t.Error("stale a-b entry should be dropped")
	}
	if ok, _ := svc.Index().Has(ctx, "a--b"); !ok {
		t.Error("a--b should be indexed")
	}
}

func TestUpdateKeepsIndexUntouched(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, samplePost("hello-world", "Hello World")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	before, err := svc.Index().Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}

	p := samplePost("hello-world", "Hello World")
	p.Description = "Updated description"
	p.Featured = true
	if err := svc.Update(ctx, p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := svc.Get(ctx, "hello-world")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Description != "Updated description" {
		t.Errorf("Description = %q, want updated", got.Description)
	}
	if got.Date != "2024-01-15" {
		t.Errorf("Date = %q, want unchanged", got.Date)
	}
	if !got.Featured {
		t.Error("Featured should be true after update")
	}

	after, err := svc.Index().Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("index changed on update: before %+v, after %+v", before, after)
	}

	published, err := svc.Published(ctx)
	if err != nil {
		t.Fatalf("Published failed: %v", err)
	}
	if len(published) != 1 || published[0].Description != "Updated description" {
		t.Errorf("published collection should resolve the new description: %+v", published)
	}
}

func TestUpdateUnknownSlug(t *testing.T) {
	svc := setupTestService(t)
	err := svc.Update(context.Background(), samplePost("missing", "Missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := os.Stat(svc.Path("missing")); !os.IsNotExist(err) {
		t.Error("update must not create files")
	}
}

func TestDeleteTitleMismatch(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, samplePost("keep-me", "Keep Me")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := svc.Delete(ctx, "keep-me", "Wrong Title")
	if !errors.Is(err, ErrTitleMismatch) {
		t.Fatalf("expected ErrTitleMismatch, got %v", err)
	}
	if _, err := os.Stat(svc.Path("keep-me")); err != nil {
		t.Errorf("content file should survive a mismatch: %v", err)
	}
	ok, err := svc.Index().Has(ctx, "keep-me")
	if err != nil || !ok {
		t.Errorf("index entry should survive a mismatch (ok=%v, err=%v)", ok, err)
	}
}

func TestDeleteValidationAndNotFound(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if err := svc.Delete(ctx, "", "Title"); !IsValidation(err) {
		t.Errorf("missing slug: expected validation error, got %v", err)
	}
	if err := svc.Delete(ctx, "slug", ""); !IsValidation(err) {
		t.Errorf("missing confirmTitle: expected validation error, got %v", err)
	}
	if err := svc.Delete(ctx, "Bad Slug", "Title"); !IsValidation(err) {
		t.Errorf("bad slug: expected validation error, got %v", err)
	}
	if err := svc.Delete(ctx, "nope", "Title"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetValidationAndNotFound(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "Not/Valid"); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := svc.Get(ctx, "nothing-here"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListSortsNewestFirstWithInvalidDatesLast(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	dates := map[string]string{
		"older":   "2023-05-01",
		"newest":  "2024-06-01",
		"middle":  "2024-01-01",
		"garbage": "not a date",
	}
	for slug, date := range dates {
		p := samplePost(slug, slug)
		p.Date = date
		if _, err := svc.Create(ctx, p); err != nil {
			t.Fatalf("Create(%q) failed: %v", slug, err)
		}
	}
	// Files that are not posts are ignored.
	os.WriteFile(filepath.Join(svc.Dir(), "notes.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(svc.Dir(), "Bad Name.mdx"), []byte("---\ntitle: x\n---\n"), 0o644)

	posts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"newest", "middle", "older", "garbage"}
	if len(posts) != len(want) {
		t.Fatalf("len(posts) = %d, want %d", len(posts), len(want))
	}
	for i, slug := range want {
		if posts[i].Slug != slug {
			t.Errorf("posts[%d].Slug = %q, want %q", i, posts[i].Slug, slug)
		}
	}
}

func TestListEmptyDirectory(t *testing.T) {
	svc := setupTestService(t)
	posts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("posts = %v, want empty non-nil slice", posts)
	}
}

func TestEndToEndLifecycle(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, samplePost("hello-world", "Hello World")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	posts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "hello-world" || posts[0].Title != "Hello World" {
		t.Fatalf("List = %+v", posts)
	}

	p := samplePost("hello-world", "Hello World")
	p.Description = "New description"
	if err := svc.Update(ctx, p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := svc.Get(ctx, "hello-world")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Description != "New description" || got.Date != "2024-01-15" {
		t.Errorf("Get after update = %+v", got)
	}

	if err := svc.Delete(ctx, "hello-world", "Hello World"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, "hello-world"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	posts, err = svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("List after delete = %+v, want empty", posts)
	}
	ok, err := svc.Index().Has(ctx, "hello-world")
	if err != nil || ok {
		t.Errorf("index entry should be gone (ok=%v, err=%v)", ok, err)
	}
}

func TestReconcile(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	src, err := EncodeDocument(samplePost("dropped-in", "Dropped In"))
	if err != nil {
		t.Fatalf("EncodeDocument failed: %v", err)
	}
	if err := os.WriteFile(svc.Path("dropped-in"), src, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := svc.Index().Add(ctx, "vanished"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	res, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(res.Added) != 1 || res.Added[0] != "dropped-in" {
		t.Errorf("Added = %v, want [dropped-in]", res.Added)
	}
	if len(res.Removed) != 1 || res.Removed[0] != "vanished" {
		t.Errorf("Removed = %v, want [vanished]", res.Removed)
	}

	res, err = svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("second Reconcile failed: %v", err)
	}
	if len(res.Added) != 0 || len(res.Removed) != 0 {
		t.Errorf("second Reconcile should be a no-op, got %+v", res)
	}
}

func TestReconcileReportsCollidingFiles(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, samplePost("a-b", "A B")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	src, err := EncodeDocument(samplePost("a--b", "Collides"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(svc.Path("a--b"), src, 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(res.Added) != 0 || len(res.Removed) != 0 {
		t.Errorf("unexpected changes: %+v", res)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "a--b" {
		t.Errorf("Skipped = %v, want [a--b]", res.Skipped)
	}
}

func TestFindRequiresIndexEntry(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	src, _ := EncodeDocument(samplePost("unindexed", "Unindexed"))
	os.WriteFile(svc.Path("unindexed"), src, 0o644)
	if _, err := svc.Find(ctx, "unindexed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unindexed file, got %v", err)
	}

	if _, err := svc.Create(ctx, samplePost("indexed", "Indexed")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	post, err := svc.Find(ctx, "indexed")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if post.Component != "Indexed" || post.DisplayDate != "2024 年 1 月 15 日" {
		t.Errorf("Find = %+v", post)
	}
}

func TestDisplayDateFallsBackToRawValue(t *testing.T) {
	if got := DisplayDate("someday"); got != "someday" {
		t.Errorf("DisplayDate = %q, want raw value", got)
	}
	if got := DisplayDate("2024-03-09"); got != "2024 年 3 月 9 日" {
		t.Errorf("DisplayDate = %q", got)
	}
}

func TestTags(t *testing.T) {
	posts := []PublishedPost{
		{Post: Post{Tags: []string{"go", "web"}}},
		{Post: Post{Tags: []string{"web", " ", "css"}}},
	}
	got := Tags(posts)
	want := []string{"css", "go", "web"}
	if len(got) != len(want) {
		t.Fatalf("Tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
