package postdesk

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func testConfig(t *testing.T, mode string) SiteConfig {
	t.Helper()
	root := t.TempDir()
	return SiteConfig{
		Name:       "Test Blog",
		URL:        "https://example.com",
		Mode:       mode,
		ContentDir: filepath.Join(root, "content", "posts"),
		PublicDir:  filepath.Join(root, "public"),
		IndexPath:  filepath.Join(root, "data", "index.db"),
	}
}

func setupTestApp(t *testing.T, cfg SiteConfig, opts ...Option) *App {
	t.Helper()
	a := New(cfg, ViewFuncs{}, opts...)
	a.Echo.Logger.SetOutput(io.Discard)
	if err := a.Init(); err != nil {
		t.Fatalf("failed to init app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func doRequest(a *App, method, target string) *httptest.ResponseRecorder {
	return serve(a, httptest.NewRequest(method, target, nil))
}

// doJSON sends body as JSON and decodes the JSON response.
func doJSON(t *testing.T, a *App, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	rec := serve(a, req)
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: response is not JSON (%d): %q", method, target, rec.Code, rec.Body.String())
	}
	return rec, out
}

const helloWorldJSON = `{
	"title": "Hello World",
	"slug": "hello-world",
	"description": "First post",
	"date": "2024-01-15",
	"readTime": "3 min",
	"tags": ["go", " ", "web"],
	"featured": false,
	"content": "# Hello\n\nSome **bold** text."
}`
