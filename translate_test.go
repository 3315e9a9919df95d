package postdesk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eringen/postdesk/content"
)

type fakeTranslator struct {
	out   string
	err   error
	calls int
	from  string
	to    string
}

func (f *fakeTranslator) Translate(_ context.Context, text, from, to string) (string, error) {
	f.calls++
	f.from, f.to = from, to
	return f.out, f.err
}

func TestTranslateTitleWithoutHan(t *testing.T) {
	fake := &fakeTranslator{}
	a := setupTestApp(t, testConfig(t, ModeDevelopment), WithTranslator(fake))

	rec, body := doJSON(t, a, http.MethodPost, "/api/translate-title", `{"title":"  Hello, World's Best!  "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", rec.Code, body)
	}
	if body["slug"] != "hello-worlds-best" || body["translated"] != "Hello, World's Best!" {
		t.Errorf("body = %v", body)
	}
	if fake.calls != 0 {
		t.Error("titles without Han characters should not be translated")
	}
}

func TestTranslateTitleWithHan(t *testing.T) {
	fake := &fakeTranslator{out: "Hello World"}
	a := setupTestApp(t, testConfig(t, ModeDevelopment), WithTranslator(fake))

	rec, body := doJSON(t, a, http.MethodPost, "/api/translate-title", `{"title":"你好世界"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", rec.Code, body)
	}
	if body["slug"] != "hello-world" || body["translated"] != "Hello World" || body["success"] != true {
		t.Errorf("body = %v", body)
	}
	if fake.from != "zh-TW" || fake.to != "en" {
		t.Errorf("languages = %s -> %s", fake.from, fake.to)
	}
}

func TestTranslateTitleFailureReturnsFallback(t *testing.T) {
	fake := &fakeTranslator{err: errors.New("upstream down")}
	a := setupTestApp(t, testConfig(t, ModeDevelopment), WithTranslator(fake))

	rec, body := doJSON(t, a, http.MethodPost, "/api/translate-title", `{"title":"部落格 2024"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body["success"] != false || body["error"] == nil {
		t.Errorf("body = %v", body)
	}
	fallback, _ := body["fallback"].(string)
	if fallback == "" {
		t.Fatalf("fallback missing: %v", body)
	}
	if !content.ValidSlug(fallback) {
		t.Errorf("fallback %q is not a valid slug", fallback)
	}
}

func TestTranslateTitleValidation(t *testing.T) {
	a := setupTestApp(t, testConfig(t, ModeDevelopment), WithTranslator(&fakeTranslator{}))
	for _, body := range []string{`{}`, `{"title":"   "}`} {
		if rec, _ := doJSON(t, a, http.MethodPost, "/api/translate-title", body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestTranslateTitleRateLimit(t *testing.T) {
	cfg := testConfig(t, ModeDevelopment)
	cfg.TranslateLimit = 2
	a := setupTestApp(t, cfg, WithTranslator(&fakeTranslator{}))

	for i := 0; i < 2; i++ {
		if rec, _ := doJSON(t, a, http.MethodPost, "/api/translate-title", `{"title":"hi"}`); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}
	rec, body := doJSON(t, a, http.MethodPost, "/api/translate-title", `{"title":"hi"}`)
	if rec.Code != http.StatusTooManyRequests || body["success"] != false {
		t.Errorf("third request: %d %v", rec.Code, body)
	}
}

const gtxResponse = `[[["Hello ","你好",null,null,10],["world","世界",null,null,10]],null,"zh-TW"]`

func TestGoogleTranslator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("sl") != "zh-TW" || q.Get("tl") != "en" || q.Get("q") != "你好世界" {
			http.Error(w, "bad query "+r.URL.RawQuery, http.StatusBadRequest)
			return
		}
		w.Write([]byte(gtxResponse))
	}))
	defer srv.Close()

	tr := NewGoogleTranslator(srv.URL, srv.Client())
	got, err := tr.Translate(context.Background(), "你好世界", "zh-TW", "en")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello world" {
		t.Errorf("Translate = %q", got)
	}
}

func TestGoogleTranslatorUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewGoogleTranslator(srv.URL, srv.Client()).Translate(context.Background(), "你好", "zh-TW", "en"); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}

func TestParseGTX(t *testing.T) {
	tests := []struct {
		body    string
		want    string
		wantErr bool
	}{
		{gtxResponse, "Hello world", false},
		{`[[["Blog",null]]]`, "Blog", false},
		{`[]`, "", true},
		{`[[]]`, "", true},
		{`not json`, "", true},
		{`[[[null,"x"]]]`, "", true},
	}
	for _, tt := range tests {
		got, err := parseGTX([]byte(tt.body))
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseGTX(%s) = %q, %v", tt.body, got, err)
		}
	}
}

func TestHasHan(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Hello", false},
		{"", false},
		{"你好", true},
		{"Go 語言", true},
		{"こんにちは", false},
		{"안녕하세요", false},
		{"mixed 中 text", true},
	}
	for _, tt := range tests {
		if got := hasHan(tt.in); got != tt.want {
			t.Errorf("hasHan(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
