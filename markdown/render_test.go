package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRendererRender(t *testing.T) {
	r := NewRenderer("")
	out, err := r.Render([]byte("# Hello\n\nSome *text*.\n\n```go\nfunc main() {}\n```\n"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, `<h1 id="hello">Hello</h1>`) {
		t.Errorf("missing heading with id: %q", got)
	}
	if !strings.Contains(got, "<em>text</em>") {
		t.Errorf("missing emphasis: %q", got)
	}
	if !strings.Contains(got, `class="chroma"`) {
		t.Errorf("code block should be highlighted with classes: %q", got)
	}
}

func TestRendererAllowsInlineHTML(t *testing.T) {
	r := NewRenderer("github")
	out, err := r.Render([]byte(`<figure class="wide">x</figure>`))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(out), `<figure class="wide">`) {
		t.Errorf("inline HTML should pass through: %q", out)
	}
}

func TestRendererHTMLComponent(t *testing.T) {
	r := NewRenderer("no-such-style")
	if r.style != DefaultCodeStyle {
		t.Errorf("style = %q, want fallback %q", r.style, DefaultCodeStyle)
	}
	var buf bytes.Buffer
	if err := r.HTML("| a | b |\n|---|---|\n| 1 | 2 |").Render(context.Background(), &buf); err != nil {
		t.Fatalf("HTML render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<table>") {
		t.Errorf("GFM tables should render: %q", buf.String())
	}
}

func TestRendererWriteCSS(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer("").WriteCSS(&buf); err != nil {
		t.Fatalf("WriteCSS failed: %v", err)
	}
	if !strings.Contains(buf.String(), ".chroma") {
		t.Errorf("stylesheet should target .chroma: %q", buf.String())
	}
}
