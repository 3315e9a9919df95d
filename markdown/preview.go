// Package markdown renders post bodies to HTML. RenderPreview is the small
// regex renderer behind the editor's live preview; Renderer is the goldmark
// pipeline used for published pages.
package markdown

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	codeBlockMark  = "\x00CB"
	inlineCodeMark = "\x00IC"
	tagMark        = "\x00TG"
)

var (
	reFence           = regexp.MustCompile("```(\\w+)?\\n((?s:.*?))```")
	reCodePlaceholder = regexp.MustCompile("\x00CB(\\d+)\x00")
	reInlineCode      = regexp.MustCompile("`([^`\n]+)`")
	reImage           = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	reLink            = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	reBold            = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBlockquote      = regexp.MustCompile(`(?m)^&gt; (.+)$`)
	reRule            = regexp.MustCompile(`(?m)^---$`)
	reUnordered       = regexp.MustCompile(`^\s*[-*]\s+(.+)`)
	reOrdered         = regexp.MustCompile(`^\s*\d+\.\s+(.+)`)
)

// Headings are matched longest prefix first.
var headings = []struct {
	re   *regexp.Regexp
	open string
	tag  string
}{
	{regexp.MustCompile(`(?m)^###### (.+)$`), `<h6 class="mt-4 text-xs font-semibold uppercase tracking-wide text-neutral-500">`, "h6"},
	{regexp.MustCompile(`(?m)^##### (.+)$`), `<h5 class="mt-4 text-sm font-semibold text-neutral-700">`, "h5"},
	{regexp.MustCompile(`(?m)^#### (.+)$`), `<h4 class="mt-4 text-base font-semibold text-neutral-800">`, "h4"},
	{regexp.MustCompile(`(?m)^### (.+)$`), `<h3 class="mt-6 text-lg font-semibold text-neutral-900">`, "h3"},
	{regexp.MustCompile(`(?m)^## (.+)$`), `<h2 class="mt-8 text-xl font-semibold text-neutral-900">`, "h2"},
	{regexp.MustCompile(`(?m)^# (.+)$`), `<h1 class="mt-10 text-2xl font-bold text-neutral-900">`, "h1"},
}

const (
	preClass        = "rounded-lg border border-neutral-200 bg-neutral-50 p-4 text-xs leading-relaxed"
	inlineCodeClass = "rounded bg-neutral-100 px-1 py-0.5 text-xs font-medium"
	imageClass      = "my-4 w-full rounded-xl border border-neutral-200"
	linkClass       = "text-brand-600 underline decoration-brand-300 underline-offset-4"
	quoteClass      = "my-4 border-l-4 border-brand-200 bg-neutral-50 pl-4 italic text-neutral-900"
	ruleTag         = `<hr class="my-6 border-neutral-200" />`
	paragraphOpen   = `<p class="my-3">`
	ulClass         = "my-3 ml-5 list-disc text-neutral-900"
	olClass         = "my-3 ml-5 list-decimal text-neutral-900"
)

// RenderPreview converts content to an HTML fragment for the editor preview.
// It never fails; empty input yields empty output.
func RenderPreview(content string) string {
	if content == "" {
		return ""
	}
	// NUL bytes would collide with the placeholder markers.
	content = strings.ReplaceAll(content, "\x00", "")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var codeBlocks []string
	text := reFence.ReplaceAllStringFunc(content, func(m string) string {
		sub := reFence.FindStringSubmatch(m)
		lang := "text"
		if sub[1] != "" {
			lang = sub[1]
		}
		codeBlocks = append(codeBlocks, `<pre class="`+preClass+`"><code class="language-`+lang+`">`+
			html.EscapeString(strings.TrimSpace(sub[2]))+`</code></pre>`)
		return codeBlockMark + strconv.Itoa(len(codeBlocks)-1) + "\x00"
	})

	text = formatText(html.EscapeString(text))
	out := assembleBlocks(text)

	return reCodePlaceholder.ReplaceAllStringFunc(out, func(m string) string {
		n, err := strconv.Atoi(reCodePlaceholder.FindStringSubmatch(m)[1])
		if err != nil || n >= len(codeBlocks) {
			return ""
		}
		return codeBlocks[n]
	})
}

// formatText applies the inline and single-line block substitutions to
// already escaped text.
func formatText(s string) string {
	// Code spans are set aside so no other rule reaches inside them.
	var spans []string
	s = reInlineCode.ReplaceAllStringFunc(s, func(m string) string {
		spans = append(spans, `<code class="`+inlineCodeClass+`">`+reInlineCode.FindStringSubmatch(m)[1]+`</code>`)
		return inlineCodeMark + strconv.Itoa(len(spans)-1) + "\x00"
	})

	// Generated tags carry user text in their attributes; they are set
	// aside too, so emphasis can wrap a link without reaching into its URL.
	var tags []string
	stash := func(tag string) string {
		tags = append(tags, tag)
		return tagMark + strconv.Itoa(len(tags)-1) + "\x00"
	}

	s = reImage.ReplaceAllStringFunc(s, func(m string) string {
		sub := reImage.FindStringSubmatch(m)
		src := SafeURL(sub[2])
		if src == "" {
			return sub[1]
		}
		return stash(`<img src="` + src + `" alt="` + sub[1] + `" class="` + imageClass + `" />`)
	})
	s = reLink.ReplaceAllStringFunc(s, func(m string) string {
		sub := reLink.FindStringSubmatch(m)
		href := SafeURL(sub[2])
		if href == "" {
			return sub[1]
		}
		return stash(`<a href="`+href+`" class="`+linkClass+`">`) + sub[1] + `</a>`
	})
	for _, h := range headings {
		s = h.re.ReplaceAllString(s, h.open+"$1</"+h.tag+">")
	}
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicize(s)
	for i, tag := range tags {
		s = strings.Replace(s, tagMark+strconv.Itoa(i)+"\x00", tag, 1)
	}
	s = reBlockquote.ReplaceAllString(s, `<blockquote class="`+quoteClass+`">$1</blockquote>`)
	s = reRule.ReplaceAllString(s, ruleTag)

	for i, span := range spans {
		s = strings.Replace(s, inlineCodeMark+strconv.Itoa(i)+"\x00", span, 1)
	}
	return s
}

// italicize wraps *text* in <em>. A marker touching another asterisk never
// opens or closes emphasis, so leftover asterisks of bold markup stay literal.
// Emphasis does not span lines, and the text must not start or end with
// whitespace, which keeps "* item" list markers out of it.
func italicize(s string) string {
	if !strings.Contains(s, "*") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '*' || (i > 0 && s[i-1] == '*') {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := closingStar(s, i+1)
		if end < 0 {
			b.WriteByte('*')
			i++
			continue
		}
		b.WriteString("<em>")
		b.WriteString(s[i+1 : end])
		b.WriteString("</em>")
		i = end + 1
	}
	return b.String()
}

func closingStar(s string, from int) int {
	n := strings.IndexAny(s[from:], "*\n")
	if n <= 0 {
		return -1
	}
	end := from + n
	if s[end] != '*' {
		return -1
	}
	if end+1 < len(s) && s[end+1] == '*' {
		return -1
	}
	if isSpace(s[from]) || isSpace(s[end-1]) {
		return -1
	}
	return end
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// assembleBlocks groups lines into paragraphs and lists. Lines that already
// hold a block tag or a code block placeholder pass through unchanged.
func assembleBlocks(s string) string {
	var (
		out       strings.Builder
		paragraph string
		listType  string
		items     []string
	)
	flushParagraph := func() {
		if strings.TrimSpace(paragraph) != "" {
			out.WriteString(paragraphOpen + paragraph + "</p>")
		}
		paragraph = ""
	}
	flushList := func() {
		if listType != "" && len(items) > 0 {
			class := ulClass
			if listType == "ol" {
				class = olClass
			}
			out.WriteString(`<` + listType + ` class="` + class + `">` + strings.Join(items, "") + `</` + listType + `>`)
		}
		items = nil
		listType = ""
	}
	addItem := func(kind, item string) {
		flushParagraph()
		if listType != kind {
			flushList()
			listType = kind
		}
		items = append(items, "<li>"+item+"</li>")
	}

	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			flushParagraph()
			flushList()
			continue
		}
		if isBlockLine(line) {
			flushParagraph()
			flushList()
			out.WriteString(line)
			continue
		}
		if m := reUnordered.FindStringSubmatch(line); m != nil {
			addItem("ul", m[1])
			continue
		}
		if m := reOrdered.FindStringSubmatch(line); m != nil {
			addItem("ol", m[1])
			continue
		}
		flushList()
		if paragraph == "" {
			paragraph = line
		} else {
			paragraph += "<br />" + line
		}
	}
	flushParagraph()
	flushList()
	return out.String()
}

func isBlockLine(line string) bool {
	return strings.HasPrefix(line, codeBlockMark) ||
		strings.HasPrefix(line, "<h") ||
		strings.HasPrefix(line, "<blockquote") ||
		strings.HasPrefix(line, "<hr")
}

// SafeURL returns raw escaped for an HTML attribute, or "" when it uses a
// scheme other than http, https, mailto or tel. URLs without a scheme
// (relative paths, fragments) are allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" {
		return html.EscapeString(val)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
