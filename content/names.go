package content

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]+$`)
	reApostrophe    = regexp.MustCompile(`['’‘]`)
	reNonSlugChars  = regexp.MustCompile(`[^a-z0-9\s-]`)
	reWhitespaceRun = regexp.MustCompile(`\s+`)
	reHyphenRun     = regexp.MustCompile(`-+`)
)

// ValidSlug reports whether s only contains lowercase letters, digits and hyphens.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// ComponentName joins the slug's hyphen-separated words, each capitalised:
// "my-new-post" -> "MyNewPost".
func ComponentName(slug string) string {
	var b strings.Builder
	for _, word := range strings.Split(slug, "-") {
		if word == "" {
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}
	return b.String()
}

// FrontmatterName is ComponentName with a lowercase first letter and a
// "Frontmatter" suffix: "my-new-post" -> "myNewPostFrontmatter".
func FrontmatterName(slug string) string {
	name := ComponentName(slug)
	if name == "" {
		return "frontmatter"
	}
	return strings.ToLower(name[:1]) + name[1:] + "Frontmatter"
}

// FileName is the content file name for slug.
func FileName(slug string) string {
	return slug + FileExt
}

// TextToSlug converts ASCII text to a URL-safe slug. Characters outside
// [a-z0-9], whitespace and hyphens are dropped.
func TextToSlug(text string) string {
	s := strings.ToLower(text)
	s = reApostrophe.ReplaceAllString(s, "")
	s = reNonSlugChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = reWhitespaceRun.ReplaceAllString(s, "-")
	return reHyphenRun.ReplaceAllString(s, "-")
}

// FallbackSlug derives a slug locally when the title cannot be translated.
func FallbackSlug(title string) string {
	if s, err := slug.Normalize(title); err == nil && ValidSlug(s) {
		return s
	}
	return TextToSlug(title)
}
