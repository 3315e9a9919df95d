package postdesk

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/eringen/postdesk/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty trims every value and drops the empty ones.
func FilterEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterByTag returns the posts carrying tag, compared case-insensitively.
// An empty tag returns posts unchanged.
func FilterByTag(posts []content.PublishedPost, tag string) []content.PublishedPost {
	if tag == "" {
		return posts
	}
	normalized := normalizeTag(tag)
	var filtered []content.PublishedPost
	for _, p := range posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered
}

// FeaturedFirst moves featured posts ahead of the rest, keeping the
// existing order within both groups.
func FeaturedFirst(posts []content.PublishedPost) []content.PublishedPost {
	out := append([]content.PublishedPost(nil), posts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Featured && !out[j].Featured
	})
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
