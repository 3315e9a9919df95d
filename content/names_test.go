package content

import "testing"

func TestComponentName(t *testing.T) {
	tests := []struct {
		slug      string
		component string
		ref       string
	}{
		{"hello-world", "HelloWorld", "helloWorldFrontmatter"},
		{"my-new-post", "MyNewPost", "myNewPostFrontmatter"},
		{"go", "Go", "goFrontmatter"},
		{"2024-recap", "2024Recap", "2024RecapFrontmatter"},
		{"a-b-c", "ABC", "aBCFrontmatter"},
	}
	for _, tt := range tests {
		if got := ComponentName(tt.slug); got != tt.component {
			t.Errorf("ComponentName(%q) = %q, want %q", tt.slug, got, tt.component)
		}
		if got := FrontmatterName(tt.slug); got != tt.ref {
			t.Errorf("FrontmatterName(%q) = %q, want %q", tt.slug, got, tt.ref)
		}
	}
}

func TestComponentNameIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if ComponentName("stable-slug") != "StableSlug" {
			t.Fatal("derivation changed between calls")
		}
	}
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		ok   bool
	}{
		{"hello-world", true},
		{"post-2024", true},
		{"-", true},
		{"", false},
		{"Hello", false},
		{"hello world", false},
		{"../etc", false},
		{"hello_world", false},
	}
	for _, tt := range tests {
		if got := ValidSlug(tt.slug); got != tt.ok {
			t.Errorf("ValidSlug(%q) = %v, want %v", tt.slug, got, tt.ok)
		}
	}
}

func TestTextToSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Don't Panic!  ", "dont-panic"},
		{"Go  1.24 -- release", "go-124-release"},
		{"It’s here", "its-here"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TextToSlug(tt.input); got != tt.expected {
			t.Errorf("TextToSlug(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFallbackSlugIsValid(t *testing.T) {
	got := FallbackSlug("Hello World")
	if !ValidSlug(got) {
		t.Errorf("FallbackSlug produced invalid slug %q", got)
	}
}
