package urlnorm

import (
	"strings"
	"testing"
)

func TestCanonicalizeStripsTrackingAndFragment(t *testing.T) {
	t.Parallel()

	got := Canonicalize("https://Example.com/story?utm_source=feed&id=7&utm_campaign=x&fbclid=abc#section")
	want := "https://example.com/story?id=7"
	if got != want {
		t.Fatalf("Canonicalize = %q, want %q", got, want)
	}
}

func TestCanonicalizePreservesQueryOrder(t *testing.T) {
	t.Parallel()

	got := Canonicalize("https://example.com/a?z=1&gclid=x&a=2&m=3")
	want := "https://example.com/a?z=1&a=2&m=3"
	if got != want {
		t.Fatalf("Canonicalize = %q, want %q", got, want)
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://example.com/story?id=7",
		"https://news.example.org/path/to/item",
		"http://example.com:8080/x?b=2&a=1",
	}
	for _, input := range inputs {
		once := Canonicalize(input)
		twice := Canonicalize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestCanonicalizeUnwrapsRedirector(t *testing.T) {
	t.Parallel()

	wrapped := "https://news.google.com/rss/articles/abc?url=https%3A%2F%2Fexample.com%2Fstory%3Fid%3D7&oc=5"
	got := Canonicalize(wrapped)
	want := "https://example.com/story?id=7"
	if got != want {
		t.Fatalf("Canonicalize = %q, want %q", got, want)
	}
}

func TestCanonicalizeRedirectorWithoutTarget(t *testing.T) {
	t.Parallel()

	// No url param to unwrap: normalize the redirector URL itself.
	got := Canonicalize("https://news.google.com/rss/articles/CBMi?oc=5")
	if !strings.HasPrefix(got, "https://news.google.com/") {
		t.Fatalf("Canonicalize = %q, expected redirector host retained", got)
	}
}

func TestCanonicalizeUnwrapDepthBounded(t *testing.T) {
	t.Parallel()

	// Four levels of self-wrapping must not recurse forever; the result
	// is still a valid absolute URL.
	inner := "https://example.com/final"
	wrapped := inner
	for i := 0; i < 4; i++ {
		wrapped = "https://news.google.com/r?url=" + strings.ReplaceAll(wrapped, ":", "%3A")
	}
	got := Canonicalize(wrapped)
	if got == "" {
		t.Fatal("Canonicalize returned empty string")
	}
}

func TestCanonicalizeFailsClosed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"not a url at all",
		"/relative/path?x=1",
		"",
	}
	for _, raw := range cases {
		got := Canonicalize(raw)
		if got != strings.TrimSpace(raw) {
			t.Fatalf("Canonicalize(%q) = %q, want input returned unchanged", raw, got)
		}
	}
}

func TestContentIDStableAcrossVariants(t *testing.T) {
	t.Parallel()

	a := ContentID(Canonicalize("https://example.com/story?id=7&utm_source=rss"))
	b := ContentID(Canonicalize("https://EXAMPLE.com/story?id=7#top"))
	if a != b {
		t.Fatalf("variant URLs produced different IDs: %s vs %s", a, b)
	}
	if len(a) != 40 {
		t.Fatalf("ContentID length = %d, want 40 hex chars", len(a))
	}
}

func TestContentIDDistinctForDistinctURLs(t *testing.T) {
	t.Parallel()

	a := ContentID("https://example.com/story?id=7")
	b := ContentID("https://example.com/story?id=8")
	if a == b {
		t.Fatalf("distinct URLs produced the same ID: %s", a)
	}
}
