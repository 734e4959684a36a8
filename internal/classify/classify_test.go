package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDocument(t *testing.T) {
	t.Parallel()

	base := "https://example.com/en-US/products/"

	cases := []struct {
		name string
		href string
		want bool
	}{
		{"relative pdf", "specs/manual.pdf", true},
		{"absolute pdf", "https://cdn.example.com/files/doc.pdf", true},
		{"uppercase extension", "REPORT.PDF", true},
		{"pdf with query", "/assets/brochure.pdf?version=2", true},
		{"pdf marker mid-path", "/download.pdf/latest", true},
		{"plain page", "about.html", false},
		{"text file", "notes.txt", false},
		{"no extension", "/en-US/contact", false},
		{"mailto link", "mailto:info@example.com", false},
		{"javascript link", "javascript:void(0)", false},
		{"empty href", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsDocument(tc.href, base), "href=%q", tc.href)
		})
	}
}

func TestIsDocumentDeterministic(t *testing.T) {
	t.Parallel()

	href, base := "docs/file.pdf", "https://example.com/page"
	first := IsDocument(href, base)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsDocument(href, base))
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	abs, ok := Resolve("../a/b.pdf", "https://example.com/en-US/x/y")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/en-US/a/b.pdf", abs)

	_, ok = Resolve("ftp://example.com/file.pdf", "https://example.com/")
	assert.False(t, ok, "non-http schemes are rejected")
}

func TestFilename(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/files/manual.pdf", "manual.pdf"},
		{"https://example.com/files/manual.pdf?v=3", "manual.pdf"},
		{"https://example.com/", ""},
		{"https://example.com", ""},
		{"://bad", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Filename(tc.url), "url=%q", tc.url)
	}
}
