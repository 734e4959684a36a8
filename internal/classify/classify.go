// Package classify decides whether a link target is a PDF document.
package classify

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

const pdfMIME = "application/pdf"

// Resolve joins a possibly-relative href against its base page URL and
// returns the absolute form. An unparseable input returns ok=false.
func Resolve(href, base string) (string, bool) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	abs := baseURL.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}

// IsDocument classifies a (href, base) pair. It is pure: no I/O beyond URL
// resolution. A URL is a document when its string contains the ".pdf" marker
// case-insensitively, or when the extension of its final path segment maps
// to the PDF MIME type. Anything ambiguous classifies as false; a wasted
// download costs more than a missed one here.
func IsDocument(href, base string) bool {
	abs, ok := Resolve(href, base)
	if !ok {
		return false
	}
	if strings.Contains(strings.ToLower(abs), ".pdf") {
		return true
	}
	u, err := url.Parse(abs)
	if err != nil {
		return false
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		return false
	}
	guessed := mime.TypeByExtension(ext)
	if guessed == "" {
		return false
	}
	guessed, _, err = mime.ParseMediaType(guessed)
	if err != nil {
		return false
	}
	return guessed == pdfMIME
}

// Filename derives the remote filename from a document URL: the final
// segment of the path, query and fragment excluded. Empty when the URL has
// no usable segment.
func Filename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
