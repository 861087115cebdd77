package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/filgoal/internal/match"
)

// ErrUnparseable is returned when the input cannot be treated as an HTML document.
var ErrUnparseable = errors.New("unparseable document")

// Extractor converts parsed documents into records. It holds only the base URL
// used to build canonical links and is safe for concurrent use.
type Extractor struct {
	base *url.URL
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBaseURL sets the site URL relative links are resolved against.
// Invalid or non-absolute values are ignored.
func WithBaseURL(raw string) Option {
	return func(e *Extractor) {
		u, err := url.Parse(strings.TrimRight(raw, "/"))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return
		}
		e.base = u
	}
}

// New creates an Extractor for match.BaseURL unless overridden.
func New(opts ...Option) *Extractor {
	base, _ := url.Parse(match.BaseURL)
	e := &Extractor{base: base}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BaseURL returns the site URL the extractor resolves links against.
func (e *Extractor) BaseURL() string {
	return e.base.String()
}

// Parse reads an HTML document. Read failures, empty input, binary content and
// input without any markup are reported as ErrUnparseable.
func Parse(r io.Reader) (*goquery.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading: %w", ErrUnparseable, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnparseable)
	}

	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "xml") {
		return nil, fmt.Errorf("%w: content looks like %s", ErrUnparseable, ct)
	}

	if !bytes.ContainsRune(data, '<') {
		return nil, fmt.Errorf("%w: no markup found", ErrUnparseable)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	return doc, nil
}

// checkDocument rejects documents that carry no parsed tree
func checkDocument(doc *goquery.Document) error {
	if doc == nil || doc.Selection == nil || len(doc.Nodes) == 0 {
		return fmt.Errorf("%w: no document tree", ErrUnparseable)
	}
	return nil
}

// cleanText returns the selection's text with whitespace runs collapsed.
func cleanText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// firstText returns the cleaned text of the first match of css under sel that
// has any, or "".
func firstText(sel *goquery.Selection, css string) string {
	var out string
	sel.Find(css).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = cleanText(s)
		return out == ""
	})
	return out
}

// attrValue returns the first non-empty attribute among names.
func attrValue(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := sel.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// NormalizeImageURL rewrites protocol-relative URLs to https and leaves
// everything else untouched.
func NormalizeImageURL(src string) string {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

// resolve makes href absolute against the base URL, dropping any fragment.
// Root-relative paths are joined verbatim so non-ASCII slugs stay readable.
func (e *Extractor) resolve(href string) string {
	href, _, _ = strings.Cut(strings.TrimSpace(href), "#")

	ref, err := url.Parse(href)
	switch {
	case err != nil:
		return e.BaseURL() + "/" + strings.TrimLeft(href, "/")
	case ref.IsAbs():
		return href
	case strings.HasPrefix(href, "//"):
		return e.base.Scheme + ":" + href
	case strings.HasPrefix(href, "/"):
		return e.BaseURL() + href
	default:
		return e.base.ResolveReference(ref).String()
	}
}
