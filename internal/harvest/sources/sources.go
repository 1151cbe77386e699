// Package sources holds the per-source extraction strategies plugged into the
// shared harvest protocol. Each strategy knows only its endpoint variants,
// page URL shapes and markup; pacing, retries and validation live in the
// harvest package.
package sources

import (
	"bytes"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// meta provides the boilerplate Strategy accessors from plain fields.
type meta struct {
	id       string
	lang     string
	ua       string
	delay    time.Duration
	renderJS bool
	variants []string
}

func (m meta) ID() string           { return m.id }
func (m meta) Lang() string         { return m.lang }
func (m meta) UserAgent() string    { return m.ua }
func (m meta) Delay() time.Duration { return m.delay }
func (m meta) RenderJS() bool       { return m.renderJS }
func (m meta) Variants() []string   { return append([]string(nil), m.variants...) }

var (
	tagRe     = regexp.MustCompile(`<[^>]+>`)
	bracketRe = regexp.MustCompile(`\[[^\]]*\]`)
)

// cleanText strips leftover markup and bracketed reference marks ([1], [прим.])
// and collapses runs of whitespace.
func cleanText(s string) string {
	s = bracketRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// document decodes a fetched body to UTF-8 and parses it. Several of the
// Russian sources still serve windows-1251.
func document(body []byte) (*goquery.Document, error) {
	enc, _, _ := charset.DetermineEncoding(body, "")
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		if !utf8.Valid(body) {
			return nil, err
		}
		decoded = body
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(decoded))
}
