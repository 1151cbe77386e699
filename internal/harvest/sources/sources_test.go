package sources

import (
	"strings"
	"testing"
)

func TestZenQuotesExtract(t *testing.T) {
	s := NewZenQuotes(0)
	body := []byte(`[{"q":"The obstacle is the way.","a":"Marcus Aurelius"},{"q":"Too many requests.","a":"zenquotes.io"}]`)
	cands, done, err := s.Extract(0, body)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if done {
		t.Errorf("expected not done")
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if cands[0].Author != "Marcus Aurelius" {
		t.Errorf("author = %q", cands[0].Author)
	}
}

func TestQuotableExtract(t *testing.T) {
	s := NewQuotable(0)
	body := []byte(`{"results":[{"content":"Simplicity is the ultimate sophistication.","author":"Leonardo da Vinci"}],"totalCount":1}`)
	cands, done, err := s.Extract(0, body)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !done {
		t.Errorf("expected done on last page")
	}
	if len(cands) != 1 || cands[0].Text != "Simplicity is the ultimate sophistication." {
		t.Fatalf("candidates = %+v", cands)
	}
}

func TestQuotableExtractEmpty(t *testing.T) {
	s := NewQuotable(0)
	cands, done, err := s.Extract(3, []byte(`{"results":[],"totalCount":450}`))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !done || len(cands) != 0 {
		t.Errorf("expected done with no candidates, got done=%v len=%d", done, len(cands))
	}
}

func TestForismaticExtract(t *testing.T) {
	s := NewForismatic(0)
	body := []byte(`{"quoteText":"Мы все учились понемногу чему-нибудь и как-нибудь.","quoteAuthor":"Александр Пушкин"}`)
	cands, _, err := s.Extract(0, body)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if cands[0].Author != "Александр Пушкин" {
		t.Errorf("author = %q", cands[0].Author)
	}
}

func TestGoodreadsExtract(t *testing.T) {
	s := NewGoodreads(0, false)
	body := []byte(`<html><body>
<div class="quoteText">
  &ldquo;Be yourself; everyone else is already taken.&rdquo;
  &#8213;
  <span class="authorOrTitle">Oscar Wilde</span>
</div>
</body></html>`)
	cands, _, err := s.Extract(0, body)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if cands[0].Text != "Be yourself; everyone else is already taken." {
		t.Errorf("text = %q", cands[0].Text)
	}
	if cands[0].Author != "Oscar Wilde" {
		t.Errorf("author = %q", cands[0].Author)
	}
}

func TestGoodreadsPageURLs(t *testing.T) {
	s := NewGoodreads(2, false)
	urls := s.PageURLs("https://www.goodreads.com/quotes", 0)
	if len(urls) != 1 || !strings.HasSuffix(urls[0], "?page=1") {
		t.Errorf("urls = %v", urls)
	}
	if got := s.PageURLs("https://www.goodreads.com/quotes", 2); got != nil {
		t.Errorf("expected nil past last page, got %v", got)
	}
}

func TestWikiquoteExtract(t *testing.T) {
	s := NewWikiquote([]string{"Oscar Wilde"})
	body := []byte(`<html><body><div class="mw-parser-output">
<ul>
  <li>I can resist everything except temptation.<ul><li>Lady Windermere's Fan (1892)</li></ul></li>
  <li>Short.</li>
  <li>Misattributed to someone else entirely over the years.</li>
</ul>
</div></body></html>`)
	cands, _, err := s.Extract(0, body)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(cands), cands)
	}
	if cands[0].Text != "I can resist everything except temptation." {
		t.Errorf("text = %q", cands[0].Text)
	}
	if cands[0].Author != "Oscar Wilde" {
		t.Errorf("author = %q", cands[0].Author)
	}
}

func TestWikiquotePageURLs(t *testing.T) {
	s := NewWikiquote([]string{"Seneca the Younger"})
	urls := s.PageURLs("https://en.wikiquote.org", 0)
	if len(urls) != 1 || !strings.Contains(urls[0], "/wiki/Seneca_the_Younger") {
		t.Errorf("urls = %v", urls)
	}
}

func TestCitatyExtract(t *testing.T) {
	s := NewCitaty(0)
	body := []byte(`<html><body>
<div class="node-quote">
  <div class="field-item">Свобода ничего не стоит, если она не включает в себя свободу ошибаться.</div>
</div>
</body></html>`)
	cands, _, err := s.Extract(0, body)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(cands) == 0 {
		t.Fatal("expected candidates")
	}
	if !strings.Contains(cands[0].Text, "Свобода") {
		t.Errorf("text = %q", cands[0].Text)
	}
}

func TestCitatyBlockquoteFallback(t *testing.T) {
	s := NewCitaty(0)
	body := []byte(`<html><body><blockquote>Мудрость приходит с опытом, а опыт приходит с ошибками.</blockquote></body></html>`)
	cands, _, err := s.Extract(0, body)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
}

func TestCleanText(t *testing.T) {
	got := cleanText("  Hello,\n\tworld  [1] ")
	if got != "Hello, world" {
		t.Errorf("cleanText = %q", got)
	}
}
