// Package validate holds the quotation-validity predicate shared by every
// harvester and re-applied at import time. It is pure: no I/O, no state, same
// input always yields the same answer.
package validate

import (
	"regexp"
	"strings"
	"unicode"
)

// MinLength is the minimum accepted text length after whitespace
// normalization.
const MinLength = 20

var (
	digitRe = regexp.MustCompile(`\d`)

	// Two or more consecutive Roman-numeral letters as a standalone token.
	// A single "I" survives as the English pronoun.
	romanRe = regexp.MustCompile(`(?i)\b[IVXLCDM]{2,}\b`)

	// Two consecutive capitalized-initial words, Latin or Cyrillic: the
	// proper-name heuristic. \b only knows ASCII word characters, so the
	// boundary is spelled out as not-a-letter.
	properNameRe = regexp.MustCompile(`(?:^|[^\pL])(?:[A-Z][a-z]+\s+[A-Z][a-z]+|[А-ЯЁ][а-яё]+\s+[А-ЯЁ][а-яё]+)`)

	// A quoted span holding at least two capitalized-initial words: likely a
	// title of a work.
	quotedTitleRe = regexp.MustCompile(`["«»“”](?:[A-Z][a-z]+.*[A-Z][a-z]+|[А-ЯЁ][а-яё]+.*[А-ЯЁ][а-яё]+)["«»“”]`)

	urlRe = regexp.MustCompile(`(?i)https?://|www\.|@`)

	placeRe   = keywordRe(placeKeywords)
	monthRe   = keywordRe(monthNames)
	theaterRe = keywordRe(theaterKeywords)
)

var placeKeywords = []string{
	"street", "avenue", "road", "drive",
	"улица", "проспект", "переулок",
	"moscow", "london", "paris",
	"москва", "лондон", "париж",
}

var monthNames = []string{
	"january", "february", "march", "april",
	"may", "june", "july", "august",
	"september", "october", "november", "december",
	"январь", "февраль", "март", "апрель",
	"май", "июнь", "июль", "август",
	"сентябрь", "октябрь", "ноябрь", "декабрь",
}

var theaterKeywords = []string{
	"act", "scene", "page", "chapter",
	"акт", "сцена", "страница", "глава",
}

func keywordRe(words []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\pL])(?:` + strings.Join(words, "|") + `)(?:$|[^\pL])`)
}

// IsValid reports whether text looks like a genuine quotation rather than
// metadata (page references, titles, addresses, dates, spam). Checks run over
// a whitespace-normalized copy; the caller keeps the original text.
func IsValid(text string) bool {
	return Reason(text) == ""
}

// Reason returns the name of the first failed rule, or "" when the text is
// acceptable. Used by harvest statistics; IsValid is Reason == "".
func Reason(text string) string {
	t := strings.Join(strings.Fields(text), " ")
	if len([]rune(t)) < MinLength {
		return "too-short"
	}
	if digitRe.MatchString(t) {
		return "digit"
	}
	if romanRe.MatchString(t) {
		return "roman-numeral"
	}
	if properNameRe.MatchString(t) && !startsUpper(t) {
		return "proper-name"
	}
	if placeRe.MatchString(t) {
		return "place-name"
	}
	if quotedTitleRe.MatchString(t) {
		return "quoted-title"
	}
	if urlRe.MatchString(t) {
		return "url-or-email"
	}
	if monthRe.MatchString(t) {
		return "month-name"
	}
	if theaterRe.MatchString(t) {
		return "stage-reference"
	}
	if hasRuneRun(t, 5) {
		return "repeated-chars"
	}
	return ""
}

// hasRuneRun reports whether t contains n or more identical consecutive
// runes. RE2 has no backreferences, so the repeated-character rule is a scan.
func hasRuneRun(t string, n int) bool {
	var prev rune
	run := 0
	for _, r := range t {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// startsUpper implements the sentence-initial exemption for the proper-name
// heuristic.
func startsUpper(t string) bool {
	for _, r := range t {
		return unicode.IsUpper(r)
	}
	return false
}

// HasCyrillic reports whether text contains at least one Cyrillic letter.
// Russian-language sources drop candidates without it.
func HasCyrillic(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
