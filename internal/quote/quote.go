package quote

import (
	"encoding/json"
	"strings"
)

// Record is the unit of data flowing through the pipeline: one candidate
// quotation with optional attribution, tagged with its originating harvester
// and language.
type Record struct {
	Text   string
	Author string
	Source string
	Lang   string
}

// recordJSON mirrors the interchange format: author is null when absent.
type recordJSON struct {
	Text   string  `json:"text"`
	Author *string `json:"author"`
	Source string  `json:"source"`
	Lang   string  `json:"lang"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{Text: r.Text, Source: r.Source, Lang: r.Lang}
	if r.Author != "" {
		out.Author = &r.Author
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Text = in.Text
	r.Source = in.Source
	r.Lang = in.Lang
	if in.Author != nil {
		r.Author = *in.Author
	} else {
		r.Author = ""
	}
	return nil
}

// NormalizeText collapses internal whitespace runs to single spaces and trims
// the ends. The stored text keeps its original casing; only comparisons
// case-fold.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DedupKey is the cross-source comparison key: normalized, case-folded text.
func DedupKey(text string) string {
	return strings.ToLower(NormalizeText(text))
}

// Key identifies a persisted quotation: two records with the same normalized
// text and language are the same quotation regardless of source or author.
func Key(text, lang string) string {
	return DedupKey(text) + "\x00" + lang
}

// HarvestRun is the ephemeral result of one harvester invocation.
type HarvestRun struct {
	Source          string
	Records         []Record
	PagesAttempted  int
	PagesSucceeded  int
	Rejected        int
	EarlyStopReason string
}

// Corpus is the merged, deduplicated record sequence consumed by the importer.
type Corpus struct {
	Records   []Record
	Discarded int
}
