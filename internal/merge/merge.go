// Package merge combines per-source harvest slots into one corpus. Duplicate
// texts are resolved first-seen-wins: slots are read in lexicographic file
// order, so the winning copy of a quote is deterministic across runs.
package merge

import (
	"fmt"
	"log"
	"os"

	"github.com/quotemill/quotemill/internal/quote"
)

type Merger struct {
	logger *log.Logger
	seen   map[string]struct{}
}

func New(logger *log.Logger) *Merger {
	if logger == nil {
		logger = log.New(os.Stdout, "[MERGE] ", log.LstdFlags)
	}
	return &Merger{
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Merge reads every slot file under dir and folds the records into a single
// corpus. Records survive verbatim; only exact-duplicate texts (case and
// whitespace insensitive) are dropped, keeping the first occurrence.
func (m *Merger) Merge(dir string) (quote.Corpus, error) {
	slots, err := quote.SlotFiles(dir)
	if err != nil {
		return quote.Corpus{}, fmt.Errorf("list slot files: %w", err)
	}
	if len(slots) == 0 {
		return quote.Corpus{}, fmt.Errorf("no slot files in %s", dir)
	}

	var corpus quote.Corpus
	for _, slot := range slots {
		records, err := quote.ReadSlot(slot)
		if err != nil {
			return quote.Corpus{}, fmt.Errorf("read slot %s: %w", slot, err)
		}
		kept := 0
		for _, rec := range records {
			key := quote.DedupKey(rec.Text)
			if key == "" {
				corpus.Discarded++
				continue
			}
			if _, dup := m.seen[key]; dup {
				corpus.Discarded++
				continue
			}
			m.seen[key] = struct{}{}
			corpus.Records = append(corpus.Records, rec)
			kept++
		}
		m.logger.Printf("slot %s: %d records, %d kept", slot, len(records), kept)
	}

	m.logger.Printf("merged %d records, %d duplicates discarded", len(corpus.Records), corpus.Discarded)
	return corpus, nil
}

// MergeAndWrite merges the slots under dir and writes the combined corpus
// back into dir as both the JSON corpus file and the flat text export.
func (m *Merger) MergeAndWrite(dir string) (quote.Corpus, error) {
	corpus, err := m.Merge(dir)
	if err != nil {
		return quote.Corpus{}, err
	}
	if err := quote.WriteCorpus(dir, corpus); err != nil {
		return quote.Corpus{}, fmt.Errorf("write corpus: %w", err)
	}
	if err := quote.WriteFlat(dir, corpus); err != nil {
		return quote.Corpus{}, fmt.Errorf("write flat export: %w", err)
	}
	return corpus, nil
}
