package quote

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CorpusFileName is the unified corpus slot consumed by the importer.
// FlatFileName is its human-readable rendering.
const (
	CorpusFileName = "ALL_QUOTES.json"
	FlatFileName   = "ALL_QUOTES.txt"
)

// SlotPath returns the interchange file for one harvester.
func SlotPath(dir, source string) string {
	return filepath.Join(dir, source+".json")
}

// WriteSlot writes a harvester's record batch to its named slot. An empty
// batch still produces a file so a rerun can distinguish "harvested nothing"
// from "never ran".
func WriteSlot(dir, source string, records []Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", source, err)
	}
	return os.WriteFile(SlotPath(dir, source), data, 0o644)
}

// ReadSlot loads one interchange file.
func ReadSlot(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// SlotFiles lists the per-harvester slot files under dir in lexicographic
// order, excluding the unified corpus outputs. The order fixes which duplicate
// the merger keeps.
func SlotFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if e.Name() == CorpusFileName {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// WriteCorpus writes the unified corpus slot.
func WriteCorpus(dir string, c Corpus) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(c.Records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, CorpusFileName), data, 0o644)
}

// ReadCorpus loads the unified corpus slot.
func ReadCorpus(dir string) (Corpus, error) {
	records, err := ReadSlot(filepath.Join(dir, CorpusFileName))
	if err != nil {
		return Corpus{}, err
	}
	return Corpus{Records: records}, nil
}

// WriteFlat writes the human-readable rendering: one quotation per line,
// "text — author", or the bare text when the author is absent.
func WriteFlat(dir string, c Corpus) error {
	var b strings.Builder
	for _, r := range c.Records {
		b.WriteString(r.Text)
		if r.Author != "" {
			b.WriteString(" — ")
			b.WriteString(r.Author)
		}
		b.WriteByte('\n')
	}
	return os.WriteFile(filepath.Join(dir, FlatFileName), []byte(b.String()), 0o644)
}
