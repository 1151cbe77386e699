package quote

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  two\t\nwords   here ")
	if got != "two words here" {
		t.Errorf("NormalizeText = %q", got)
	}
}

func TestDedupKeyCaseAndWhitespaceInsensitive(t *testing.T) {
	a := DedupKey("Know  Thyself")
	b := DedupKey("know thyself")
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
}

func TestKeyIncludesLanguage(t *testing.T) {
	if Key("hello world", "en") == Key("hello world", "ru") {
		t.Error("keys for different languages must differ")
	}
}

func TestRecordJSONNullAuthor(t *testing.T) {
	data, err := json.Marshal(Record{Text: "t", Source: "s", Lang: "en"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"author":null`) {
		t.Errorf("missing author is not null: %s", data)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Author != "" {
		t.Errorf("author = %q, want empty", back.Author)
	}
}

func TestRecordJSONAuthorPresent(t *testing.T) {
	data, err := json.Marshal(Record{Text: "t", Author: "A", Source: "s", Lang: "en"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"author":"A"`) {
		t.Errorf("author not serialized: %s", data)
	}
}

func TestWriteSlotEmptyBatch(t *testing.T) {
	dir := t.TempDir()
	if err := WriteSlot(dir, "empty", nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := ReadSlot(SlotPath(dir, "empty"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestSlotFilesOrderedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, src := range []string{"zeta", "alpha", "mid"} {
		if err := WriteSlot(dir, src, nil); err != nil {
			t.Fatalf("write %s: %v", src, err)
		}
	}
	if err := WriteCorpus(dir, Corpus{}); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	files, err := SlotFiles(dir)
	if err != nil {
		t.Fatalf("slot files: %v", err)
	}
	want := []string{"alpha.json", "mid.json", "zeta.json"}
	if len(files) != len(want) {
		t.Fatalf("files = %v", files)
	}
	for i, w := range want {
		if filepath.Base(files[i]) != w {
			t.Errorf("files[%d] = %s, want %s", i, filepath.Base(files[i]), w)
		}
	}
}
