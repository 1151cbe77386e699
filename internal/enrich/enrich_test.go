package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"Love and friendship make life worth living.", []string{"friendship", "life", "love"}},
		{"Счастье приходит к тем, кто умеет ждать.", []string{"happiness", "time"}},
		{"Nothing matches here at all.", []string{"general"}},
	}
	for _, c := range cases {
		got := Categorize(c.text)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Categorize(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	text := "Time, work and wisdom shape a happy life."
	first := Categorize(text)
	for i := 0; i < 5; i++ {
		if got := Categorize(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %v != %v", i, got, first)
		}
	}
}

func TestHTTPTranslator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`{"translatedText":"Счастье"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, "", time.Second)
	got, err := tr.Translate(context.Background(), "Happiness", "en", "ru")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Счастье" {
		t.Errorf("translation = %q", got)
	}
}

func TestHTTPTranslatorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, "", time.Second)
	if _, err := tr.Translate(context.Background(), "Happiness", "en", "ru"); err == nil {
		t.Fatal("expected error")
	}
}
