package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quotemill/quotemill/internal/store"
)

type stubStats struct {
	stats store.Stats
	err   error
}

func (s stubStats) CountQuotations(context.Context) (int64, error) { return s.stats.Total, s.err }

func (s stubStats) Statistics(context.Context) (store.Stats, error) { return s.stats, s.err }

func newTestServer(stats stubStats) *httptest.Server {
	srv := New(stats, prometheus.NewRegistry(), log.New(io.Discard, "", 0))
	return httptest.NewServer(srv.Handler())
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(stubStats{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(stubStats{stats: store.Stats{
		Total:      3,
		ByLanguage: map[string]int64{"en": 2, "ru": 1},
	}})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got store.Stats
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 3 || got.ByLanguage["en"] != 2 {
		t.Errorf("stats = %+v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(stubStats{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
