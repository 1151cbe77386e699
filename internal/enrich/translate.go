package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Translator produces a translation of text from one language to another.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// HTTPTranslator talks to a LibreTranslate-compatible endpoint.
type HTTPTranslator struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func NewHTTPTranslator(endpoint, apiKey string, timeout time.Duration) *HTTPTranslator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTranslator{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"q":       text,
		"source":  from,
		"target":  to,
		"format":  "text",
		"api_key": t.APIKey,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out.TranslatedText, nil
}
