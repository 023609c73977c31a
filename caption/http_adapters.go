package caption

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clipforge/viralclip/log"
	"github.com/hashicorp/go-retryablehttp"
)

// HTTPTranslator calls a JSON translation endpoint that accepts
// {"text", "target_language"} and replies {"translation"}. Any hosted
// translation API can sit behind this contract by fronting it with a
// thin proxy.
type HTTPTranslator struct {
	Endpoint   string
	httpClient *http.Client
}

func NewHTTPTranslator(endpoint string) *HTTPTranslator {
	client := retryablehttp.NewClient()
	client.Logger = log.NewRetryableHTTPLogger()
	client.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	return &HTTPTranslator{Endpoint: endpoint, httpClient: client.StandardClient()}
}

func (t *HTTPTranslator) Translate(text, targetLanguage string) (string, error) {
	body, err := json.Marshal(map[string]string{"text": text, "target_language": targetLanguage})
	if err != nil {
		return "", fmt.Errorf("translator: marshaling request: %w", err)
	}

	resp, err := t.httpClient.Post(t.Endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("translator: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("translator: endpoint returned status %d", resp.StatusCode)
	}

	var out struct {
		Translation string `json:"translation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("translator: decoding response: %w", err)
	}
	return out.Translation, nil
}

// HTTPTransliterator calls a JSON transliteration endpoint that accepts
// {"word"} and replies {"romanized"}.
type HTTPTransliterator struct {
	Endpoint   string
	httpClient *http.Client
}

func NewHTTPTransliterator(endpoint string) *HTTPTransliterator {
	client := retryablehttp.NewClient()
	client.Logger = log.NewRetryableHTTPLogger()
	client.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	return &HTTPTransliterator{Endpoint: endpoint, httpClient: client.StandardClient()}
}

func (t *HTTPTransliterator) Transliterate(word string) (string, error) {
	body, err := json.Marshal(map[string]string{"word": word})
	if err != nil {
		return "", fmt.Errorf("transliterator: marshaling request: %w", err)
	}

	resp, err := t.httpClient.Post(t.Endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("transliterator: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("transliterator: endpoint returned status %d", resp.StatusCode)
	}

	var out struct {
		Romanized string `json:"romanized"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("transliterator: decoding response: %w", err)
	}
	return out.Romanized, nil
}
