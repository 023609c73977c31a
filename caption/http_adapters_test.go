package caption

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewHTTPTranslatorSetsEndpoint(t *testing.T) {
	tr := NewHTTPTranslator("https://translate.example.com/v1")
	require.Equal(t, "https://translate.example.com/v1", tr.Endpoint)
	require.NotNil(t, tr.httpClient)
}

func TestHTTPTranslatorTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text           string `json:"text"`
			TargetLanguage string `json:"target_language"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "hello", body.Text)
		require.Equal(t, "es", body.TargetLanguage)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"translation": "hola"})
	}))
	defer srv.Close()

	tr := &HTTPTranslator{Endpoint: srv.URL, httpClient: &http.Client{Timeout: 2 * time.Second}}
	out, err := tr.Translate("hello", "es")
	require.NoError(t, err)
	require.Equal(t, "hola", out)
}

func TestHTTPTranslatorTranslateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tr := &HTTPTranslator{Endpoint: srv.URL, httpClient: &http.Client{Timeout: 2 * time.Second}}
	_, err := tr.Translate("hello", "es")
	require.Error(t, err)
}

func TestNewHTTPTransliteratorSetsEndpoint(t *testing.T) {
	tl := NewHTTPTransliterator("https://translit.example.com/v1")
	require.Equal(t, "https://translit.example.com/v1", tl.Endpoint)
	require.NotNil(t, tl.httpClient)
}

func TestHTTPTransliteratorTransliterate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Word string `json:"word"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "namaste", body.Word)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"romanized": "namaste"})
	}))
	defer srv.Close()

	tl := &HTTPTransliterator{Endpoint: srv.URL, httpClient: &http.Client{Timeout: 2 * time.Second}}
	out, err := tl.Transliterate("namaste")
	require.NoError(t, err)
	require.Equal(t, "namaste", out)
}
