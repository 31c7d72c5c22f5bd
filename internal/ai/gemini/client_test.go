package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/scribble/internal/ai"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "gm_testkey")
	return srv, client
}

func TestGenerateSendsRequest(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "gm_testkey", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		contents := body["contents"].([]any)
		first := contents[0].(map[string]any)
		assert.Equal(t, "user", first["role"])
		parts := first["parts"].([]any)
		assert.Equal(t, "hello", parts[0].(map[string]any)["text"])

		cfg := body["generationConfig"].(map[string]any)
		assert.InDelta(t, 0.7, cfg["temperature"], 1e-9)
		assert.InDelta(t, 0.8, cfg["topP"], 1e-9)
		assert.NotContains(t, cfg, "maxOutputTokens")

		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"- one"},{"text":"\n- two"}]}}]}`))
	})

	text, err := client.Generate(context.Background(), ai.Request{
		Model:    "gemini-test",
		Prompt:   "hello",
		Sampling: ai.Sampling{Temperature: 0.7, TopP: 0.8},
	})
	require.NoError(t, err)
	assert.Equal(t, "- one\n- two", text)
}

func TestGenerateDefaultModelAndTokenCap(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/"+DefaultModel+":generateContent", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cfg := body["generationConfig"].(map[string]any)
		assert.EqualValues(t, 20, cfg["maxOutputTokens"])
		assert.NotContains(t, cfg, "temperature")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Title"}]}}]}`))
	})

	text, err := client.Generate(context.Background(), ai.Request{
		Prompt:   "x",
		Sampling: ai.Sampling{MaxOutputTokens: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, "Title", text)
}

func TestGenerateNoCandidates(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})
	text, err := client.Generate(context.Background(), ai.Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerateAPIError(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := client.Generate(context.Background(), ai.Request{Prompt: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT: API key not valid", apiErr.Message)
}

func TestGenerateRawErrorBody(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := client.Generate(context.Background(), ai.Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502: upstream down")
}

func TestGenerateWithoutKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "").Generate(context.Background(), ai.Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.False(t, called)
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "k", 20*time.Millisecond)
	_, err := client.Generate(context.Background(), ai.Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestParseErrorValue(t *testing.T) {
	msg, ok := parseErrorValue("quota exceeded")
	assert.True(t, ok)
	assert.Equal(t, "quota exceeded", msg)

	msg, ok = parseErrorValue(map[string]any{"code": float64(429), "message": "slow down"})
	assert.True(t, ok)
	assert.Equal(t, "429: slow down", msg)

	_, ok = parseErrorValue(map[string]any{})
	assert.False(t, ok)
}
