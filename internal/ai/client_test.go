package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lark-base-gateway/internal/config"
	"lark-base-gateway/internal/metrics"
)

var testMetrics = metrics.NewMetrics()

func newTestClient(url string) *Client {
	return NewClient(&config.OpenAIConfig{
		APIKey:      "sk-test",
		BaseURL:     url + "/v1",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   1000,
		Timeout:     5 * time.Second,
	}, testMetrics)
}

func TestCompleteReturnsTrimmedAnswer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [{"index":0,"message":{"role":"assistant","content":"  こんにちは！  "},"finish_reason":"stop"}]
		}`))
	}))
	defer ts.Close()

	answer := newTestClient(ts.URL).Complete(context.Background(), "挨拶して")
	assert.Equal(t, "こんにちは！", answer)
}

func TestCompleteBackendErrorNeverPropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	answer := newTestClient(ts.URL).Complete(context.Background(), "hi")
	assert.Equal(t, apiErrorReply, answer)
}

func TestCompleteEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-2","object":"chat.completion","choices":[]}`))
	}))
	defer ts.Close()

	answer := newTestClient(ts.URL).Complete(context.Background(), "hi")
	assert.Equal(t, noAnswerReply, answer)
}
