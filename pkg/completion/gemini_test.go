package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiCompleteReturnsCandidateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var payload geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Contents, 1)
		require.Equal(t, "Hello", payload.Contents[0].Parts[0].Text)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": "Hi there"}},
				}},
			},
		})
	}))
	defer srv.Close()

	completer := NewGeminiCompleter("test-key", "gemini-pro", WithBaseURL(srv.URL))
	text, err := completer.Complete(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", text)
}

func TestGeminiCompleteFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	completer := NewGeminiCompleter("test-key", "gemini-pro", WithBaseURL(srv.URL))
	_, err := completer.Complete(context.Background(), "Hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompletion))
}

func TestGeminiCompleteFailsOnMissingCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	completer := NewGeminiCompleter("test-key", "gemini-pro", WithBaseURL(srv.URL))
	_, err := completer.Complete(context.Background(), "Hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompletion))
}

func TestGeminiCompleteFailsOnUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	completer := NewGeminiCompleter("test-key", "gemini-pro", WithBaseURL(srv.URL))
	_, err := completer.Complete(context.Background(), "Hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompletion))
}

func TestNewCompleterDispatchesOnModelName(t *testing.T) {
	c, err := NewCompleter("gemini-pro", "key")
	require.NoError(t, err)
	_, ok := c.(*GeminiCompleter)
	assert.True(t, ok)

	c, err = NewCompleter("gpt-4o-mini", "key")
	require.NoError(t, err)
	_, ok = c.(*OpenAICompleter)
	assert.True(t, ok)

	_, err = NewCompleter("", "key")
	require.Error(t, err)

	_, err = NewCompleter("gemini-pro", "")
	require.Error(t, err)
}
