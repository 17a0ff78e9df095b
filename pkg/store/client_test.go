package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSessionsOrdersByQuery(t *testing.T) {
	var gotOrder string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/chats", r.URL.Path)
		gotOrder = r.URL.Query().Get("order")
		writeJSON(t, w, []map[string]interface{}{
			{"id": "s2", "title": "Later", "created_at": "2024-05-02T10:00:00Z"},
			{"id": "s1", "title": "Earlier", "created_at": "2024-05-01T10:00:00Z"},
		})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-key")
	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)

	require.Equal(t, "created_at.desc", gotOrder)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].ID)
	assert.Equal(t, "Later", sessions[0].Title)
}

func TestListSessionsRejectsMalformedRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]interface{}{
			{"title": "no id here", "created_at": "2024-05-01T10:00:00Z"},
		})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-key")
	_, err := client.ListSessions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestCreateSessionSendsAuthAndReturnsRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("apikey"))
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "New Chat", payload["title"])

		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, []map[string]interface{}{
			{"id": "s1", "title": "New Chat", "created_at": "2024-05-01T10:00:00Z"},
		})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-key")
	session, err := client.CreateSession(context.Background(), "New Chat")
	require.NoError(t, err)
	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, "New Chat", session.Title)
}

func TestCreateTurnThenListTurnsRoundTrip(t *testing.T) {
	created := map[string]interface{}{
		"id":         "t1",
		"chat_id":    "s1",
		"role":       "user",
		"content":    "Hello",
		"created_at": "2024-05-01T10:00:00Z",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.Equal(t, "s1", payload["chat_id"])
			require.Equal(t, "user", payload["role"])
			w.WriteHeader(http.StatusCreated)
			writeJSON(t, w, []map[string]interface{}{created})
		case http.MethodGet:
			require.Equal(t, "eq.s1", r.URL.Query().Get("chat_id"))
			require.Equal(t, "created_at.asc", r.URL.Query().Get("order"))
			writeJSON(t, w, []map[string]interface{}{created})
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-key")

	turn, err := client.CreateTurn(context.Background(), "s1", RoleUser, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "t1", turn.ID)
	assert.Equal(t, RoleUser, turn.Role)

	turns, err := client.ListTurns(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, turn.Content, turns[0].Content)
	assert.Equal(t, turn.Role, turns[0].Role)
}

func TestListTurnsRejectsUnknownRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]interface{}{
			{"id": "t1", "chat_id": "s1", "role": "robot", "content": "beep", "created_at": "2024-05-01T10:00:00Z"},
		})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-key")
	_, err := client.ListTurns(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestUpdateTurnContentPatchesByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "eq.t1", r.URL.Query().Get("id"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "edited", payload["content"])

		writeJSON(t, w, []map[string]interface{}{
			{"id": "t1", "chat_id": "s1", "role": "user", "content": "edited", "created_at": "2024-05-01T10:00:00Z"},
		})
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-key")
	turn, err := client.UpdateTurnContent(context.Background(), "t1", "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", turn.Content)
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-key")
	_, err := client.ListSessions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "permission denied")
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
