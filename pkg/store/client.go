package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Client is the request/response interface to the persistent store for chat
// sessions and turns. Implementations must return sessions ordered by
// creation time descending and turns ordered ascending.
type Client interface {
	ListSessions(ctx context.Context) ([]Session, error)
	CreateSession(ctx context.Context, title string) (Session, error)
	ListTurns(ctx context.Context, sessionID string) ([]Turn, error)
	CreateTurn(ctx context.Context, sessionID string, role Role, content string) (Turn, error)
	UpdateTurnContent(ctx context.Context, turnID string, content string) (Turn, error)
}

const defaultTimeout = 15 * time.Second

// RESTClient talks to a Supabase-style REST store. Sessions live in the
// `chats` table, turns in `chat_messages`.
type RESTClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type Option func(*RESTClient)

func WithHTTPClient(c *http.Client) Option {
	return func(r *RESTClient) {
		r.client = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *RESTClient) {
		r.client.Timeout = d
	}
}

func NewRESTClient(baseURL string, apiKey string, options ...Option) *RESTClient {
	ret := &RESTClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

var _ Client = (*RESTClient)(nil)

func (r *RESTClient) ListSessions(ctx context.Context) ([]Session, error) {
	body, err := r.do(ctx, http.MethodGet, "/rest/v1/chats", url.Values{
		"select": []string{"*"},
		"order":  []string{"created_at.desc"},
	}, nil)
	if err != nil {
		return nil, err
	}

	var sessions []Session
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, errors.Wrap(err, "failed to decode session records")
	}
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			return nil, errors.Wrap(err, "malformed session record")
		}
	}

	log.Debug().Int("count", len(sessions)).Msg("listed sessions")
	return sessions, nil
}

func (r *RESTClient) CreateSession(ctx context.Context, title string) (Session, error) {
	body, err := r.do(ctx, http.MethodPost, "/rest/v1/chats", nil, map[string]interface{}{
		"title": title,
	})
	if err != nil {
		return Session{}, err
	}

	session, err := decodeSingle[Session](body)
	if err != nil {
		return Session{}, err
	}
	if err := session.Validate(); err != nil {
		return Session{}, errors.Wrap(err, "malformed session record")
	}

	log.Debug().Str("session_id", session.ID).Str("title", session.Title).Msg("created session")
	return session, nil
}

func (r *RESTClient) ListTurns(ctx context.Context, sessionID string) ([]Turn, error) {
	body, err := r.do(ctx, http.MethodGet, "/rest/v1/chat_messages", url.Values{
		"select":  []string{"*"},
		"chat_id": []string{"eq." + sessionID},
		"order":   []string{"created_at.asc"},
	}, nil)
	if err != nil {
		return nil, err
	}

	var turns []Turn
	if err := json.Unmarshal(body, &turns); err != nil {
		return nil, errors.Wrap(err, "failed to decode turn records")
	}
	for _, t := range turns {
		if err := t.Validate(); err != nil {
			return nil, errors.Wrap(err, "malformed turn record")
		}
	}

	log.Debug().Str("session_id", sessionID).Int("count", len(turns)).Msg("listed turns")
	return turns, nil
}

func (r *RESTClient) CreateTurn(ctx context.Context, sessionID string, role Role, content string) (Turn, error) {
	body, err := r.do(ctx, http.MethodPost, "/rest/v1/chat_messages", nil, map[string]interface{}{
		"chat_id": sessionID,
		"role":    role,
		"content": content,
	})
	if err != nil {
		return Turn{}, err
	}

	turn, err := decodeSingle[Turn](body)
	if err != nil {
		return Turn{}, err
	}
	if err := turn.Validate(); err != nil {
		return Turn{}, errors.Wrap(err, "malformed turn record")
	}

	log.Debug().Str("turn_id", turn.ID).Str("session_id", sessionID).Str("role", string(role)).Msg("created turn")
	return turn, nil
}

func (r *RESTClient) UpdateTurnContent(ctx context.Context, turnID string, content string) (Turn, error) {
	body, err := r.do(ctx, http.MethodPatch, "/rest/v1/chat_messages", url.Values{
		"id": []string{"eq." + turnID},
	}, map[string]interface{}{
		"content": content,
	})
	if err != nil {
		return Turn{}, err
	}

	turn, err := decodeSingle[Turn](body)
	if err != nil {
		return Turn{}, err
	}
	if err := turn.Validate(); err != nil {
		return Turn{}, errors.Wrap(err, "malformed turn record")
	}

	log.Debug().Str("turn_id", turn.ID).Msg("updated turn content")
	return turn, nil
}

// do performs a single store request and returns the raw response body.
// Write requests ask the store to echo the resulting representation back.
func (r *RESTClient) do(ctx context.Context, method string, path string, query url.Values, payload interface{}) ([]byte, error) {
	u := r.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request payload")
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s %s request", method, path)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "store request %s %s failed", method, path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read store response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("store returned status %d for %s %s: %s",
			resp.StatusCode, method, path, truncate(string(body), 200))
	}

	return body, nil
}

// decodeSingle unwraps the single-record array the store returns for writes
// performed with return=representation.
func decodeSingle[T any](body []byte) (T, error) {
	var zero T
	var records []T
	if err := json.Unmarshal(body, &records); err != nil {
		return zero, errors.Wrap(err, "failed to decode store response")
	}
	if len(records) == 0 {
		return zero, errors.New("store returned no record")
	}
	return records[0], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
