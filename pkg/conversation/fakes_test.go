package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/go-go-golems/converso/pkg/events"
	"github.com/go-go-golems/converso/pkg/store"
)

// fakeStore is an in-memory store.Client with togglable failures.
type fakeStore struct {
	sessions []store.Session
	turns    []store.Turn
	nextID   int

	failListSessions  bool
	failCreateSession bool
	failListTurns     bool
	failCreateUser    bool
	failCreateAssist  bool
	failUpdate        bool
}

var _ store.Client = (*fakeStore)(nil)

func (f *fakeStore) ListSessions(ctx context.Context) ([]store.Session, error) {
	if f.failListSessions {
		return nil, errors.New("store unreachable")
	}
	ret := make([]store.Session, len(f.sessions))
	copy(ret, f.sessions)
	// newest first
	for i, j := 0, len(ret)-1; i < j; i, j = i+1, j-1 {
		ret[i], ret[j] = ret[j], ret[i]
	}
	return ret, nil
}

func (f *fakeStore) CreateSession(ctx context.Context, title string) (store.Session, error) {
	if f.failCreateSession {
		return store.Session{}, errors.New("store unreachable")
	}
	f.nextID++
	session := store.Session{
		ID:        fmt.Sprintf("s%d", f.nextID),
		Title:     title,
		CreatedAt: time.Unix(int64(f.nextID), 0),
	}
	f.sessions = append(f.sessions, session)
	return session, nil
}

func (f *fakeStore) ListTurns(ctx context.Context, sessionID string) ([]store.Turn, error) {
	if f.failListTurns {
		return nil, errors.New("store unreachable")
	}
	var ret []store.Turn
	for _, t := range f.turns {
		if t.SessionID == sessionID {
			ret = append(ret, t)
		}
	}
	return ret, nil
}

func (f *fakeStore) CreateTurn(ctx context.Context, sessionID string, role store.Role, content string) (store.Turn, error) {
	if role == store.RoleUser && f.failCreateUser {
		return store.Turn{}, errors.New("store unreachable")
	}
	if role == store.RoleAssistant && f.failCreateAssist {
		return store.Turn{}, errors.New("store unreachable")
	}
	f.nextID++
	turn := store.Turn{
		ID:        fmt.Sprintf("t%d", f.nextID),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Unix(int64(f.nextID), 0),
	}
	f.turns = append(f.turns, turn)
	return turn, nil
}

func (f *fakeStore) UpdateTurnContent(ctx context.Context, turnID string, content string) (store.Turn, error) {
	if f.failUpdate {
		return store.Turn{}, errors.New("store unreachable")
	}
	for i, t := range f.turns {
		if t.ID == turnID {
			f.turns[i].Content = content
			return f.turns[i], nil
		}
	}
	return store.Turn{}, errors.Errorf("no turn %s", turnID)
}

// fakeCompleter returns a fixed reply or a fixed error.
type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// recordingSink captures published events.
type recordingSink struct {
	published []events.Event
}

var _ events.Sink = (*recordingSink)(nil)

func (r *recordingSink) PublishEvent(e events.Event) error {
	r.published = append(r.published, e)
	return nil
}

func (r *recordingSink) types() []events.EventType {
	var ret []events.EventType
	for _, e := range r.published {
		ret = append(ret, e.Type())
	}
	return ret
}
