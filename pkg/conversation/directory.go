package conversation

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/converso/pkg/store"
)

// Directory maintains the list of known sessions and the currently selected
// session id, delegating persistence to the store gateway and sequence
// loading to the manager.
type Directory struct {
	mu sync.Mutex

	store    store.Client
	manager  Manager
	sessions []store.Session
	activeID string
}

var _ SessionCreator = (*Directory)(nil)

func NewDirectory(storeClient store.Client, manager Manager) *Directory {
	return &Directory{
		store:   storeClient,
		manager: manager,
	}
}

// ListSessions refreshes the session list, ordered by creation time
// descending. On failure the previous list is kept: stale-but-consistent
// beats empty-but-wrong.
func (d *Directory) ListSessions(ctx context.Context) ([]store.Session, error) {
	sessions, err := d.store.ListSessions(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrLoad, "listing sessions: %v", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions = sessions
	return d.copySessions(), nil
}

// CreateSession persists a new session, prepends it to the list and makes it
// the selected session. The turn sequence of a fresh session is empty, so no
// load is triggered.
func (d *Directory) CreateSession(ctx context.Context, title string) (store.Session, error) {
	session, err := d.store.CreateSession(ctx, title)
	if err != nil {
		return store.Session{}, errors.Wrapf(ErrCreate, "title %q: %v", title, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions = append([]store.Session{session}, d.sessions...)
	d.activeID = session.ID
	log.Debug().Str("session_id", session.ID).Str("title", title).Msg("session created")
	return session, nil
}

// SelectSession moves the active session reference and reloads the manager's
// turn sequence. An empty id deselects and clears the manager.
func (d *Directory) SelectSession(ctx context.Context, sessionID string) error {
	d.mu.Lock()
	d.activeID = sessionID
	d.mu.Unlock()

	if sessionID == "" {
		d.manager.ClearSession()
		return nil
	}
	return d.manager.LoadSession(ctx, sessionID)
}

// Sessions returns a copy of the known session list.
func (d *Directory) Sessions() []store.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.copySessions()
}

// ActiveID returns the selected session id, if any.
func (d *Directory) ActiveID() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeID, d.activeID != ""
}

func (d *Directory) copySessions() []store.Session {
	ret := make([]store.Session, len(d.sessions))
	copy(ret, d.sessions)
	return ret
}
