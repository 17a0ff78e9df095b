package store

import (
	"time"

	"github.com/pkg/errors"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Session is a persisted chat session record. The id and creation timestamp
// are assigned by the store; only the title is mutable.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Session) Validate() error {
	if s.ID == "" {
		return errors.New("session record missing id")
	}
	return nil
}

// Turn is a single persisted message within a session. Creation timestamps
// are store-assigned and define the total order of turns within a session.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"chat_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (t Turn) Validate() error {
	if t.ID == "" {
		return errors.New("turn record missing id")
	}
	if t.SessionID == "" {
		return errors.Errorf("turn %s missing session id", t.ID)
	}
	if !t.Role.Valid() {
		return errors.Errorf("turn %s has unknown role %q", t.ID, t.Role)
	}
	return nil
}
