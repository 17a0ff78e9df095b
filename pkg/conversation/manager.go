// Package conversation implements the core of the chat client: the manager
// owning the ordered turn sequence of the active session, and the directory
// of known sessions.
//
// The manager keeps one invariant above all others: the in-memory sequence
// only ever contains turns the store has acknowledged. A user turn is
// appended after it persists, an assistant turn is appended after it
// persists, and a failed load clears the sequence instead of leaving it
// stale or partial. Completion failures never stall the conversation; they
// degrade into a fixed fallback reply which is persisted like any other
// assistant turn.
package conversation

import (
	"context"

	"github.com/go-go-golems/converso/pkg/store"
)

// Manager defines the interface for conversation operations on the active
// session.
type Manager interface {
	// LoadSession replaces the in-memory sequence with the persisted turns
	// of the given session, ordered ascending by creation time. On failure
	// the sequence is cleared and ErrLoad is returned.
	LoadSession(ctx context.Context, sessionID string) error
	// ClearSession resets the manager to the no-session state.
	ClearSession()
	// SendUserMessage runs the submission pipeline: persist the user turn,
	// request a completion (falling back to a fixed apology on any
	// completion failure), persist the assistant turn. A blank message is a
	// no-op. If no session is active, one is created first.
	SendUserMessage(ctx context.Context, text string) error
	// EditUserMessage persists new content for a user-authored turn and
	// mirrors it in memory on success. Unknown ids, assistant turns and
	// blank content are no-ops.
	EditUserMessage(ctx context.Context, turnID string, newContent string) error
	// Turns returns a copy of the in-memory sequence.
	Turns() []store.Turn
	// ActiveSession returns the active session id, if any.
	ActiveSession() (string, bool)
}

// SessionCreator creates and activates a new session on the manager's
// behalf when a message is sent without an active session. The Directory
// implements it.
type SessionCreator interface {
	CreateSession(ctx context.Context, title string) (store.Session, error)
}
