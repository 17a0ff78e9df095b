package conversation

import "github.com/pkg/errors"

// Sentinel errors for the conversation operations. Gateway failures are
// caught at this boundary, wrapped with one of these, and never propagated
// raw. Match with errors.Is.
var (
	// ErrLoad covers reading sessions or turns from the store.
	ErrLoad = errors.New("failed to load conversation data")
	// ErrCreate covers session creation.
	ErrCreate = errors.New("failed to create session")
	// ErrSend covers the turn submission pipeline.
	ErrSend = errors.New("failed to send message")
	// ErrUpdate covers editing an existing turn.
	ErrUpdate = errors.New("failed to update message")
)
