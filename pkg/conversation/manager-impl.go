package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/converso/pkg/completion"
	"github.com/go-go-golems/converso/pkg/events"
	"github.com/go-go-golems/converso/pkg/store"
)

// FallbackCompletion is the reply substituted whenever the completion
// service fails. The assistant turn is always produced; a degraded reply
// beats a stuck conversation.
const FallbackCompletion = "Sorry, I encountered an error while processing your request."

// DefaultSessionTitle is the title given to sessions created implicitly by
// sending a message without an active session.
const DefaultSessionTitle = "New Chat"

type ManagerImpl struct {
	// mu serializes all operations. A session switch therefore blocks until
	// an in-flight submission commits, so a completion can never be appended
	// to a session it was not requested for.
	mu sync.Mutex

	store     store.Client
	completer completion.Completer
	sessions  SessionCreator
	sinks     []events.Sink

	activeID string
	turns    []store.Turn
	fallback string
}

var _ Manager = (*ManagerImpl)(nil)

type ManagerOption func(*ManagerImpl)

// WithSessionCreator lets SendUserMessage create a session when none is
// active. Without one, sending into the void is an error.
func WithSessionCreator(sc SessionCreator) ManagerOption {
	return func(m *ManagerImpl) {
		m.sessions = sc
	}
}

func WithEventSinks(sinks ...events.Sink) ManagerOption {
	return func(m *ManagerImpl) {
		m.sinks = append(m.sinks, sinks...)
	}
}

func WithFallback(text string) ManagerOption {
	return func(m *ManagerImpl) {
		m.fallback = text
	}
}

func NewManager(storeClient store.Client, completer completion.Completer, options ...ManagerOption) *ManagerImpl {
	ret := &ManagerImpl{
		store:     storeClient,
		completer: completer,
		fallback:  FallbackCompletion,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// SetSessionCreator binds the directory after construction; the directory
// itself needs the manager to exist first.
func (m *ManagerImpl) SetSessionCreator(sc SessionCreator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = sc
}

func (m *ManagerImpl) LoadSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns, err := m.store.ListTurns(ctx, sessionID)
	if err != nil {
		// never leave a stale or partial sequence behind
		m.activeID = sessionID
		m.turns = nil
		m.publishBlind(events.NewErrorEvent(m.eventMetadata(), err))
		return errors.Wrapf(ErrLoad, "session %s: %v", sessionID, err)
	}

	m.activeID = sessionID
	m.turns = turns
	log.Debug().Str("session_id", sessionID).Int("turn_count", len(turns)).Msg("loaded session")
	m.publishBlind(events.NewSessionSwitchedEvent(m.eventMetadata(), len(turns)))
	return nil
}

func (m *ManagerImpl) ClearSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeID = ""
	m.turns = nil
	m.publishBlind(events.NewSessionSwitchedEvent(m.eventMetadata(), 0))
}

func (m *ManagerImpl) SendUserMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID == "" {
		if err := m.createSession(ctx); err != nil {
			return err
		}
	}

	userTurn, err := m.store.CreateTurn(ctx, m.activeID, store.RoleUser, text)
	if err != nil {
		// abort before touching memory: no ghost messages
		m.publishBlind(events.NewErrorEvent(m.eventMetadata(), err))
		return errors.Wrapf(ErrSend, "persisting user turn: %v", err)
	}
	m.appendTurn(userTurn)

	reply, fallback := m.complete(ctx, text)

	assistantTurn, err := m.store.CreateTurn(ctx, m.activeID, store.RoleAssistant, reply)
	if err != nil {
		// the user turn already committed and stays; the conversation is
		// valid and resumable, not rolled back
		m.publishBlind(events.NewErrorEvent(m.eventMetadata(), err))
		return errors.Wrapf(ErrSend, "persisting assistant turn: %v", err)
	}
	m.appendTurn(assistantTurn)

	log.Debug().
		Str("session_id", m.activeID).
		Bool("fallback", fallback).
		Int("turn_count", len(m.turns)).
		Msg("message exchange committed")
	return nil
}

func (m *ManagerImpl) EditUserMessage(ctx context.Context, turnID string, newContent string) error {
	if strings.TrimSpace(newContent) == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, t := range m.turns {
		if t.ID == turnID {
			if t.Role != store.RoleUser {
				log.Debug().Str("turn_id", turnID).Str("role", string(t.Role)).Msg("refusing to edit non-user turn")
				return nil
			}
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	updated, err := m.store.UpdateTurnContent(ctx, turnID, newContent)
	if err != nil {
		// memory keeps the prior value; no partial mutation
		m.publishBlind(events.NewErrorEvent(m.eventMetadata(), err))
		return errors.Wrapf(ErrUpdate, "turn %s: %v", turnID, err)
	}

	m.turns[idx].Content = updated.Content
	log.Debug().Str("turn_id", turnID).Msg("edited user turn")
	return nil
}

func (m *ManagerImpl) Turns() []store.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	ret := make([]store.Turn, len(m.turns))
	copy(ret, m.turns)
	return ret
}

func (m *ManagerImpl) ActiveSession() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID, m.activeID != ""
}

// createSession delegates to the session creator; the new session becomes
// the active one. Called with mu held.
func (m *ManagerImpl) createSession(ctx context.Context) error {
	if m.sessions == nil {
		return errors.Wrap(ErrSend, "no active session and no session creator configured")
	}

	session, err := m.sessions.CreateSession(ctx, DefaultSessionTitle)
	if err != nil {
		m.publishBlind(events.NewErrorEvent(m.eventMetadata(), err))
		return errors.Wrapf(ErrSend, "creating session: %v", err)
	}

	m.activeID = session.ID
	m.turns = nil
	log.Debug().Str("session_id", session.ID).Msg("created session for pending message")
	m.publishBlind(events.NewSessionSwitchedEvent(m.eventMetadata(), 0))
	return nil
}

// complete asks the completion service for a reply to the latest user text.
// The conversation history is deliberately not included. Any failure is
// converted into the fallback reply and never surfaced. Called with mu held.
func (m *ManagerImpl) complete(ctx context.Context, prompt string) (string, bool) {
	meta := m.eventMetadata()
	m.publishBlind(events.NewStartEvent(meta, prompt))

	reply, err := m.completer.Complete(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("session_id", m.activeID).Msg("completion failed, substituting fallback reply")
		m.publishBlind(events.NewFinalEvent(meta, m.fallback, true))
		return m.fallback, true
	}

	m.publishBlind(events.NewFinalEvent(meta, reply, false))
	return reply, false
}

// appendTurn appends a store-acknowledged turn to the sequence. Called with
// mu held.
func (m *ManagerImpl) appendTurn(t store.Turn) {
	m.turns = append(m.turns, t)
	m.publishBlind(events.NewTurnAppendedEvent(m.eventMetadata(), t.ID, string(t.Role), t.Content))
}

func (m *ManagerImpl) eventMetadata() events.EventMetadata {
	return events.EventMetadata{
		ID:        uuid.New(),
		SessionID: m.activeID,
	}
}

func (m *ManagerImpl) publishBlind(e events.Event) {
	for _, sink := range m.sinks {
		if err := sink.PublishEvent(e); err != nil {
			log.Warn().Err(err).Str("event_type", string(e.Type())).Msg("failed to publish event to sink")
		}
	}
}
