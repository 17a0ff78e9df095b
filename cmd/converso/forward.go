package main

import (
	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/converso/pkg/events"
)

// chatForwardFunc turns chat lifecycle events from the router into bubbletea
// messages for the given program.
func chatForwardFunc(p *tea.Program) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		msg.Ack()

		e, err := events.NewEventFromJSON(msg.Payload)
		if err != nil {
			return errors.Wrap(err, "failed to decode chat event")
		}

		switch e_ := e.(type) {
		case *events.EventStart:
			p.Send(completionStartedMsg{})

		case *events.EventFinal:
			if e_.Fallback {
				log.Debug().Str("session_id", e_.Metadata().SessionID).Msg("completion fell back to degraded reply")
			}
			p.Send(completionDoneMsg{Fallback: e_.Fallback})

		case *events.EventTurnAppended:
			p.Send(refreshMessagesMsg{GoToBottom: true})

		case *events.EventSessionSwitched:
			p.Send(refreshMessagesMsg{GoToBottom: true})

		case *events.EventError:
			// operation errors surface through the command result; the event
			// stream only traces them
			log.Debug().Str("error", e_.ErrorString).Msg("chat operation reported an error")
		}

		return nil
	}
}
