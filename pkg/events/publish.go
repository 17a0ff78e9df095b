package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// Sink receives chat lifecycle events. The conversation manager publishes
// through sinks so that UIs and loggers can observe a session without the
// manager knowing about them.
type Sink interface {
	PublishEvent(e Event) error
}

// PublisherManager distributes events to a set of watermill publishers,
// keyed by the topic each publisher was subscribed with. Outgoing messages
// carry a sequence number in the order Publish handled them.
type PublisherManager struct {
	Publishers     map[string][]message.Publisher
	sequenceNumber uint64
	mutex          sync.Mutex
}

func NewPublisherManager() *PublisherManager {
	return &PublisherManager{
		Publishers: make(map[string][]message.Publisher),
	}
}

var _ Sink = (*PublisherManager)(nil)

func (s *PublisherManager) SubscribePublisher(topic string, pub message.Publisher) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Publishers[topic] = append(s.Publishers[topic], pub)
}

// PublishEvent serializes the event to JSON and distributes it to all
// subscribed publishers across all topics.
func (s *PublisherManager) PublishEvent(e Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), b)
	msg.Metadata.Set("sequence_number", fmt.Sprintf("%d", s.sequenceNumber))
	s.sequenceNumber++

	for topic, pubs := range s.Publishers {
		for _, pub := range pubs {
			if err := pub.Publish(topic, msg); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("failed to publish event")
			}
		}
	}

	return nil
}

// PublishEventBlind publishes and only logs failures.
func (s *PublisherManager) PublishEventBlind(e Event) {
	if err := s.PublishEvent(e); err != nil {
		log.Warn().Err(err).Str("event_type", string(e.Type())).Msg("failed to publish event")
	}
}
