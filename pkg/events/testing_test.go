package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
)

// recordingPublisher captures published messages for assertions.
type recordingPublisher struct {
	published []*message.Message
}

func (r *recordingPublisher) Publish(topic string, messages ...*message.Message) error {
	r.published = append(r.published, messages...)
	return nil
}

func (r *recordingPublisher) Close() error {
	return nil
}

var _ message.Publisher = (*recordingPublisher)(nil)
