package testutil

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// PublishedMessage is one message captured by the recording publisher.
type PublishedMessage struct {
	Topic   string
	Key     string
	Payload []byte
}

// RecordingPublisher implements pubsub.Publisher and captures every
// published job for assertions.
type RecordingPublisher struct {
	mu       sync.Mutex
	Messages []PublishedMessage
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Messages = append(p.Messages, PublishedMessage{
		Topic:   topic,
		Key:     msg.Metadata.Get("job_key"),
		Payload: msg.Payload,
	})
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}

// ByTopic returns the captured messages for one topic.
func (p *RecordingPublisher) ByTopic(topic string) []PublishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []PublishedMessage
	for _, m := range p.Messages {
		if m.Topic == topic {
			matched = append(matched, m)
		}
	}
	return matched
}
