package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

// PublisherManager fans state events out to a set of watermill publishers
// subscribed to Topic, stamping each outgoing message with a sequence
// number in publish order so subscribers can reorder or detect gaps.
type PublisherManager struct {
	publishers     []message.Publisher
	sequenceNumber uint64
	mutex          sync.Mutex
}

func NewPublisherManager() *PublisherManager {
	return &PublisherManager{}
}

// SubscribePublisher registers a publisher; every subsequent event is
// distributed to it.
func (m *PublisherManager) SubscribePublisher(pub message.Publisher) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.publishers = append(m.publishers, pub)
}

// Publish serializes the event to JSON and distributes it to all
// registered publishers.
func (m *PublisherManager) Publish(e Event) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), b)
	msg.Metadata.Set("sequence_number", fmt.Sprintf("%d", m.sequenceNumber))
	m.sequenceNumber++

	for _, pub := range m.publishers {
		if err := pub.Publish(Topic, msg); err != nil {
			log.Warn().Err(err).Str("type", string(e.Type)).Msg("failed to publish state event")
		}
	}
	return nil
}

// PublishBlind publishes and downgrades any error to a log line. State
// transitions must never fail because a renderer went away.
func (m *PublisherManager) PublishBlind(e Event) {
	if err := m.Publish(e); err != nil {
		log.Warn().Err(err).Str("type", string(e.Type)).Msg("failed to publish state event")
	}
}

// NewGoChannelBus wires a PublisherManager to an in-process gochannel
// pub/sub and returns both. The subscriber side is what a renderer reads
// Topic from.
func NewGoChannelBus() (*PublisherManager, message.Subscriber) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NopLogger{})

	manager := NewPublisherManager()
	manager.SubscribePublisher(pubSub)
	return manager, pubSub
}
