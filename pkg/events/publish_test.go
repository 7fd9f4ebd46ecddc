package events

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/parley/pkg/transcript"
)

func TestGoChannelBusDeliversInOrder(t *testing.T) {
	manager, subscriber := NewGoChannelBus()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := subscriber.Subscribe(ctx, Topic)
	require.NoError(t, err)

	manager.PublishBlind(NewSessionChanged("s-1"))
	manager.PublishBlind(NewEntryAppended(transcript.Entry{Question: "q", Answer: "a"}))

	first := receiveEvent(t, messages)
	assert.Equal(t, EventTypeSessionChanged, first.Type)
	assert.Equal(t, "s-1", first.SessionID)

	second := receiveEvent(t, messages)
	assert.Equal(t, EventTypeEntryAppended, second.Type)
	require.NotNil(t, second.Entry)
	assert.Equal(t, "q", second.Entry.Question)
}

func TestSequenceNumbersAreMonotonic(t *testing.T) {
	manager, subscriber := NewGoChannelBus()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := subscriber.Subscribe(ctx, Topic)
	require.NoError(t, err)

	manager.PublishBlind(NewBusy("upload", true))
	manager.PublishBlind(NewBusy("upload", false))

	select {
	case msg := <-messages:
		assert.Equal(t, "0", msg.Metadata.Get("sequence_number"))
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	select {
	case msg := <-messages:
		assert.Equal(t, "1", msg.Metadata.Get("sequence_number"))
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func receiveEvent(t *testing.T, messages <-chan *message.Message) Event {
	t.Helper()
	select {
	case msg := <-messages:
		e, err := Parse(msg.Payload)
		require.NoError(t, err)
		msg.Ack()
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}
