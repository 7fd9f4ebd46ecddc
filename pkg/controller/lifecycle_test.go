package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/parley/pkg/backend"
	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/identity"
)

// subscribeEvents attaches to the state topic before any events flow;
// gochannel buffers what is published afterwards.
func subscribeEvents(t *testing.T, sub message.Subscriber) <-chan *message.Message {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	messages, err := sub.Subscribe(ctx, events.Topic)
	require.NoError(t, err)
	return messages
}

func drainEvents(t *testing.T, messages <-chan *message.Message, n int) []events.Event {
	t.Helper()
	collected := make([]events.Event, 0, n)
	for len(collected) < n {
		select {
		case msg := <-messages:
			e, err := events.Parse(msg.Payload)
			require.NoError(t, err)
			msg.Ack()
			collected = append(collected, e)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", len(collected), n)
		}
	}
	return collected
}

func TestStartupGuestSkipsSessionDirectory(t *testing.T) {
	c, rec, done := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	}), true)
	defer done()

	require.NoError(t, c.Startup(context.Background()))
	assert.Empty(t, rec.recorded(), "guest startup makes no backend calls")
}

func TestStartupGuestPresentsReducedInterface(t *testing.T) {
	pub, sub := events.NewGoChannelBus()

	store := identity.NewMemoryStore()
	identity.MarkGuest(store)
	c := New(backend.NewClient("http://127.0.0.1:1"), store, WithPublisher(pub))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := sub.Subscribe(ctx, events.Topic)
	require.NoError(t, err)

	require.NoError(t, c.Startup(context.Background()))

	select {
	case msg := <-messages:
		e, err := events.Parse(msg.Payload)
		require.NoError(t, err)
		msg.Ack()
		assert.Equal(t, events.EventTypeGuestMode, e.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a guest-mode event")
	}
}

func TestStartupAuthenticatedProceedsPastReloadFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/reload_chains", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "reload broke", http.StatusInternalServerError)
	})
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"s-1","title":"First"}]`)
	})
	c, rec, done := newTestController(t, mux, false)
	defer done()

	// Reload failure is logged, never surfaced; the session list still loads.
	require.NoError(t, c.Startup(context.Background()))
	assert.Equal(t, 1, countCalls(rec, "POST /reload_chains"))
	assert.Equal(t, 1, countCalls(rec, "GET /sessions"))
}

func TestStartupBusyIndicatorBrackets(t *testing.T) {
	pub, sub := events.NewGoChannelBus()

	mux := http.NewServeMux()
	mux.HandleFunc("/reload_chains", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(backend.NewClient(srv.URL), identity.NewMemoryStore(), WithPublisher(pub))

	messages := subscribeEvents(t, sub)
	require.NoError(t, c.Startup(context.Background()))

	evts := drainEvents(t, messages, 3)
	assert.Equal(t, events.EventTypeBusy, evts[0].Type)
	assert.True(t, evts[0].Busy)
	assert.Equal(t, BusyScopeStartup, evts[0].Scope)
	assert.Equal(t, events.EventTypeSessionList, evts[1].Type)
	assert.Equal(t, events.EventTypeBusy, evts[2].Type)
	assert.False(t, evts[2].Busy)
}

func TestUploadBusyIndicatorClearsOnFailure(t *testing.T) {
	pub, sub := events.NewGoChannelBus()

	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>boom</html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := identity.NewMemoryStore()
	identity.MarkGuest(store)
	c := New(backend.NewClient(srv.URL), store, WithPublisher(pub))

	messages := subscribeEvents(t, sub)

	files := []backend.UploadFile{{Name: "a.pdf", Content: strings.NewReader("x")}}
	require.Error(t, c.Upload(context.Background(), files))

	evts := drainEvents(t, messages, 2)
	assert.Equal(t, events.EventTypeBusy, evts[0].Type)
	assert.True(t, evts[0].Busy)
	assert.Equal(t, events.EventTypeBusy, evts[1].Type)
	assert.False(t, evts[1].Busy, "busy indicator must clear on the failure path")
}

func TestShutdownGuestSendsCleanupBeacon(t *testing.T) {
	var gotGuestID string
	mux := http.NewServeMux()
	mux.HandleFunc("/cleanup_guest", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotGuestID = payload["guest_id"]
	})
	c, _, done := newTestController(t, mux, true)
	defer done()

	c.Shutdown()
	assert.Equal(t, c.Identity().GuestID, gotGuestID)
}

func TestShutdownAuthenticatedIsNoOp(t *testing.T) {
	c, rec, done := newTestController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	}), false)
	defer done()

	c.Shutdown()
	assert.Empty(t, rec.recorded())
}

func TestShutdownSurvivesUnreachableBackend(t *testing.T) {
	store := identity.NewMemoryStore()
	identity.MarkGuest(store)
	c := New(backend.NewClient("http://127.0.0.1:1"), store)

	// Must not panic or block past its deadline.
	c.Shutdown()
}
