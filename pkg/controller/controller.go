package controller

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/parley/pkg/backend"
	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/identity"
	"github.com/go-go-golems/parley/pkg/transcript"
)

var (
	// ErrEmptyTitle and ErrEmptyQuestion are local validation failures.
	// Frontends treat them silently: no network call happened, no state
	// changed, there is nothing to report.
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyQuestion = errors.New("empty question")
)

// Controller is the session/state reconciliation core. It owns the current
// session id, the transcript log, and the one identity resolved at
// construction time; every user intent is a method. Rendering happens
// elsewhere — the controller only publishes state events.
type Controller struct {
	client *backend.Client
	store  identity.Store
	id     identity.Identity
	log    *transcript.Log
	state  sessionState
	pub    *events.PublisherManager
}

type Option func(*Controller)

// WithPublisher installs the event publisher renderers subscribe through.
// Without one, state events go nowhere, which is what headless tests want.
func WithPublisher(pub *events.PublisherManager) Option {
	return func(c *Controller) {
		c.pub = pub
	}
}

// New resolves the actor identity from the store (once — identity does not
// change without a full restart) and returns a controller in NoSession
// state with an empty transcript.
func New(client *backend.Client, store identity.Store, options ...Option) *Controller {
	ret := &Controller{
		client: client,
		store:  store,
		id:     identity.Resolve(store),
		log:    transcript.NewLog(),
		pub:    events.NewPublisherManager(),
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

func (c *Controller) Identity() identity.Identity {
	return c.id
}

// CurrentSessionID returns the active session id; ok is false when no
// session is active.
func (c *Controller) CurrentSessionID() (string, bool) {
	return c.state.current()
}

// Transcript exposes the log for export and re-rendering.
func (c *Controller) Transcript() *transcript.Log {
	return c.log
}

// NewChat creates a session with the given title and makes it current,
// resetting the transcript. A trimmed-empty title aborts with no state
// change and no network call.
func (c *Controller) NewChat(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	id, err := c.client.CreateSession(ctx, title)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}

	c.state.begin(id)
	c.log.Reset()
	c.pub.PublishBlind(events.NewSessionChanged(id))
	c.pub.PublishBlind(events.NewTranscriptReplaced(nil))
	c.refreshSessions(ctx)
	return nil
}

// SwitchTo makes id the current session immediately (optimistic), then
// hydrates the transcript from server-side history. The hydration applies
// only if no later transition happened while the fetch was in flight.
func (c *Controller) SwitchTo(ctx context.Context, id string) error {
	gen := c.state.begin(id)
	c.pub.PublishBlind(events.NewSessionChanged(id))

	entries, err := c.client.History(ctx, id)
	if err != nil {
		return errors.Wrapf(err, "loading history for session %s", id)
	}

	applied := c.state.ifCurrent(gen, func() {
		c.log.Replace(entries)
	})
	if applied {
		c.pub.PublishBlind(events.NewTranscriptReplaced(entries))
	} else {
		log.Debug().Str("session_id", id).Msg("dropping stale history completion")
	}

	c.refreshSessions(ctx)
	return nil
}

// Delete removes a session from the directory. Deleting the active session
// always resets local state to NoSession with an empty transcript, even
// when the server reports failure — long-standing frontend behavior that
// callers and tests rely on.
func (c *Controller) Delete(ctx context.Context, id string) error {
	delErr := c.client.DeleteSession(ctx, id)

	if current, ok := c.state.current(); ok && current == id {
		c.state.begin("")
		c.log.Reset()
		c.pub.PublishBlind(events.NewSessionChanged(""))
		c.pub.PublishBlind(events.NewTranscriptReplaced(nil))
	}

	c.refreshSessions(ctx)

	if delErr != nil {
		return errors.Wrapf(delErr, "deleting session %s", id)
	}
	return nil
}

// Rename updates a session's title. Directory metadata only: the current
// session id and the transcript are untouched.
func (c *Controller) Rename(ctx context.Context, id string, title string) error {
	if err := c.client.RenameSession(ctx, id, title); err != nil {
		return errors.Wrapf(err, "renaming session %s", id)
	}
	c.refreshSessions(ctx)
	return nil
}

// refreshSessions refetches the directory wholesale — never locally patched
// — and publishes it with the active id for highlight. An unavailable
// directory keeps whatever the renderer last showed.
func (c *Controller) refreshSessions(ctx context.Context) {
	sessions, err := c.client.ListSessions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("session directory refresh failed")
		return
	}
	active, _ := c.state.current()
	c.pub.PublishBlind(events.NewSessionList(sessions, active))
}
