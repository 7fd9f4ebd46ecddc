package controller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/identity"
)

// BusyScopeStartup is the scope on the loading-indicator events around
// startup reconciliation.
const BusyScopeStartup = "startup"

// cleanupTimeout bounds the best-effort guest cleanup on shutdown so it
// cannot block teardown.
const cleanupTimeout = 2 * time.Second

// Startup performs the load-time reconciliation. Guests get the reduced
// interface and skip all session-directory interaction. Authenticated
// users get a loading indicator while the backend rebuilds its retrieval
// state (best-effort — failure is logged, not surfaced) and a fresh
// session list.
func (c *Controller) Startup(ctx context.Context) error {
	if c.id.IsGuest() {
		c.pub.PublishBlind(events.NewGuestMode())
		return nil
	}

	c.pub.PublishBlind(events.NewBusy(BusyScopeStartup, true))
	defer c.pub.PublishBlind(events.NewBusy(BusyScopeStartup, false))

	if err := c.client.ReloadChains(ctx); err != nil {
		log.Warn().Err(err).Msg("chain reload failed")
	}

	c.refreshSessions(ctx)
	return nil
}

// Shutdown is the page-unload hook. For guests it dispatches the
// fire-and-forget cleanup beacon under a short deadline; every outcome is
// downgraded to a log line. No-op for authenticated users.
func (c *Controller) Shutdown() {
	if !c.id.IsGuest() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := c.client.CleanupGuest(ctx, c.id.GuestID); err != nil {
		log.Debug().Err(err).Msg("guest cleanup failed")
	}
}

// Logout ends the server session and tells the frontend to navigate home.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.client.Logout(ctx); err != nil {
		return err
	}
	c.pub.PublishBlind(events.NewNavigate("/"))
	return nil
}

// LoginRedirect is the guest's primary action: clear the guest flag so the
// next load resolves as authenticated, then navigate to the login page.
func (c *Controller) LoginRedirect() {
	identity.ClearGuest(c.store)
	c.pub.PublishBlind(events.NewNavigate("/login"))
}
