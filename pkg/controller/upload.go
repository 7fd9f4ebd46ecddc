package controller

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/go-go-golems/parley/pkg/backend"
	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/transcript"
)

// BusyScopeUpload is the scope name on the busy events bracketing a file
// transfer.
const BusyScopeUpload = "upload"

// Upload transfers the given files, binding them to the current session or
// the guest bucket.
//
// Authenticated users without a session get exactly one implicit session
// created first, titled after the first file; if that fails the whole
// upload aborts before any transfer. Guests acquire their session id
// lazily from the upload response. On success one notice entry is appended
// per file; on failure the transcript is untouched.
func (c *Controller) Upload(ctx context.Context, files []backend.UploadFile) error {
	if len(files) == 0 {
		return nil
	}

	sessionID, hasSession := c.state.current()
	if !c.id.IsGuest() && !hasSession {
		title := fmt.Sprintf("Chat-(%s)", transcript.SanitizeFileName(files[0].Name))
		newID, err := c.client.CreateSession(ctx, title)
		if err != nil {
			return errors.Wrap(err, "creating session for upload")
		}
		sessionID = newID
		c.state.begin(newID)
		c.pub.PublishBlind(events.NewSessionChanged(newID))
		c.refreshSessions(ctx)
	}

	scope := backend.UploadScope{SessionID: sessionID}
	if c.id.IsGuest() {
		scope = backend.UploadScope{GuestID: c.id.GuestID}
	}

	c.pub.PublishBlind(events.NewBusy(BusyScopeUpload, true))
	defer c.pub.PublishBlind(events.NewBusy(BusyScopeUpload, false))

	result, err := c.client.Upload(ctx, files, scope)
	if err != nil {
		return errors.Wrap(err, "uploading files")
	}

	if c.id.IsGuest() && result.SessionID != "" {
		c.state.begin(result.SessionID)
		c.pub.PublishBlind(events.NewSessionChanged(result.SessionID))
	}

	for _, f := range files {
		entry := transcript.NewNotice(transcript.SanitizeFileName(f.Name))
		c.log.Append(entry)
		c.pub.PublishBlind(events.NewEntryAppended(entry))
	}
	return nil
}
