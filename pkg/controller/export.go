package controller

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/parley/pkg/transcript"
)

// Export writes the transcript as plain text and returns the file name it
// should be saved under. The session title is resolved through the
// directory on a best-effort basis; guests (whose listing redirects to the
// login page) and network failures fall back to the default name.
func (c *Controller) Export(ctx context.Context, w io.Writer) (string, error) {
	var title string
	if current, ok := c.state.current(); ok {
		sessions, err := c.client.ListSessions(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("no session directory for export, using default name")
		} else {
			for _, s := range sessions {
				if s.ID == current {
					title = s.Title
					break
				}
			}
		}
	}

	name := transcript.ExportFileName(title, time.Now())
	if err := c.log.Export(w); err != nil {
		return "", err
	}
	return name, nil
}
