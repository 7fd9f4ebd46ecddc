package controller

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/transcript"
)

// NoResponsePlaceholder is shown when the backend answers with neither an
// answer nor an error field.
const NoResponsePlaceholder = "No response."

// Ask sends a question bound to the current session and appends the
// exchange to the transcript. A trimmed-empty question aborts locally with
// no network call and no append.
//
// Exactly one of three things becomes the recorded answer: the backend's
// answer, its error message, or the fixed placeholder. The exchange is
// appended even for the placeholder, preserving a complete audit trail of
// attempts.
func (c *Controller) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	sessionID, _ := c.state.current()
	resp, err := c.client.Ask(ctx, question, sessionID, c.id.GuestID)
	if err != nil {
		return "", errors.Wrap(err, "asking question")
	}

	answer := resp.Answer
	if answer == "" {
		answer = resp.Error
	}
	if answer == "" {
		answer = NoResponsePlaceholder
	}

	entry := transcript.Entry{Question: question, Answer: answer}
	c.log.Append(entry)
	c.pub.PublishBlind(events.NewEntryAppended(entry))
	return answer, nil
}
