package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/transcript"
)

// startRenderer subscribes to the state topic and prints what changed. The
// controller never prints; this is the only place state becomes output.
func startRenderer(ctx context.Context, sub message.Subscriber) error {
	messages, err := sub.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			e, err := events.Parse(msg.Payload)
			if err != nil {
				log.Warn().Err(err).Msg("dropping unparseable state event")
				msg.Ack()
				continue
			}
			render(e)
			msg.Ack()
		}
	}()
	return nil
}

func render(e events.Event) {
	switch e.Type {
	case events.EventTypeSessionChanged:
		if e.SessionID == "" {
			fmt.Println("— no active session —")
		} else {
			fmt.Printf("— session %s —\n", e.SessionID)
		}
	case events.EventTypeTranscriptReplaced:
		for _, entry := range e.Entries {
			renderEntry(entry)
		}
	case events.EventTypeEntryAppended:
		if e.Entry != nil {
			renderEntry(*e.Entry)
		}
	case events.EventTypeSessionList:
		for _, s := range e.Sessions {
			marker := "  "
			if s.ID == e.ActiveID {
				marker = "* "
			}
			fmt.Printf("%s%s  %s\n", marker, s.ID, s.Title)
		}
	case events.EventTypeBusy:
		if e.Busy {
			fmt.Printf("[%s…]\n", e.Scope)
		}
	case events.EventTypeAlert:
		fmt.Printf("⚠️  %s\n", e.Message)
	case events.EventTypeGuestMode:
		fmt.Println("Guest mode: sessions are temporary, /login to keep them.")
	case events.EventTypeNavigate:
		fmt.Printf("→ %s\n", e.Location)
	}
}

// renderEntry mirrors the web frontend: each non-empty side is shown,
// blank or whitespace-only sides are skipped.
func renderEntry(entry transcript.Entry) {
	if strings.TrimSpace(entry.Question) != "" {
		fmt.Printf("you: %s\n", entry.Question)
	}
	if strings.TrimSpace(entry.Answer) != "" {
		fmt.Printf("bot: %s\n", entry.Answer)
	}
}
