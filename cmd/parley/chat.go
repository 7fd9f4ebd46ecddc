package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-go-golems/parley/pkg/backend"
	"github.com/go-go-golems/parley/pkg/controller"
	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/identity"
)

func newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat session against the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context())
		},
	}
}

func runChat(ctx context.Context) error {
	store := identity.NewMemoryStore()
	if viper.GetBool("guest") {
		identity.MarkGuest(store)
	}

	pub, sub := events.NewGoChannelBus()
	client := backend.NewClient(viper.GetString("server"))
	ctrl := controller.New(client, store, controller.WithPublisher(pub))

	renderCtx, stopRender := context.WithCancel(ctx)
	defer stopRender()
	if err := startRenderer(renderCtx, sub); err != nil {
		return err
	}

	if err := ctrl.Startup(ctx); err != nil {
		return err
	}
	defer ctrl.Shutdown()

	fmt.Println("Type a question, or /help for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return nil
		}
		if err := dispatch(ctx, ctrl, line); err != nil {
			if errors.Is(err, controller.ErrEmptyQuestion) || errors.Is(err, controller.ErrEmptyTitle) {
				continue // local validation is silent
			}
			fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
		}
	}
}

// dispatch maps one input line to one user intent on the controller.
func dispatch(ctx context.Context, ctrl *controller.Controller, line string) error {
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		_, err := ctrl.Ask(ctx, line)
		return err
	}

	cmd, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		printHelp()
		return nil
	case "new":
		title := rest
		if title == "" {
			// Same default the web frontend offers in its prompt.
			title = fmt.Sprintf("Chat-%s", time.Now().Format("1/2/2006"))
		}
		return ctrl.NewChat(ctx, title)
	case "switch":
		return ctrl.SwitchTo(ctx, rest)
	case "rename":
		id, title, ok := strings.Cut(rest, " ")
		if !ok {
			return errors.New("usage: /rename <id> <title>")
		}
		return ctrl.Rename(ctx, id, strings.TrimSpace(title))
	case "delete":
		return ctrl.Delete(ctx, rest)
	case "upload":
		return uploadPaths(ctx, ctrl, strings.Fields(rest))
	case "export":
		return exportTranscript(ctx, ctrl, rest)
	case "login":
		ctrl.LoginRedirect()
		return nil
	case "logout":
		return ctrl.Logout(ctx)
	default:
		return errors.Errorf("unknown command /%s", cmd)
	}
}

func uploadPaths(ctx context.Context, ctrl *controller.Controller, paths []string) error {
	if len(paths) == 0 {
		return errors.New("usage: /upload <file> [file...]")
	}

	files := make([]backend.UploadFile, 0, len(paths))
	handles := make([]*os.File, 0, len(paths))
	defer func() {
		for _, f := range handles {
			_ = f.Close()
		}
	}()

	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return errors.Wrapf(err, "opening %s", p)
		}
		handles = append(handles, f)
		files = append(files, backend.UploadFile{Name: filepath.Base(p), Content: f})
	}

	return ctrl.Upload(ctx, files)
}

func exportTranscript(ctx context.Context, ctrl *controller.Controller, dir string) error {
	var buf strings.Builder
	name, err := ctrl.Export(ctx, &buf)
	if err != nil {
		return err
	}

	path := name
	if dir != "" {
		path = filepath.Join(dir, name)
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return errors.Wrap(err, "writing transcript")
	}
	fmt.Printf("Saved transcript to %s\n", path)
	return nil
}

func printHelp() {
	fmt.Print(`Commands:
  /new [title]            start a new chat (default title Chat-M/D/YYYY)
  /switch <id>            switch to a session and load its history
  /rename <id> <title>    rename a session
  /delete <id>            delete a session
  /upload <file>...       upload files into the current session
  /export [dir]           save the transcript as text
  /login                  leave guest mode and head to authentication
  /logout                 end the server session
  /quit                   exit
Anything else is sent as a question.
`)
}
