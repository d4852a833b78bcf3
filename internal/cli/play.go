package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/config"
	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/infra/file"
	"github.com/spf13/cobra"
)

// NewPlayCmd plays a session in the terminal. The user identifier is kept in
// a local YAML file so repeated runs are tagged as the same player.
func NewPlayCmd(configPath *string) *cobra.Command {
	var questionID, identityFile, location string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Answer a timed quiz question in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			if questionID == "" {
				questionID = cfg.Quiz.DefaultQuestion
			}
			if questionID == "" {
				questionID = "red-planet"
			}
			if identityFile == "" {
				identityFile = cfg.Identity.File
			}
			if identityFile == "" {
				identityFile = defaultIdentityFile()
			}

			service, backends, err := buildService(cmd.Context(), cfg, file.NewIdentityStore(identityFile), nil)
			if err != nil {
				return err
			}
			defer backends.Close()

			return playSession(cmd.Context(), service, app.StartRequest{
				QuestionID: questionID,
				Location:   location,
			}, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&questionID, "question", "", "question ID to play")
	cmd.Flags().StringVar(&identityFile, "identity-file", "", "where the player identifier is stored")
	cmd.Flags().StringVar(&location, "location", "/play", "location reported with the session start")
	return cmd
}

func defaultIdentityFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "daily-quiz", "identity.yaml")
}

// playSession reads commands line by line: an option ID selects it, "s"
// submits, "n" resets for another attempt and "q" quits.
func playSession(ctx context.Context, service *app.QuizService, req app.StartRequest, in io.Reader, out io.Writer) error {
	view, err := service.Start(ctx, req)
	if err != nil {
		return err
	}
	defer service.End(context.Background(), view.SessionID)
	out = &syncWriter{w: out}

	updates, cancel, err := service.Subscribe(ctx, view.SessionID)
	if err != nil {
		return err
	}
	defer cancel()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		last := domain.Phase("")
		for v := range updates {
			// Only phase changes are worth interrupting the prompt for.
			if v.Phase != last {
				renderView(out, v)
				last = v.Phase
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok || line == "q" {
			break
		}

		switch line {
		case "":
			view, err = service.State(ctx, view.SessionID)
		case "s":
			view, err = service.Submit(ctx, view.SessionID)
		case "n":
			view, err = service.Next(ctx, view.SessionID, "")
		default:
			view, err = service.Select(ctx, view.SessionID, line)
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%ds left · selected: %s · %s\n", view.SecondsRemaining, orDash(view.SelectedOptionID), view.HelperText)
	}

	cancel()
	<-printed
	return nil
}

func renderView(out io.Writer, v domain.View) {
	fmt.Fprintf(out, "\n%s\n%s\n", strings.ToUpper(v.Category), v.Prompt)
	for _, opt := range v.Options {
		marker := " "
		if opt.ID == v.SelectedOptionID {
			marker = "*"
		}
		fmt.Fprintf(out, " %s [%s] %s\n", marker, opt.ID, opt.Text)
	}
	fmt.Fprintf(out, "%ds left · %s\n", v.SecondsRemaining, v.HelperText)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// syncWriter serialises writes from the update printer and the prompt loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
