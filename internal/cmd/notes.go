package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/scribble/internal/ai"
	"github.com/gravitrone/scribble/internal/config"
	"github.com/gravitrone/scribble/internal/controller"
)

// untitled is shown for notes with a blank title.
const untitled = "Untitled Note"

// errEmptyNote is returned when the target note has nothing to send.
var errEmptyNote = errors.New("note is empty")

// ListCmd returns the `scribble list` command.
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(s *Session) error {
				out := cmd.OutOrStdout()
				for n := range s.Controller.Notes() {
					title := strings.TrimSpace(n.Title)
					if title == "" {
						title = untitled
					}
					fmt.Fprintf(out, "  %s  %s  (%s)\n", n.ID, title, n.Updated().Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
}

// RunCmd returns the `scribble run` command.
func RunCmd() *cobra.Command {
	names := make([]string, 0, len(ai.Actions()))
	for _, a := range ai.Actions() {
		names = append(names, string(a))
	}

	return &cobra.Command{
		Use:       "run <action> [note-id]",
		Short:     "Run an AI action on a note",
		Long:      "Run an AI action on a note (default: the most recent) and print the new content.\nActions: " + strings.Join(names, ", "),
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := ai.ParseAction(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *Session) error {
				if err := selectTarget(s.Controller, args[1:]); err != nil {
					return err
				}
				if err := s.Controller.RunAIAction(cmd.Context(), action); err != nil {
					return err
				}
				if msg := s.Controller.LastError(); msg != "" {
					return errors.New(msg)
				}
				n, _ := s.Controller.Active()
				fmt.Fprintln(cmd.OutOrStdout(), n.Content)
				return nil
			})
		},
	}
}

// TitleCmd returns the `scribble title` command.
func TitleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "title [note-id]",
		Short: "Generate a title for a note",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *Session) error {
				if err := selectTarget(s.Controller, args); err != nil {
					return err
				}
				if err := s.Controller.AutoTitle(cmd.Context()); err != nil {
					return err
				}
				n, _ := s.Controller.Active()
				fmt.Fprintln(cmd.OutOrStdout(), n.Title)
				return nil
			})
		},
	}
}

// selectTarget makes the note named in args active and checks it has
// content for the model.
func selectTarget(c *controller.Controller, args []string) error {
	if len(args) > 0 {
		if err := c.SelectNote(args[0]); err != nil {
			return err
		}
	}
	n, ok := c.Active()
	if !ok || strings.TrimSpace(n.Content) == "" {
		return errEmptyNote
	}
	return nil
}

// withSession resolves config, opens a session logging to stderr and runs
// fn against it.
func withSession(cmd *cobra.Command, fn func(*Session) error) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}

	level := cfg.Level()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(cmd.ErrOrStderr(), level)

	s, err := OpenSession(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	return fn(s)
}
