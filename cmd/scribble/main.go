package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gravitrone/scribble/internal/cmd"
	"github.com/gravitrone/scribble/internal/config"
	"github.com/gravitrone/scribble/internal/ui"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:   "scribble",
		Short: "Scribble - notes with AI assistance",
		Long:  "Scribble: write notes in the terminal and summarize, refine, translate or expand them with an AI model.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(debug)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.ListCmd())
	root.AddCommand(cmd.RunCmd())
	root.AddCommand(cmd.TitleCmd())
	return root
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI(debug bool) error {
	if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
		return fmt.Errorf("scribble needs an interactive terminal; try 'scribble list'")
	}

	cfg, err := config.Resolve()
	if err != nil {
		return err
	}

	logFile, err := openLog(config.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	level := cfg.Level()
	if debug {
		level = slog.LevelDebug
	}
	logger := cmd.NewLogger(logFile, level)

	session, err := cmd.OpenSession(cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	app := ui.NewApp(session.Controller, ui.WithLogger(logger), ui.WithKeyMissing(cfg.APIKey == ""))

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
