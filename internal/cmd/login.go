package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/scribble/internal/config"
)

// RunInteractiveLogin prompts for a model API key and persists it to the
// config, keeping any other settings already there.
func RunInteractiveLogin(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	cfg, err := config.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	fmt.Fprintf(out, "provider [%s]: ", cfg.Provider)
	provider, _ := reader.ReadString('\n')
	if provider = strings.ToLower(strings.TrimSpace(provider)); provider != "" {
		cfg.Provider = provider
	}

	fmt.Fprint(out, "api key: ")
	key, _ := reader.ReadString('\n')
	key = strings.TrimSpace(key)

	if key == "" {
		return fmt.Errorf("api key is required")
	}
	cfg.APIKey = key

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "using %s\n", cfg.Provider)
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// LoginCmd returns the `scribble login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the AI service API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunInteractiveLogin(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
