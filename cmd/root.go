// Package cmd implements the note-backend command line: serving by default,
// plus healthcheck and version subcommands.
package cmd

import (
	"context"
	"fmt"
	"os"

	infraconfig "github.com/Davis1233798/note/infrastructure/config"
	"github.com/Davis1233798/note/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// serves until SIGINT, SIGTERM or ctx cancellation.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           config.ServiceName,
		Short:         "Serve the note web app and its health endpoint",
		Version:       config.ServiceVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		infraconfig.GetConfigPath(config.DefaultConfigPath),
		"config file (optional; defaults and environment variables cover every setting)",
	)

	rootCmd.AddCommand(newHealthcheckCommand(&cfgFile))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return ExecuteContext(context.Background(), os.Args[1:])
}

// ExecuteContext runs the command line with args and returns the exit code.
func ExecuteContext(ctx context.Context, args []string) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", config.ServiceName, config.ServiceVersion)
		},
	}
}

// loadConfig loads and validates configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}
