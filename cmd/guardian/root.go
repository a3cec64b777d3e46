package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"guardian/internal/app"
	"guardian/internal/platform/config"
	"guardian/internal/platform/logger"
	"guardian/internal/validation"
	uploadhandler "guardian/internal/validation/handler"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "guardian",
		Short:         "Validate provider records against the medical registry",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
	}
	root.AddCommand(newValidateCmd(), newRegistryCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "validate <file.csv>",
		Short: "Validate a CSV file and print the JSON result envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.Service.ValidateUpload(cmd.Context(), raw)
			if err != nil {
				return err
			}
			if summary {
				return writeJSON(cmd.OutOrStdout(), validation.Summarize(results))
			}
			return writeJSON(cmd.OutOrStdout(), uploadhandler.NewUploadResponse(results))
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print only status counts")
	return cmd
}

func newRegistryCmd() *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the registry truth sources",
	}
	registryCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List identifiers known to the local table and the live registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			for _, id := range a.Local.Identifiers() {
				fmt.Fprintf(out, "%s\tlocal\n", id)
			}
			for _, id := range a.Live.Identifiers() {
				fmt.Fprintf(out, "%s\tlive\n", id)
			}
			return nil
		},
	})
	return registryCmd
}

// buildApp wires the engine for a one-shot run. Logs go to stderr so stdout
// stays machine-readable.
func buildApp(ctx context.Context, stderr io.Writer) (*app.App, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger.NewWithWriter(stderr, cfg.LogLevel), nil)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
