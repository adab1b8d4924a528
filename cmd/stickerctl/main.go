package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/freewebtopdf/sticker-certifier/internal/pack"
	"github.com/freewebtopdf/sticker-certifier/internal/policy"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stickerctl",
		Short: "Sticker pack manifest checker",
		Long: `stickerctl checks a contents.json manifest and the sticker assets it
references against the certification policy, the same way the server
does before it publishes a catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return setupLogger(level)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newParseCmd(),
		newValidateCmd(),
		newPolicyCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd, map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stickerctl version %s\n", version)
			return nil
		},
	}
}

func setupLogger(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	return nil
}

// addPolicyFlags registers the flags that select a certification policy
func addPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().String("policy", policy.DefaultVersion, "Built-in policy version (v1, v2)")
	cmd.Flags().String("policy-file", "", "YAML policy file overriding the built-in version")
}

func policyFromFlags(cmd *cobra.Command) (policy.Limits, error) {
	file, _ := cmd.Flags().GetString("policy-file")
	if file != "" {
		return policy.LoadFile(file)
	}
	ver, _ := cmd.Flags().GetString("policy")
	return policy.ForVersion(ver)
}

// manifestPath resolves the optional manifest argument
func manifestPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return pack.ManifestFileName
}
