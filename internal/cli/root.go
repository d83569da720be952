package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes. NeedsReview is distinct so CI can gate merges on the
// review conclusion alone.
const (
	ExitSuccess      = 0
	ExitNeedsReview  = 1
	ExitUsageError   = 2
	ExitRuntimeError = 3
)

var (
	flagConfigPath string
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "mergevet",
	Short: "Automated merge-risk triage for code changes",
	Long: "Mergevet reviews a set of code changes with static pattern detection\n" +
		"and an LLM reviewer, and decides whether the change is safe to merge\n" +
		"without human review.",
	SilenceUsage: true,
}

// exitCode is set by command handlers to control the process exit
// code.
var exitCode = ExitSuccess

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file path (default: .mergevet.yaml in the repo root)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		if exitCode == ExitSuccess {
			return ExitUsageError
		}
	}
	return exitCode
}

// loggerContext returns the base context carrying the configured
// logger.
func loggerContext() context.Context {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return clog.WithLogger(context.Background(), clog.New(handler))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print mergevet version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "mergevet version %s\n", version)
	},
}
