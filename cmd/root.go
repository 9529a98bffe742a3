// Package cmd wires the deksmo CLI: ingest image folders or grabbed pages
// and export per-chapter PDF or ZIP artifacts.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/exports"
)

// Exit codes per the CLI contract.
const (
	ExitOK             = 0
	ExitNoChapters     = 1
	ExitPartialFailure = 2
	ExitConfigError    = 3
	ExitInterrupted    = 130
)

// ErrNoChapters means ingestion produced nothing to export.
var ErrNoChapters = errors.New("no chapters produced")

// PartialFailureError reports a batch where some chapters failed while
// others were delivered.
type PartialFailureError struct {
	Failed    int
	Delivered int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d of %d chapters failed", e.Failed, e.Failed+e.Delivered)
}

// ExitCode maps a command error to the documented exit codes.
func ExitCode(err error) int {
	var partial *PartialFailureError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNoChapters):
		return ExitNoChapters
	case errors.As(err, &partial):
		return ExitPartialFailure
	case errors.Is(err, exports.ErrCancelled):
		return ExitInterrupted
	default:
		return ExitConfigError
	}
}

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "deksmo",
		Short:         "Package image folders into per-chapter PDF or ZIP artifacts",
		Long:          "Deksmo turns folders of page images into one artifact per chapter:\na PDF whose pages match each image's native pixel size, or a ZIP\narchive preserving filenames.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			level := internal.INFO
			if verbose {
				level = internal.DEBUG
			}
			internal.InitDefaultLogger(level)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("out", envOr("DEKSMO_OUT", "."), "Output directory for artifacts")
	cmd.PersistentFlags().String("format", envOr("DEKSMO_FORMAT", "pdf"), "Artifact format: pdf or zip")

	cmd.AddCommand(newPdfCmd())
	cmd.AddCommand(newGrabCmd())
	cmd.AddCommand(newImportCmd())

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
