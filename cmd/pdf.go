package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/ingest"
)

func newPdfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pdf <input-dir>",
		Short: "Ingest an image tree and export every chapter",
		Long:  "Walks <input-dir>, groups images into chapters by their parent folder,\nsorts pages in natural order and exports one artifact per chapter.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline(cmd)
			if err != nil {
				return err
			}
			defer p.close()

			sources, err := ingest.ScanDir(args[0])
			if err != nil {
				return err
			}

			chapters := ingest.Ingest(sources)
			if len(chapters) == 0 {
				return ErrNoChapters
			}
			p.store.AddChapters(chapters...)
			internal.InfoLog("Ingested %d chapters from %s", len(chapters), args[0])

			return p.exportAll(cmd)
		},
	}
}
