package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/batch"
)

func newImportCmd() *cobra.Command {
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a pending handoff record from the shared namespace and export it",
		Long:  "Reads the chapter left under the deksmo_pdf_import key by a sibling\nprocess, removes the key so a reload cannot re-import it, and exports\nthe chapter.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline(cmd)
			if err != nil {
				return err
			}
			defer p.close()

			kv := batch.NewRedisKV(redisAddr)
			defer kv.Close()

			chapter, err := batch.ImportPending(cmd.Context(), kv, p.store)
			if err != nil {
				return err
			}
			if chapter == nil {
				internal.InfoLog("No pending handoff record")
				return ErrNoChapters
			}

			return p.exportAll(cmd)
		},
	}

	cmd.Flags().StringVar(&redisAddr, "redis", envOr("DEKSMO_REDIS_ADDR", "localhost:6379"), "Address of the shared redis namespace")
	return cmd
}
