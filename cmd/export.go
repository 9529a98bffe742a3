package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/batch"
	"github.com/deksmo/deksmo/internal/clients"
	"github.com/deksmo/deksmo/internal/model"
)

// pipeline bundles the collaborators every subcommand needs.
type pipeline struct {
	store        *model.Store
	resolver     *clients.Resolver
	orchestrator *batch.Orchestrator
	bus          *batch.ProgressBus
	format       batch.Format
}

func newPipeline(cmd *cobra.Command) (*pipeline, error) {
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	format, err := batch.ParseFormat(formatFlag)
	if err != nil {
		return nil, err
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return nil, err
	}

	store := model.NewStore()
	helper := clients.NewHelperFetcher(envOr("DEKSMO_FETCH_HELPER", ""))
	var fetcher clients.PrivilegedFetcher
	if helper != nil {
		fetcher = helper
	}
	resolver := clients.NewResolver(clients.DefaultHTTPOptions(), fetcher)

	bus := batch.NewProgressBus()
	bus.Subscribe(logEvents)

	return &pipeline{
		store:        store,
		resolver:     resolver,
		orchestrator: batch.NewOrchestrator(store, resolver, &batch.DirSink{Dir: outDir}, bus),
		bus:          bus,
		format:       format,
	}, nil
}

func (p *pipeline) close() {
	p.resolver.Close()
}

// exportAll runs the batch and maps counts onto the documented exit-code
// errors.
func (p *pipeline) exportAll(cmd *cobra.Command) error {
	chapters := p.store.ListChapters()
	if len(chapters) == 0 {
		return ErrNoChapters
	}

	delivered, failed, err := p.orchestrator.ExportAll(cmd.Context(), chapters, p.format)
	if err != nil {
		return err
	}
	// A batch where every chapter failed is still a failed-chapters outcome,
	// not an empty one.
	if failed > 0 {
		return &PartialFailureError{Failed: failed, Delivered: delivered}
	}
	if delivered == 0 {
		return ErrNoChapters
	}
	return nil
}

func logEvents(ev batch.Event) {
	switch ev.Phase {
	case batch.PhaseStarting:
		internal.InfoLog("Chapter %d/%d: %s", ev.Index, ev.Total, ev.ChapterName)
	case batch.PhaseAssembling:
		internal.DebugLog("%s: %d%%", ev.ChapterName, ev.Percent)
	case batch.PhaseError:
		internal.ErrorLog("%s: %s", ev.ChapterName, ev.Err.Error())
	case batch.PhaseComplete:
		internal.SuccessLog("Batch complete")
	}
}
