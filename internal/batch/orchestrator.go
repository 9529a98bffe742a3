package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/exports"
	"github.com/deksmo/deksmo/internal/model"
)

// Format selects the output artifact.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatZIP Format = "zip"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatZIP:
		return Format(s), nil
	case "":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown format %q (want pdf or zip)", s)
	}
}

// quiescenceDelay gives the sink time to finish its out-of-band delivery
// before the next chapter starts.
const quiescenceDelay = 500 * time.Millisecond

// Orchestrator runs chapter exports one at a time, never in parallel.
type Orchestrator struct {
	store    *model.Store
	resolver exports.Resolver
	sink     Sink
	bus      *ProgressBus

	// Delay is the inter-chapter quiescence wait; overridable for tests.
	Delay time.Duration
}

func NewOrchestrator(store *model.Store, resolver exports.Resolver, sink Sink, bus *ProgressBus) *Orchestrator {
	return &Orchestrator{
		store:    store,
		resolver: resolver,
		sink:     sink,
		bus:      bus,
		Delay:    quiescenceDelay,
	}
}

// ExportOne assembles a single chapter and delivers the artifact. The
// chapter's processing flag is held for the duration; on failure an error
// event is published and store state is left intact.
func (o *Orchestrator) ExportOne(ctx context.Context, chapterID string, format Format) error {
	if err := o.store.SetProcessing(chapterID, true); err != nil {
		return err
	}
	defer func() {
		if err := o.store.SetProcessing(chapterID, false); err != nil {
			internal.ErrorLog("Failed to clear processing flag: %s", err.Error())
		}
	}()

	// Image list is read lazily, at the start of this chapter's export.
	chapter, ok := o.store.GetChapter(chapterID)
	if !ok {
		return model.ErrChapterNotFound
	}

	data, err := o.assemble(ctx, chapter, format)
	if err != nil {
		o.publishError(chapter, err)
		return err
	}

	filename := fmt.Sprintf("%s.%s", chapter.Name, format)
	if err := o.sink.Deliver(data, filename); err != nil {
		o.publishError(chapter, err)
		return err
	}
	internal.SuccessLog("Delivered %s (%d images)", filename, len(chapter.Images))
	return nil
}

func (o *Orchestrator) assemble(ctx context.Context, chapter *model.Chapter, format Format) ([]byte, error) {
	onProgress := o.bus.pageProgress(chapter.ID, chapter.Name)
	switch format {
	case FormatPDF:
		return exports.NewPDFAssembler(o.resolver, chapter.Name).Assemble(ctx, chapter.Images, onProgress)
	case FormatZIP:
		return exports.NewZipAssembler(o.resolver).Assemble(ctx, chapter.Images, chapter.Name, onProgress)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func (o *Orchestrator) publishError(chapter *model.Chapter, err error) {
	o.bus.Publish(Event{
		Phase:       PhaseError,
		ChapterID:   chapter.ID,
		ChapterName: chapter.Name,
		Err:         err,
	})
}

// ExportAll iterates a snapshot of the chapter reference list in order. A
// failed chapter is logged and the batch continues; cancellation fails the
// current chapter and skips the rest. Returns delivered and failed counts.
func (o *Orchestrator) ExportAll(ctx context.Context, chapters []*model.Chapter, format Format) (delivered, failed int, err error) {
	list := append([]*model.Chapter(nil), chapters...)
	total := len(list)

	for i, chapter := range list {
		o.bus.Publish(Event{
			Phase:       PhaseStarting,
			ChapterID:   chapter.ID,
			ChapterName: chapter.Name,
			Index:       i + 1,
			Total:       total,
			Percent:     0,
		})

		if exportErr := o.ExportOne(ctx, chapter.ID, format); exportErr != nil {
			failed++
			internal.ErrorLog("Chapter %q failed: %s", chapter.Name, exportErr.Error())
			if errors.Is(exportErr, exports.ErrCancelled) {
				return delivered, failed, exportErr
			}
		} else {
			delivered++
		}

		if i < total-1 {
			select {
			case <-time.After(o.Delay):
			case <-ctx.Done():
				return delivered, failed, fmt.Errorf("%w: %v", exports.ErrCancelled, ctx.Err())
			}
		}
	}

	o.bus.Publish(Event{Phase: PhaseComplete})
	return delivered, failed, nil
}
