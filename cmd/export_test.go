package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/deksmo/deksmo/internal/batch"
	"github.com/deksmo/deksmo/internal/exports"
	"github.com/deksmo/deksmo/internal/model"
)

// stubResolver decodes byte sources and fails URL sources, so a chapter is
// made to fail by giving it a URL-sourced image.
type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, src model.Source) (*model.Resolved, error) {
	if src.Kind == model.SourceURL {
		return nil, &exports.ResolveError{Source: src.Href, Err: errors.New("stubbed failure")}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src.Data))
	if err != nil {
		return nil, &exports.DecodeError{Err: err}
	}
	return &model.Resolved{Data: src.Data, MIME: "image/jpeg", Width: cfg.Width, Height: cfg.Height}, nil
}

type discardSink struct{}

func (discardSink) Deliver([]byte, string) error { return nil }

func testPipeline(t *testing.T) *pipeline {
	t.Helper()
	store := model.NewStore()
	o := batch.NewOrchestrator(store, stubResolver{}, discardSink{}, batch.NewProgressBus())
	o.Delay = time.Millisecond
	return &pipeline{
		store:        store,
		orchestrator: o,
		format:       batch.FormatPDF,
	}
}

func testCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func goodChapter(t *testing.T, name string) *model.Chapter {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatal(err)
	}
	return model.NewChapter(name, []*model.Image{
		model.NewImage("page.jpg", model.BytesSource(buf.Bytes(), "image/jpeg"), int64(buf.Len())),
	})
}

func badChapter(name string) *model.Chapter {
	return model.NewChapter(name, []*model.Image{
		model.NewImage("page.jpg", model.URLSource("fail://page.jpg"), 0),
	})
}

func TestExportAllEmptyStore(t *testing.T) {
	p := testPipeline(t)
	if err := p.exportAll(testCommand()); !errors.Is(err, ErrNoChapters) {
		t.Fatalf("err = %v, want ErrNoChapters", err)
	}
}

func TestExportAllMixedOutcome(t *testing.T) {
	p := testPipeline(t)
	p.store.AddChapters(goodChapter(t, "A"), badChapter("B"))

	err := p.exportAll(testCommand())
	var partial *PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialFailureError", err)
	}
	if partial.Failed != 1 || partial.Delivered != 1 {
		t.Fatalf("failed=%d delivered=%d, want 1/1", partial.Failed, partial.Delivered)
	}
}

// Chapters existed and every one of them failed; that is a failed-chapters
// outcome, not an empty one.
func TestExportAllEveryChapterFailed(t *testing.T) {
	p := testPipeline(t)
	p.store.AddChapters(badChapter("A"), badChapter("B"))

	err := p.exportAll(testCommand())
	var partial *PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialFailureError", err)
	}
	if partial.Failed != 2 || partial.Delivered != 0 {
		t.Fatalf("failed=%d delivered=%d, want 2/0", partial.Failed, partial.Delivered)
	}
	if ExitCode(err) != ExitPartialFailure {
		t.Fatalf("exit code = %d, want %d", ExitCode(err), ExitPartialFailure)
	}
}

func TestExportAllSuccess(t *testing.T) {
	p := testPipeline(t)
	p.store.AddChapters(goodChapter(t, "A"))

	if err := p.exportAll(testCommand()); err != nil {
		t.Fatalf("exportAll: %v", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "no chapters", err: ErrNoChapters, want: ExitNoChapters},
		{name: "wrapped no chapters", err: fmt.Errorf("pdf: %w", ErrNoChapters), want: ExitNoChapters},
		{name: "partial failure", err: &PartialFailureError{Failed: 1, Delivered: 2}, want: ExitPartialFailure},
		{name: "cancelled", err: exports.ErrCancelled, want: ExitInterrupted},
		{name: "wrapped cancelled", err: fmt.Errorf("%w: context canceled", exports.ErrCancelled), want: ExitInterrupted},
		{name: "anything else", err: errors.New("boom"), want: ExitConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
