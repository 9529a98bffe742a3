// Package batch drives sequential export of chapters to PDF or ZIP, with
// progress events, partial-failure handling and sink delivery.
package batch

import "sync"

// Phase tags a progress event.
type Phase string

const (
	PhaseStarting   Phase = "starting"
	PhaseAssembling Phase = "assembling"
	PhaseComplete   Phase = "complete"
	PhaseError      Phase = "error"
)

// Event is what subscribers see. Fields beyond Phase are populated per
// phase: starting carries Index/Total and resets Percent to 0, assembling
// carries Percent, error carries Err.
type Event struct {
	Phase       Phase
	ChapterID   string
	ChapterName string
	Index       int
	Total       int
	Percent     int
	Err         error
}

// ProgressBus fans events out to subscribers, synchronously on the
// emitter's goroutine. No buffering.
type ProgressBus struct {
	mu   sync.Mutex
	subs []func(Event)
}

func NewProgressBus() *ProgressBus {
	return &ProgressBus{}
}

func (b *ProgressBus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *ProgressBus) Publish(ev Event) {
	b.mu.Lock()
	subs := append(([]func(Event))(nil), b.subs...)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// pageProgress adapts an assembler's percent callback into assembling events
// annotated with the active chapter.
func (b *ProgressBus) pageProgress(chapterID, chapterName string) func(int) {
	return func(percent int) {
		b.Publish(Event{
			Phase:       PhaseAssembling,
			ChapterID:   chapterID,
			ChapterName: chapterName,
			Percent:     percent,
		})
	}
}
