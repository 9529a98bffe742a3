// Package exports builds per-chapter artifacts: a multi-page PDF whose pages
// match each image's native pixel size, or a ZIP archive preserving
// filenames. Assemblers are single-use and report progress per image.
package exports

import (
	"context"

	"github.com/deksmo/deksmo/internal/model"
)

// Resolver produces encoded bytes and pixel dimensions for a source handle.
type Resolver interface {
	Resolve(ctx context.Context, src model.Source) (*model.Resolved, error)
}

// ProgressFunc receives percentages in [0,100], monotone non-decreasing and
// ending at exactly 100 when at least one image succeeded.
type ProgressFunc func(percent int)

func emit(onProgress ProgressFunc, done, total int) {
	if onProgress != nil {
		onProgress(done * 100 / total)
	}
}
