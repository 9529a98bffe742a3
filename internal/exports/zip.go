package exports

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/model"
)

var imageExtPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|webp|gif)$`)

// ZipAssembler packages raw image bytes into an archive with a single
// top-level folder. Unlike the PDF path, a failed image is skipped with a
// warning instead of failing the archive. Single use.
type ZipAssembler struct {
	resolver Resolver
	state    assemblerState
}

func NewZipAssembler(resolver Resolver) *ZipAssembler {
	return &ZipAssembler{resolver: resolver}
}

func (z *ZipAssembler) Assemble(ctx context.Context, images []*model.Image, title string, onProgress ProgressFunc) ([]byte, error) {
	if z.state == stateFinalized {
		return nil, ErrFinalized
	}
	if len(images) == 0 {
		return nil, ErrEmptyInput
	}
	z.state = statePopulating

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]bool)

	for i, img := range images {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		default:
		}

		res, err := z.resolver.Resolve(ctx, img.Source)
		if err != nil {
			internal.WarningLog("Skipping %s: %s", img.Name, err.Error())
			emit(onProgress, i+1, len(images))
			continue
		}
		img.SetDimensions(res.Width, res.Height)

		name := uniqueEntryName(used, entryName(img.Name))
		w, err := zw.Create(title + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(res.Data); err != nil {
			return nil, fmt.Errorf("failed to write zip entry %s: %w", name, err)
		}
		emit(onProgress, i+1, len(images))
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}
	z.state = stateFinalized
	return buf.Bytes(), nil
}

// entryName keeps names that already carry a recognized image extension and
// suffixes ".jpg" onto everything else.
func entryName(name string) string {
	if imageExtPattern.MatchString(name) {
		return name
	}
	return name + ".jpg"
}

// uniqueEntryName resolves collisions by appending _2, _3, ... before the
// extension until the name is free.
func uniqueEntryName(used map[string]bool, name string) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		ext := imageExtPattern.FindString(name)
		stem := strings.TrimSuffix(name, ext)
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
