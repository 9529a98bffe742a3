// Package ingest turns a flat stream of image sources into chapters grouped
// by their parent folder.
package ingest

import (
	"path"
	"sort"
	"strings"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/model"
	"github.com/deksmo/deksmo/internal/naturalsort"
)

// LooseImagesKey is the chapter name for sources without a path prefix.
const LooseImagesKey = "Loose Images"

// AdvisoryByteCap is the advisory per-image size limit. Bigger images are
// ingested anyway but logged.
const AdvisoryByteCap = 10 << 20

// Source is one candidate image handed to the ingestor. Exactly one of Data,
// URL or Path carries the payload; RelativePath is the forward-slash path
// inside the imported tree, when known.
type Source struct {
	Name         string
	RelativePath string
	Data         []byte
	MIME         string
	URL          string
	Path         string
	Size         int64
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

var imageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Accepts reports whether a source looks like a supported image, by
// extension or by declared MIME type.
func Accepts(s Source) bool {
	if imageExts[strings.ToLower(path.Ext(s.Name))] {
		return true
	}
	return imageMIMEs[s.MIME]
}

// Ingest groups sources into chapters keyed by the second-to-last segment of
// their relative path ("Loose Images" when there is none), sorts the images
// of each chapter in natural order by name and returns the chapters sorted
// in natural order by key. No image bytes are decoded here.
func Ingest(sources []Source) []*model.Chapter {
	groups := make(map[string][]*model.Image)
	for _, src := range sources {
		if !Accepts(src) {
			internal.DebugLog("Skipping non-image source: %s", src.Name)
			continue
		}
		if src.Size > AdvisoryByteCap {
			internal.WarningLog("Image %s is %d bytes, above the advisory 10 MiB cap", src.Name, src.Size)
		}
		key := folderKey(src.RelativePath)
		groups[key] = append(groups[key], model.NewImage(src.Name, handleOf(src), src.Size))
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	naturalsort.Strings(keys)

	chapters := make([]*model.Chapter, 0, len(keys))
	for _, key := range keys {
		images := groups[key]
		sort.SliceStable(images, func(i, j int) bool {
			return naturalsort.Less(images[i].Name, images[j].Name)
		})
		chapters = append(chapters, model.NewChapter(key, images))
	}
	return chapters
}

// folderKey picks the second-to-last path segment: "a/b/name.ext" belongs to
// chapter "b".
func folderKey(relativePath string) string {
	parts := strings.Split(strings.Trim(relativePath, "/"), "/")
	if len(parts) < 2 {
		return LooseImagesKey
	}
	key := parts[len(parts)-2]
	if key == "" {
		return LooseImagesKey
	}
	return key
}

func handleOf(src Source) model.Source {
	switch {
	case src.URL != "":
		return model.URLSource(src.URL)
	case src.Path != "":
		return model.PathSource(src.Path)
	default:
		return model.BytesSource(src.Data, src.MIME)
	}
}
