package model

import "github.com/google/uuid"

// Chapter is a named, ordered collection of images destined for a single
// output artifact. Name doubles as the output filename stem.
type Chapter struct {
	ID           string
	Name         string
	Images       []*Image
	IsProcessing bool
}

func NewChapter(name string, images []*Image) *Chapter {
	return &Chapter{
		ID:     uuid.NewString(),
		Name:   name,
		Images: images,
	}
}

// snapshot returns a copy with its own image slice. The image pointers are
// shared; only the ordering is insulated from later mutation.
func (c *Chapter) snapshot() *Chapter {
	cp := *c
	cp.Images = append([]*Image(nil), c.Images...)
	return &cp
}

func (c *Chapter) indexOfImage(imageID string) int {
	for i, img := range c.Images {
		if img.ID == imageID {
			return i
		}
	}
	return -1
}
