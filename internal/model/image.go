package model

import (
	"fmt"

	"github.com/google/uuid"
)

// SourceKind discriminates the variants of a source handle.
type SourceKind int

const (
	// SourceBytes carries encoded image data with a declared MIME type.
	SourceBytes SourceKind = iota
	// SourceURL is an opaque URL resolved by the image resolver.
	SourceURL
	// SourcePath is a path on the local filesystem, read lazily.
	SourcePath
)

// Source is the tagged variant behind an image: embedded bytes, a URL or a
// local file path. Exactly one variant is populated per Kind.
type Source struct {
	Kind SourceKind
	Data []byte
	MIME string
	Href string
	Path string
}

func BytesSource(data []byte, mime string) Source {
	return Source{Kind: SourceBytes, Data: data, MIME: mime}
}

func URLSource(href string) Source {
	return Source{Kind: SourceURL, Href: href}
}

func PathSource(path string) Source {
	return Source{Kind: SourcePath, Path: path}
}

func (s Source) String() string {
	switch s.Kind {
	case SourceBytes:
		return fmt.Sprintf("bytes[%d]", len(s.Data))
	case SourceURL:
		return s.Href
	default:
		return s.Path
	}
}

// Resolved is the outcome of resolving a source handle: the encoded bytes
// actually produced, the MIME type they carry and the decoded pixel size.
type Resolved struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Image is one page of a chapter. Width and Height stay zero until the
// resolver has decoded the source; once set they never change.
type Image struct {
	ID     string
	Name   string
	Source Source
	Size   int64
	Width  int
	Height int

	release func()
}

func NewImage(name string, src Source, size int64) *Image {
	return &Image{
		ID:     uuid.NewString(),
		Name:   name,
		Source: src,
		Size:   size,
	}
}

// SetDimensions records the decoded pixel size. The first caller wins.
func (img *Image) SetDimensions(w, h int) {
	if img.Width == 0 && img.Height == 0 {
		img.Width = w
		img.Height = h
	}
}

// OnRelease registers a cleanup hook run when the image is removed from its
// chapter or the store is cleared.
func (img *Image) OnRelease(fn func()) {
	img.release = fn
}

func (img *Image) Release() {
	if img.release != nil {
		img.release()
		img.release = nil
	}
}
