package exports

import (
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/signintech/gopdf"
	_ "golang.org/x/image/webp"

	"github.com/deksmo/deksmo/internal/model"
)

// jpegQuality matches the resolver's fallback path so converted pages and
// fetched pages look alike.
const jpegQuality = 95

type assemblerState int

const (
	stateEmpty assemblerState = iota
	statePopulating
	stateFinalized
)

// PDFAssembler builds one PDF page per image, sized to the image's native
// pixel dimensions (one pixel per point). Single use.
type PDFAssembler struct {
	resolver Resolver
	title    string
	pdf      *gopdf.GoPdf
	state    assemblerState
}

func NewPDFAssembler(resolver Resolver, title string) *PDFAssembler {
	return &PDFAssembler{
		resolver: resolver,
		title:    title,
	}
}

// Assemble resolves every image in order, appends a page per image and
// returns the finished document. Any resolve failure is fatal: page indexing
// must match the input sequence.
func (a *PDFAssembler) Assemble(ctx context.Context, images []*model.Image, onProgress ProgressFunc) ([]byte, error) {
	if a.state == stateFinalized {
		return nil, ErrFinalized
	}
	if len(images) == 0 {
		return nil, ErrEmptyInput
	}

	for i, img := range images {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		default:
		}

		res, err := a.resolver.Resolve(ctx, img.Source)
		if err != nil {
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				return nil, &DimensionsMissingError{Index: i, Err: err}
			}
			return nil, fmt.Errorf("image %d (%s): %w", i, img.Name, err)
		}
		if res.Width < 1 || res.Height < 1 {
			return nil, &InvalidDimensionsError{Index: i, Width: res.Width, Height: res.Height}
		}

		data := res.Data
		if !isJPEG(data) {
			if data, err = reencodeJPEG(data); err != nil {
				return nil, &DimensionsMissingError{Index: i, Err: err}
			}
		}

		if err := a.addPage(data, res.Width, res.Height); err != nil {
			return nil, fmt.Errorf("image %d (%s): %w", i, img.Name, err)
		}
		img.SetDimensions(res.Width, res.Height)
		emit(onProgress, i+1, len(images))
	}

	out, err := a.pdf.GetBytesPdfReturnErr()
	if err != nil {
		return nil, fmt.Errorf("failed to emit PDF: %w", err)
	}
	a.state = stateFinalized
	return out, nil
}

// addPage starts the document on the first image and appends a page sized to
// the given pixel dimensions. W>H yields a landscape page by construction.
func (a *PDFAssembler) addPage(jpegData []byte, width, height int) error {
	rect := gopdf.Rect{W: float64(width), H: float64(height)}

	if a.state == stateEmpty {
		pdf := &gopdf.GoPdf{}
		pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: rect})
		pdf.SetCompressLevel(flate.DefaultCompression)
		pdf.SetInfo(gopdf.PdfInfo{
			Title:        a.title,
			Producer:     "deksmo",
			CreationDate: time.Now(),
		})
		a.pdf = pdf
		a.state = statePopulating
	}

	holder, err := gopdf.ImageHolderByBytes(jpegData)
	if err != nil {
		return fmt.Errorf("failed to create image holder: %w", err)
	}

	a.pdf.AddPageWithOption(gopdf.PageOption{PageSize: &rect})
	if err := a.pdf.ImageByHolder(holder, 0, 0, &rect); err != nil {
		return fmt.Errorf("failed to place image: %w", err)
	}
	return nil
}

func isJPEG(data []byte) bool {
	return len(data) > 2 && data[0] == 0xff && data[1] == 0xd8
}

// reencodeJPEG converts non-JPEG sources (png, webp, gif) so the embedded
// stream is always JPEG.
func reencodeJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image for conversion: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
