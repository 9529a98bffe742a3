package clients

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/patrickmn/go-cache"
	_ "golang.org/x/image/webp"
	"resty.dev/v3"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/exports"
	"github.com/deksmo/deksmo/internal/model"
)

// fallbackJPEGQuality matches the canvas re-encode of the original direct
// path: JPEG at quality 0.95.
const fallbackJPEGQuality = 95

// Resolver turns source handles into encoded bytes plus pixel dimensions.
// URL handles go through the privileged helper first and fall back to a
// direct fetch that normalizes the payload to JPEG. Resolved URLs are cached
// so an ingest-time prefetch pays for the export pass.
type Resolver struct {
	client *resty.Client
	helper PrivilegedFetcher
	cache  *cache.Cache
}

func NewResolver(opts *HTTPOptions, helper PrivilegedFetcher) *Resolver {
	return &Resolver{
		client: newHTTPClient(opts),
		helper: helper,
		cache:  cache.New(10*time.Minute, 15*time.Minute),
	}
}

func (r *Resolver) Close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}

// Resolve dispatches on the handle's variant. The returned dimensions are
// decoded from the exact byte stream in Resolved.Data.
func (r *Resolver) Resolve(ctx context.Context, src model.Source) (*model.Resolved, error) {
	switch src.Kind {
	case model.SourceBytes:
		return resolveBytes(src.Data, src.MIME)
	case model.SourcePath:
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, &exports.ResolveError{Source: src.Path, Err: err}
		}
		return resolveBytes(data, src.MIME)
	case model.SourceURL:
		return r.resolveURL(ctx, src.Href)
	default:
		return nil, &exports.ResolveError{Source: src.String(), Err: fmt.Errorf("unknown source kind %d", src.Kind)}
	}
}

func resolveBytes(data []byte, declaredMIME string) (*model.Resolved, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &exports.DecodeError{Err: err}
	}
	mime := declaredMIME
	if mime == "" {
		mime = "image/" + format
	}
	return &model.Resolved{
		Data:   data,
		MIME:   mime,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func (r *Resolver) resolveURL(ctx context.Context, href string) (*model.Resolved, error) {
	if hit, ok := r.cache.Get(href); ok {
		return hit.(*model.Resolved), nil
	}

	res, err := r.fetchPrivileged(ctx, href)
	if err != nil {
		internal.DebugLog("Privileged fetch unavailable for %s: %s", href, err.Error())
		res, err = r.fetchDirect(ctx, href)
	}
	if err != nil {
		return nil, err
	}

	r.cache.Set(href, res, cache.DefaultExpiration)
	return res, nil
}

// fetchPrivileged asks the out-of-process helper for the image; the helper
// preserves the original MIME type.
func (r *Resolver) fetchPrivileged(ctx context.Context, href string) (*model.Resolved, error) {
	if r.helper == nil {
		return nil, fmt.Errorf("no privileged fetcher configured")
	}
	dataURL, err := r.helper.FetchImage(ctx, href)
	if err != nil {
		return nil, err
	}
	data, mime, err := decodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	res, err := resolveBytes(data, mime)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// fetchDirect downloads the bytes and re-encodes through the host decoder as
// JPEG, normalizing the MIME type to image/jpeg.
func (r *Resolver) fetchDirect(ctx context.Context, href string) (*model.Resolved, error) {
	resp, err := r.client.R().SetContext(ctx).Get(href)
	if err != nil {
		return nil, &exports.ResolveError{Source: href, Err: err}
	}
	defer resp.Body.Close()

	buff := new(bytes.Buffer)
	if _, err := buff.ReadFrom(resp.Body); err != nil {
		return nil, &exports.ResolveError{Source: href, Err: fmt.Errorf("failed to read image data: %w", err)}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &exports.ResolveError{Source: href, Err: fmt.Errorf("unexpected status %d", resp.StatusCode())}
	}

	img, _, err := image.Decode(bytes.NewReader(buff.Bytes()))
	if err != nil {
		return nil, &exports.DecodeError{Err: err}
	}

	out := new(bytes.Buffer)
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: fallbackJPEGQuality}); err != nil {
		return nil, &exports.DecodeError{Err: fmt.Errorf("failed to encode JPEG: %w", err)}
	}

	bounds := img.Bounds()
	return &model.Resolved{
		Data:   out.Bytes(),
		MIME:   "image/jpeg",
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// decodeDataURL splits "data:<mime>;base64,<payload>".
func decodeDataURL(dataURL string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, "", fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(dataURL[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URL")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == meta {
		// Only base64 data URLs are produced by the helper protocol.
		return nil, "", fmt.Errorf("unsupported data URL encoding")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URL payload: %w", err)
	}
	return data, mime, nil
}
