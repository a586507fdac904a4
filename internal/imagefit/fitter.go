// Package imagefit shrinks remote images until their base64 payload fits the
// vision capability's hard request-size ceiling.
package imagefit

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "image/gif" // register decoder
	_ "image/png" // register decoder

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/lodestone-search/lodestone/internal/domain"
	"github.com/lodestone-search/lodestone/internal/metrics"
)

// Default size limits, in bytes.
const (
	// DefaultCeiling is the hard maximum transmitted (base64) size accepted
	// by the vision capability.
	DefaultCeiling = 5 * 1024 * 1024
	// DefaultSoftRaw is the raw size under which an image is passed through
	// without transcoding (provided its base64 form is under the ceiling).
	DefaultSoftRaw = 3584 * 1024 // 3.5 MiB

	// defaultFetchTimeout bounds the remote fetch so a stalled upstream
	// cannot block a request indefinitely.
	defaultFetchTimeout = 10 * time.Second

	// maxFetchBytes caps the downloaded body.
	maxFetchBytes = 64 * 1024 * 1024
)

// Re-encode schedule: both axes back off geometrically until the payload fits
// or the schedule is exhausted, then one aggressive final attempt is made.
const (
	startQuality = 80
	startMaxDim  = 1200
	qualityStep  = 10
	dimStep      = 200
	minQuality   = 20
	minDim       = 600

	finalQuality = 20
	finalMaxDim  = 400
)

// Payload is a transfer-safe encoded image.
type Payload struct {
	Base64    string
	MediaType string
}

// Limits holds the size budget for fitted payloads.
type Limits struct {
	Ceiling int // transmitted base64 size must be strictly below this
	SoftRaw int // passthrough threshold on raw size
}

// Fitter fetches a remote image and re-encodes it until it fits the budget.
type Fitter struct {
	client *http.Client
	limits Limits
	logger *zap.Logger
}

// Option customizes a Fitter.
type Option func(*Fitter)

// WithHTTPClient replaces the fetch client (tests, custom transports).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fitter) { f.client = c }
}

// WithLimits overrides the size budget.
func WithLimits(l Limits) Option {
	return func(f *Fitter) { f.limits = l }
}

// New creates a Fitter with the default 5 MiB ceiling and 10s fetch timeout.
func New(logger *zap.Logger, opts ...Option) *Fitter {
	f := &Fitter{
		client: &http.Client{Timeout: defaultFetchTimeout},
		limits: Limits{Ceiling: DefaultCeiling, SoftRaw: DefaultSoftRaw},
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit downloads the image at rawURL and returns a payload whose base64 size
// is strictly under the ceiling. The re-encode loop is sequential and
// bounded: each iteration depends on the previous attempt's measured size.
func (f *Fitter) Fit(ctx context.Context, rawURL string) (Payload, error) {
	raw, mediaType, err := f.fetch(ctx, rawURL)
	if err != nil {
		return Payload{}, err
	}

	// Small enough already: keep the original bytes and media type.
	if len(raw) <= f.limits.SoftRaw && base64.StdEncoding.EncodedLen(len(raw)) < f.limits.Ceiling {
		metrics.ImageFitAttempts.WithLabelValues("passthrough").Inc()
		return Payload{
			Base64:    base64.StdEncoding.EncodeToString(raw),
			MediaType: mediaType,
		}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: decode image from %s: %v", domain.ErrInvalidReference, rawURL, err)
	}

	for quality, maxDim := startQuality, startMaxDim; quality >= minQuality && maxDim >= minDim; quality, maxDim = quality-qualityStep, maxDim-dimStep {
		if p, ok, err := f.attempt(img, maxDim, quality); err != nil {
			return Payload{}, err
		} else if ok {
			metrics.ImageFitAttempts.WithLabelValues("transcoded").Inc()
			return p, nil
		}
	}

	// Schedule exhausted: one aggressive final attempt before giving up.
	if p, ok, err := f.attempt(img, finalMaxDim, finalQuality); err != nil {
		return Payload{}, err
	} else if ok {
		metrics.ImageFitAttempts.WithLabelValues("transcoded").Inc()
		return p, nil
	}

	metrics.ImageFitAttempts.WithLabelValues("too_large").Inc()
	f.logger.Warn("image cannot be shrunk under ceiling",
		zap.String("url", rawURL),
		zap.Int("raw_bytes", len(raw)),
		zap.Int("ceiling", f.limits.Ceiling),
	)
	return Payload{}, fmt.Errorf("%w: %s", domain.ErrPayloadTooLarge, rawURL)
}

// attempt re-encodes img bounded to maxDim at the given JPEG quality and
// reports whether the base64 form fits under the ceiling.
func (f *Fitter) attempt(img image.Image, maxDim, quality int) (Payload, bool, error) {
	encoded, err := encodeJPEG(img, maxDim, quality)
	if err != nil {
		return Payload{}, false, fmt.Errorf("re-encode image: %w", err)
	}
	if base64.StdEncoding.EncodedLen(len(encoded)) < f.limits.Ceiling {
		return Payload{
			Base64:    base64.StdEncoding.EncodeToString(encoded),
			MediaType: "image/jpeg",
		}, true, nil
	}
	return Payload{}, false, nil
}

// fetch downloads the raw bytes, failing fast on malformed URLs and non-2xx
// responses.
func (f *Fitter) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", fmt.Errorf("%w: malformed url %q", domain.ErrInvalidReference, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidReference, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: fetch %s: %v", domain.ErrInvalidReference, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: fetch %s returned status %d", domain.ErrInvalidReference, rawURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read body of %s: %v", domain.ErrInvalidReference, rawURL, err)
	}

	mediaType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = http.DetectContentType(raw)
	}
	return raw, mediaType, nil
}

// encodeJPEG downscales img so its longer side is at most maxDim, then
// encodes it as JPEG at the given quality. Images already within bounds are
// encoded without scaling.
func encodeJPEG(img image.Image, maxDim, quality int) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	longer := w
	if h > w {
		longer = h
	}

	if longer > maxDim {
		scale := float64(maxDim) / float64(longer)
		dw := int(float64(w)*scale + 0.5)
		dh := int(float64(h)*scale + 0.5)
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
