// Package imagenorm bounds and re-encodes photographic evidence before it is
// attached to a report.
//
// Each accepted file yields exactly one payload: a resized JPEG data URL, or
// the raw bytes as a data URL when the image cannot be decoded or encoded.
package imagenorm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

const (
	MaxFileSize = 5 * 1024 * 1024
	MaxWidth    = 800
	Quality     = 70
	// MaxPixels caps the decoded area. A small file can declare huge
	// dimensions; those are sent as raw bytes instead of decoded.
	MaxPixels = 40_000_000
)

// File is one selected upload.
type File struct {
	Name string
	Data []byte
}

// Result is the outcome for one accepted file. Payload is always set;
// Fallback is true when Err prevented re-encoding and the raw bytes were used.
type Result struct {
	Index    int
	Name     string
	Payload  string
	Fallback bool
	Err      error
}

// Output is what a normalization run hands to the submit step.
type Output struct {
	// Results are in selection order, one per accepted file.
	Results []Result
	// Warnings name the rejected files.
	Warnings []string
}

// Payloads returns the encoded images in selection order.
func (o Output) Payloads() []string {
	out := make([]string, len(o.Results))
	for i, r := range o.Results {
		out[i] = r.Payload
	}
	return out
}

// Normalizer converts selected files into bounded data URLs.
type Normalizer struct {
	maxSize   int
	maxWidth  int
	maxPixels int
	quality   int
	workers   int
}

type Option func(*Normalizer)

// WithWorkers bounds how many files are processed at once.
func WithWorkers(n int) Option {
	return func(nz *Normalizer) {
		if n > 0 {
			nz.workers = n
		}
	}
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{maxSize: MaxFileSize, maxWidth: MaxWidth, maxPixels: MaxPixels, quality: Quality, workers: 4}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// TooLargeWarning is the message shown for a rejected file.
func TooLargeWarning(name string) string {
	return fmt.Sprintf("Image %s is too large. Please select a smaller image.", name)
}

// Normalize rejects oversized files and converts the rest concurrently.
// The only error it returns is ctx's; per-file failures fall back to raw bytes.
func (n *Normalizer) Normalize(ctx context.Context, files []File) (Output, error) {
	var out Output
	var accepted []File
	for _, f := range files {
		if len(f.Data) > n.maxSize {
			out.Warnings = append(out.Warnings, TooLargeWarning(f.Name))
			continue
		}
		accepted = append(accepted, f)
	}

	out.Results = make([]Result, len(accepted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)
	for i, f := range accepted {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out.Results[i] = n.convert(i, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Output{}, err
	}
	return out, nil
}

func (n *Normalizer) convert(index int, f File) Result {
	res := Result{Index: index, Name: f.Name}
	payload, err := n.encode(f.Data)
	if err != nil {
		res.Payload = rawDataURL(f.Data)
		res.Fallback = true
		res.Err = err
		return res
	}
	res.Payload = payload
	return res
}

func (n *Normalizer) encode(data []byte) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(n.maxPixels) {
		return "", fmt.Errorf("decode: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, n.maxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return "", fmt.Errorf("decode: empty image")
	}
	if w > n.maxWidth {
		h = h * n.maxWidth / w
		if h < 1 {
			h = 1
		}
		w = n.maxWidth
	}

	// JPEG has no alpha; transparent pixels land on white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality}); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func rawDataURL(data []byte) string {
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
