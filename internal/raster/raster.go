// Package raster maintains the painted mask raster and the transient
// brush preview overlay for one editor session.
//
// Strokes are destructive: each committed segment is baked directly
// into the persistent raster, so Reset (restore the original photo) is
// the only undo. The preview overlay is a separate transparent layer
// that is fully redrawn on every pointer move and never exported.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"

	"mask-painter/pkg/colorutil"
	"mask-painter/pkg/geometry"
)

// ErrNoPhoto is returned when an operation needs a bound photo and none
// has been bound yet.
var ErrNoPhoto = errors.New("raster: no photo bound")

// Brush describes the active painting tool. Size is the stroke diameter
// in photo pixels.
type Brush struct {
	Size  float64
	Color color.RGBA
}

const previewFillAlpha = 90 // out of 255

// Canvas holds the base photo, the persistent painted raster and the
// preview overlay, all in the photo's native pixel dimensions.
type Canvas struct {
	base    *image.RGBA
	painted *gg.Context
	preview *gg.Context
	width   int
	height  int
}

// New creates a canvas initialized to the given photo.
func New(photo image.Image) (*Canvas, error) {
	if photo == nil {
		return nil, ErrNoPhoto
	}
	bounds := photo.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: photo has degenerate size %dx%d", w, h)
	}

	// Normalize to an origin-anchored RGBA copy.
	base := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(base, base.Bounds(), photo, bounds.Min, draw.Src)

	c := &Canvas{
		base:    base,
		preview: gg.NewContextForRGBA(image.NewRGBA(image.Rect(0, 0, w, h))),
		width:   w,
		height:  h,
	}
	c.painted = gg.NewContextForRGBA(image.NewRGBA(image.Rect(0, 0, w, h)))
	c.Reset()
	return c, nil
}

// Size returns the photo's natural size.
func (c *Canvas) Size() geometry.Size {
	return geometry.NewSize(float64(c.width), float64(c.height))
}

// Reset restores the persistent raster to the original photo pixels,
// discarding every committed stroke.
func (c *Canvas) Reset() {
	dst := c.painted.Image().(*image.RGBA)
	draw.Draw(dst, dst.Bounds(), c.base, image.Point{}, draw.Src)
}

// CommitSegment bakes a round-capped, round-joined line between two
// image-space points into the persistent raster.
func (c *Canvas) CommitSegment(p0, p1 geometry.Point2D, b Brush) {
	ctx := c.painted
	ctx.SetColor(b.Color)

	if p0 == p1 {
		// A degenerate segment still paints the brush footprint.
		ctx.DrawCircle(p0.X, p0.Y, b.Size/2)
		ctx.Fill()
		return
	}

	ctx.SetLineCap(gg.LineCapRound)
	ctx.SetLineJoin(gg.LineJoinRound)
	ctx.SetLineWidth(b.Size)
	ctx.DrawLine(p0.X, p0.Y, p1.X, p1.Y)
	ctx.Stroke()
}

// RenderPreview redraws the brush outline at the given image-space
// point on the transient overlay: a translucent fill plus a solid
// outline. The point may lie outside the photo.
func (c *Canvas) RenderPreview(p geometry.Point2D, b Brush) {
	ctx := c.preview
	c.ClearPreview()

	// SetRGBA255 takes straight alpha; color.RGBA would be read as
	// premultiplied.
	fill := colorutil.WithAlpha(b.Color, previewFillAlpha)
	ctx.SetRGBA255(int(fill.R), int(fill.G), int(fill.B), int(fill.A))
	ctx.DrawCircle(p.X, p.Y, b.Size/2)
	ctx.Fill()

	ctx.SetColor(b.Color)
	ctx.SetLineWidth(1.5)
	ctx.DrawCircle(p.X, p.Y, b.Size/2)
	ctx.Stroke()
}

// ClearPreview hides the brush preview.
func (c *Canvas) ClearPreview() {
	dst := c.preview.Image().(*image.RGBA)
	for i := range dst.Pix {
		dst.Pix[i] = 0
	}
}

// Image returns the persistent raster (photo plus committed strokes).
// The caller must treat it as read-only.
func (c *Canvas) Image() *image.RGBA {
	return c.painted.Image().(*image.RGBA)
}

// PreviewImage returns the transient overlay.
func (c *Canvas) PreviewImage() *image.RGBA {
	return c.preview.Image().(*image.RGBA)
}

// BaseImage returns the original photo pixels.
func (c *Canvas) BaseImage() *image.RGBA {
	return c.base
}

// Export encodes a snapshot of the persistent raster only; the preview
// overlay is never included. Supported MIME types are "image/png" and
// "image/jpeg" (quality in (0,1], ignored for PNG).
func (c *Canvas) Export(mimeType string, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	switch mimeType {
	case "image/png", "":
		if err := png.Encode(&buf, c.Image()); err != nil {
			return nil, fmt.Errorf("raster: png encode: %w", err)
		}
	case "image/jpeg":
		q := int(quality * 100)
		if q <= 0 || q > 100 {
			q = jpeg.DefaultQuality
		}
		if err := jpeg.Encode(&buf, c.Image(), &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("raster: jpeg encode: %w", err)
		}
	default:
		return nil, fmt.Errorf("raster: unsupported export type %q", mimeType)
	}
	return buf.Bytes(), nil
}
