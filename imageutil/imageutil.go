// Package imageutil shrinks photos before they are uploaded to object
// storage.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"

	// Codecs the album accepts.
	_ "image/gif"
	_ "image/png"
)

// Compress decodes the image on r, scales it down (preserving aspect
// ratio) so neither dimension exceeds maxWidth/maxHeight, and re-encodes
// it as JPEG at the given quality (1-100).  Images already within bounds
// are re-encoded without scaling; images are never scaled up.
//
// The EXIF Orientation tag is baked into the pixel data before encoding:
// the output JPEG carries no EXIF, so a camera photo shot in portrait
// would otherwise come out sideways.
//
// A decode error is not fatal to an upload flow: callers should fall back
// to uploading the original bytes.
func Compress(r io.Reader, maxWidth, maxHeight, quality int) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("while reading image: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("while decoding image: %w", err)
	}

	src = normalizeOrientation(src, orientationOf(raw))

	bounds := src.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	out := src
	if w != bounds.Dx() || h != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("while encoding JPEG: %w", err)
	}

	return buf.Bytes(), nil
}

// orientationOf returns the EXIF Orientation value (1-8) from the raw
// image bytes, or 1 (upright) when there is no usable EXIF data.
func orientationOf(raw []byte) int {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// normalizeOrientation rewrites src so it displays upright without its
// EXIF Orientation tag.  Orientations 5-8 swap the output dimensions.
func normalizeOrientation(src image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return src
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	outW, outH := w, h
	if orientation >= 5 {
		outW, outH = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2: // mirrored
				dx, dy = w-1-x, y
			case 3: // rotated 180
				dx, dy = w-1-x, h-1-y
			case 4: // flipped
				dx, dy = x, h-1-y
			case 5: // transposed
				dx, dy = y, x
			case 6: // rotated 90 CW
				dx, dy = h-1-y, x
			case 7: // transversed
				dx, dy = h-1-y, w-1-x
			case 8: // rotated 270 CW
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// FitWithin returns the largest dimensions not exceeding maxW x maxH that
// preserve the w:h aspect ratio.  Dimensions already within bounds are
// returned unchanged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}
