package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{100, 50, 200, 200, 100, 50},   // already in bounds
		{400, 200, 200, 200, 200, 100}, // width-limited
		{200, 400, 200, 200, 100, 200}, // height-limited
		{1000, 1000, 100, 50, 50, 50},  // both over, tighter wins
		{3, 3000, 100, 100, 1, 100},    // degenerate thin image clamps to 1
	}
	for _, tc := range tests {
		gotW, gotH := FitWithin(tc.w, tc.h, tc.maxW, tc.maxH)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Errorf("FitWithin(%d, %d, %d, %d) = (%d, %d), want (%d, %d)",
				tc.w, tc.h, tc.maxW, tc.maxH, gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("Unexpected error encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestCompressScalesDown(t *testing.T) {
	in := testPNG(t, 640, 480)

	out, err := Compress(bytes.NewReader(in), 320, 320, 80)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Unexpected error decoding output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("Output format = %q, want jpeg", format)
	}
	if cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("Output dimensions = %dx%d, want 320x240", cfg.Width, cfg.Height)
	}
}

func TestCompressLeavesSmallImagesUnscaled(t *testing.T) {
	in := testPNG(t, 100, 80)

	out, err := Compress(bytes.NewReader(in), 320, 320, 80)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Unexpected error decoding output: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 80 {
		t.Errorf("Output dimensions = %dx%d, want 100x80", cfg.Width, cfg.Height)
	}
}

func TestCompressRejectsGarbage(t *testing.T) {
	_, err := Compress(strings.NewReader("definitely not an image"), 100, 100, 80)
	if err == nil {
		t.Fatalf("Compress accepted garbage input")
	}
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Unexpected error encoding fixture: %v", err)
	}
	return buf.Bytes()
}

// withOrientation splices a minimal EXIF APP1 segment carrying the given
// Orientation value in right after the JPEG SOI marker.
func withOrientation(t *testing.T, jpg []byte, orientation byte) []byte {
	t.Helper()
	app1 := []byte{
		0xff, 0xe1, 0x00, 0x22, // APP1, segment length 34
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'I', 'I', 0x2a, 0x00, // little-endian TIFF header
		0x08, 0x00, 0x00, 0x00, // IFD0 at offset 8
		0x01, 0x00, // one entry
		0x12, 0x01, // Orientation
		0x03, 0x00, // SHORT
		0x01, 0x00, 0x00, 0x00, // count 1
		orientation, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	out := append([]byte{}, jpg[:2]...)
	out = append(out, app1...)
	out = append(out, jpg[2:]...)
	return out
}

func TestCompressBakesInOrientation(t *testing.T) {
	// Orientation 6: stored landscape, displays as portrait.
	in := withOrientation(t, testJPEG(t, 640, 480), 6)

	out, err := Compress(bytes.NewReader(in), 320, 320, 80)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Unexpected error decoding output: %v", err)
	}
	if cfg.Width != 240 || cfg.Height != 320 {
		t.Errorf("Output dimensions = %dx%d, want 240x320", cfg.Width, cfg.Height)
	}
}

func TestOrientationOfDefaultsUpright(t *testing.T) {
	// No EXIF at all (PNG and an untagged JPEG).
	if got := orientationOf(testPNG(t, 10, 10)); got != 1 {
		t.Errorf("orientationOf(png) = %d, want 1", got)
	}
	if got := orientationOf(testJPEG(t, 10, 10)); got != 1 {
		t.Errorf("orientationOf(untagged jpeg) = %d, want 1", got)
	}
	if got := orientationOf(withOrientation(t, testJPEG(t, 10, 10), 6)); got != 6 {
		t.Errorf("orientationOf(tagged jpeg) = %d, want 6", got)
	}
}

func TestNormalizeOrientation(t *testing.T) {
	// A 2x1 image: red at (0,0), blue at (1,0).
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	src.Set(0, 0, red)
	src.Set(1, 0, blue)

	tests := []struct {
		orientation  int
		wantW, wantH int
		wantRed      image.Point
	}{
		{1, 2, 1, image.Pt(0, 0)}, // upright, untouched
		{2, 2, 1, image.Pt(1, 0)}, // mirrored
		{3, 2, 1, image.Pt(1, 0)}, // rotated 180
		{6, 1, 2, image.Pt(0, 0)}, // rotated 90 CW
		{8, 1, 2, image.Pt(0, 1)}, // rotated 270 CW
	}
	for _, tc := range tests {
		got := normalizeOrientation(src, tc.orientation)
		b := got.Bounds()
		if b.Dx() != tc.wantW || b.Dy() != tc.wantH {
			t.Errorf("orientation %d: dimensions = %dx%d, want %dx%d",
				tc.orientation, b.Dx(), b.Dy(), tc.wantW, tc.wantH)
			continue
		}
		r, _, _, _ := got.At(tc.wantRed.X, tc.wantRed.Y).RGBA()
		if r == 0 {
			t.Errorf("orientation %d: red pixel not at %v", tc.orientation, tc.wantRed)
		}
	}
}
