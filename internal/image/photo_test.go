package image

import (
	"bytes"
	goimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := goimage.NewRGBA(goimage.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.SetRGBA(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	photo, err := Decode(bytes.NewReader(pngBytes(t, 32, 20)))
	if err != nil {
		t.Fatal(err)
	}
	if photo.NaturalWidth != 32 || photo.NaturalHeight != 20 {
		t.Errorf("natural size = %dx%d, want 32x20", photo.NaturalWidth, photo.NaturalHeight)
	}
	if s := photo.Size(); s.Width != 32 || s.Height != 20 {
		t.Errorf("Size() = %v, want 32x20", s)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(strings.NewReader("not an image")); err == nil {
		t.Error("decoding garbage should fail")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, pngBytes(t, 16, 16), 0o644); err != nil {
		t.Fatal(err)
	}

	photo, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if photo.Path != path {
		t.Errorf("Path = %q, want %q", photo.Path, path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("loading a missing file should fail")
	}
}
