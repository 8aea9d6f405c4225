package imaging

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodePNG(t *testing.T) {
	img := createInMemoryImage(12, 7, color.NRGBA{1, 2, 3, 255})

	enc, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if enc.Width != 12 || enc.Height != 7 || enc.MimeType != "image/png" {
		t.Errorf("unexpected metadata: %+v", enc)
	}

	data, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("payload is not a PNG: %v", err)
	}
	r, g, b, _ := decoded.At(3, 3).RGBA()
	if r>>8 != 1 || g>>8 != 2 || b>>8 != 3 {
		t.Errorf("pixel: got (%d,%d,%d), want (1,2,3)", r>>8, g>>8, b>>8)
	}
}

func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.png")
	img := createInMemoryImage(5, 5, color.White)

	if err := SavePNG(img, path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output not written: %v", err)
	}

	cache := NewImageCache()
	loaded, err := cache.Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Bounds().Dx() != 5 {
		t.Errorf("reloaded width: got %d, want 5", loaded.Bounds().Dx())
	}
}
