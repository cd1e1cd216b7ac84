package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// PNG renders a synthetic scanned page: white background with dark bars
// where lines of print would sit.
func PNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	ink := color.RGBA{R: 20, G: 20, B: 20, A: 255}
	for line := 0; line < 5; line++ {
		y0 := height/8 + line*height/8
		bar := image.Rect(width/10, y0, width*9/10, y0+height/40+1)
		draw.Draw(img, bar, &image.Uniform{ink}, image.Point{}, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture png: %v", err)
	}
	return buf.Bytes()
}

// WritePNG writes a synthetic page image to dir/name and returns its path.
func WritePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, PNG(t, 600, 800), 0o644); err != nil {
		t.Fatalf("failed to write fixture png %s: %v", name, err)
	}
	return path
}
