package texture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.png")
	writePNG(t, path, 3, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	img, err := LoadTexture(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(2, 1); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestLoadTextureErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadTexture(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTexture(bad); err == nil {
		t.Error("expected decode error")
	}
}

func TestDecodeFormats(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 120, 60, 30, 255
	}
	tests := []struct {
		name   string
		encode func(*bytes.Buffer) error
	}{
		{"png", func(b *bytes.Buffer) error { return png.Encode(b, src) }},
		{"jpeg", func(b *bytes.Buffer) error { return jpeg.Encode(b, src, &jpeg.Options{Quality: 95}) }},
		{"bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, src) }},
		{"tiff", func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) }},
		{"webp", func(b *bytes.Buffer) error { return nativewebp.Encode(b, src, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatal(err)
			}
			img, err := Decode(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds() != image.Rect(0, 0, 4, 4) {
				t.Fatalf("bounds = %v", img.Bounds())
			}
			got := img.NRGBAAt(1, 1)
			if absDiff(got.R, 120) > 12 || absDiff(got.G, 60) > 12 || absDiff(got.B, 30) > 12 {
				t.Errorf("pixel = %v", got)
			}
		})
	}
}

func TestDecodeTGA(t *testing.T) {
	// 4×1 uncompressed 24-bit true-color, BGR order. The decoder looks for
	// a 26-byte footer, so the file must be at least that long.
	raw := []byte{
		0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		4, 0, 1, 0, 24, 0,
		30, 60, 120, 0, 0, 255, 0, 0, 255, 0, 0, 255,
	}
	img, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 1 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 120, G: 60, B: 30, A: 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestToNRGBAConvertsAndRebases(t *testing.T) {
	gray := image.NewGray(image.Rect(5, 5, 7, 6))
	gray.SetGray(6, 5, color.Gray{Y: 200})
	n := toNRGBA(gray)
	if n.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds = %v", n.Bounds())
	}
	if got := n.NRGBAAt(1, 0); got != (color.NRGBA{R: 200, G: 200, B: 200, A: 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestIndexPair(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "Brick.png"), 1, 1, color.NRGBA{A: 255})
	writePNG(t, filepath.Join(dir, "sub", "Brick_NORMAL.png"), 1, 1, color.NRGBA{B: 255, A: 255})
	writePNG(t, filepath.Join(dir, "orphan_normal.png"), 1, 1, color.NRGBA{A: 255})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	idx := BuildIndex(dir)
	if idx.Len() != 3 {
		t.Errorf("Len = %d, want 3", idx.Len())
	}
	normal, diffuse, ok := idx.Pair()
	if !ok {
		t.Fatal("no pair found")
	}
	if filepath.Base(normal) != "Brick_NORMAL.png" || filepath.Base(diffuse) != "Brick.png" {
		t.Errorf("pair = %s, %s", normal, diffuse)
	}
	if p, ok := idx.ResolvePath(`textures\brick.jpg`); !ok || p != diffuse {
		t.Errorf("ResolvePath = %q, %v", p, ok)
	}
}

func TestIndexPrefersLossless(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "wall.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "wall.png"), 1, 1, color.NRGBA{A: 255})
	p, ok := BuildIndex(dir).ResolvePath("wall")
	if !ok || filepath.Ext(p) != ".png" {
		t.Errorf("ResolvePath = %q, %v", p, ok)
	}
}

func TestCacheLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wall.png")
	writePNG(t, path, 2, 2, color.NRGBA{R: 1, A: 255})

	c := NewCache(BuildIndex(dir))
	a, err := c.Load("wall")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if b, err := c.Load("wall"); err != nil || b != a {
		t.Error("second resolve did not hit the cache")
	}
	if _, err := c.Load("nope"); err == nil {
		t.Error("expected error for unindexed name")
	}
}

func TestCacheFallsBackToPath(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "plaster.png")
	writePNG(t, outside, 3, 3, color.NRGBA{B: 7, A: 255})

	c := NewCache(BuildIndex(t.TempDir()))
	img, err := c.Load(outside)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 3 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestLoadAsync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.png")
	writePNG(t, path, 4, 4, color.NRGBA{G: 9, A: 255})

	p := LoadAsync(LoadTexture, path)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	img, err := p.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	select {
	case <-p.Done():
	default:
		t.Error("Done not closed after Wait returned")
	}
}

func TestLoadAsyncContextCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	p := LoadAsync(func(string) (*image.NRGBA, error) {
		<-release
		return nil, nil
	}, "slow")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
