package imageproc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/Nandan222001/ask-anything/internal/domain"
)

func testImage(w, h int, seed uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x) ^ seed, G: uint8(y), B: seed, A: 255})
		}
	}
	return img
}

func encodeTestJPEG(t *testing.T, w, h int, seed uint8) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h, seed), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h, 0)); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	p := New(Config{})

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"valid jpeg", encodeTestJPEG(t, 64, 64, 1), nil},
		{"valid png", encodeTestPNG(t, 64, 64), nil},
		{"empty payload", nil, domain.ErrInvalidImage},
		{"garbage bytes", []byte("not an image at all"), domain.ErrInvalidImage},
		{"below min dimension", encodeTestJPEG(t, 10, 10, 1), domain.ErrImageConstraint},
		{"one side below min", encodeTestJPEG(t, 200, 10, 1), domain.ErrImageConstraint},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := p.Validate(c.data)
			if c.want == nil {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) || vErr.Reason == "" {
				t.Error("expected a human-readable reason")
			}
		})
	}
}

func TestValidate_SizeLimit(t *testing.T) {
	p := New(Config{MaxSizeBytes: 100})

	err := p.Validate(encodeTestJPEG(t, 64, 64, 1))
	if !errors.Is(err, domain.ErrImageConstraint) {
		t.Fatalf("expected ErrImageConstraint for oversized payload, got %v", err)
	}
}

func TestProcess_NeverUpscales(t *testing.T) {
	p := New(Config{})

	processed, err := p.Process(encodeTestJPEG(t, 100, 80, 2))
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if processed.Width != 100 || processed.Height != 80 {
		t.Errorf("small image must keep its size, got %dx%d", processed.Width, processed.Height)
	}
}

func TestProcess_DownscalesToMaxOutputDim(t *testing.T) {
	p := New(Config{MaxOutputDim: 64})

	processed, err := p.Process(encodeTestJPEG(t, 128, 96, 3))
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if processed.Width != 64 || processed.Height != 48 {
		t.Errorf("expected 64x48 with preserved aspect ratio, got %dx%d", processed.Width, processed.Height)
	}

	// Результат валидный JPEG заявленных габаритов
	cfg, format, err := image.DecodeConfig(bytes.NewReader(processed.Main))
	if err != nil || format != "jpeg" {
		t.Fatalf("main output must be a jpeg, got %q (%v)", format, err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("encoded dimensions %dx%d differ from reported", cfg.Width, cfg.Height)
	}
}

func TestProcess_ThumbnailIsSquare(t *testing.T) {
	p := New(Config{ThumbSize: 50})

	processed, err := p.Process(encodeTestJPEG(t, 200, 100, 4))
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(processed.Thumbnail))
	if err != nil || format != "jpeg" {
		t.Fatalf("thumbnail must be a jpeg, got %q (%v)", format, err)
	}
	if cfg.Width != 50 || cfg.Height != 50 {
		t.Errorf("expected 50x50 cover crop, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcess_HashStableAndContentAddressed(t *testing.T) {
	p := New(Config{})

	data := encodeTestJPEG(t, 64, 64, 5)
	first, err := p.Process(data)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	second, err := p.Process(data)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if first.MainHash != second.MainHash {
		t.Error("same input must produce the same main hash")
	}
	if first.MainHash == first.ThumbnailHash {
		t.Error("main and thumbnail hashes must be independent")
	}

	other, err := p.Process(encodeTestJPEG(t, 64, 64, 6))
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if other.MainHash == first.MainHash {
		t.Error("different pixels must produce a different hash")
	}
}

func TestProcess_PNGInputBecomesJPEG(t *testing.T) {
	p := New(Config{})

	processed, err := p.Process(encodeTestPNG(t, 64, 64))
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(processed.Main))
	if err != nil || format != "jpeg" {
		t.Errorf("png input must be re-encoded as jpeg, got %q (%v)", format, err)
	}
}

func TestApplyOrientation_SwapsSides(t *testing.T) {
	img := testImage(40, 20, 7)

	// Ориентации 5-8 меняют стороны местами
	rotated := applyOrientation(img, 6)
	b := rotated.Bounds()
	if b.Dx() != 20 || b.Dy() != 40 {
		t.Errorf("orientation 6 must swap sides, got %dx%d", b.Dx(), b.Dy())
	}

	same := applyOrientation(img, 1)
	if same != img {
		t.Error("orientation 1 must return the image unchanged")
	}

	flipped := applyOrientation(img, 3)
	fb := flipped.Bounds()
	if fb.Dx() != 40 || fb.Dy() != 20 {
		t.Errorf("orientation 3 must keep sides, got %dx%d", fb.Dx(), fb.Dy())
	}
}
