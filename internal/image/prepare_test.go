package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 0x80})
		}
	}

	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPrepareBounds(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr error
	}{
		{"minimum", 16, 16, nil},
		{"maximum", 256, 256, nil},
		{"mixed", 16, 256, nil},
		{"typical", 64, 48, nil},
		{"too narrow", 15, 64, ErrDimensions},
		{"too short", 64, 15, ErrDimensions},
		{"too wide", 257, 64, ErrDimensions},
		{"too tall", 64, 257, ErrDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Prepare(writePNG(t, tt.w, tt.h))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Prepare() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && encoded == "" {
				t.Error("expected non-empty encoded image")
			}
			if tt.wantErr != nil && encoded != "" {
				t.Error("expected empty encoded image on error")
			}
		})
	}
}

func TestPrepareDropsAlpha(t *testing.T) {
	encoded, err := Prepare(writePNG(t, 20, 30))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		t.Fatalf("encoded image is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("encoded image is not a PNG: %v", err)
	}

	// 8-bit truecolor without alpha decodes to *image.RGBA
	if _, ok := img.(*image.RGBA); !ok {
		t.Fatalf("expected RGB PNG, decoded as %T", img)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 30 {
		t.Errorf("expected 20x30, got %dx%d", b.Dx(), b.Dy())
	}
	got := color.NRGBAModel.Convert(img.At(3, 4)).(color.NRGBA)
	want := color.NRGBA{R: 10, G: 20, B: 30, A: 0xff}
	if got != want {
		t.Errorf("expected pixel %v, got %v", want, got)
	}
}

func TestPrepareJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	path := filepath.Join(t.TempDir(), "input.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := Prepare(path); err != nil {
		t.Errorf("Prepare failed on jpeg: %v", err)
	}
}

func TestPrepareNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.png")
	if err := os.WriteFile(path, []byte("not an image"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Prepare(path)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrDimensions) {
		t.Errorf("expected decode error, got validation error %v", err)
	}
}

func TestPrepareMissingFile(t *testing.T) {
	_, err := Prepare(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
