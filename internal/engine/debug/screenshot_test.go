package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
}

func TestGenerateFilename(t *testing.T) {
	sc := NewScreenshotCapture("shots", "bunny")
	sc.now = fixedClock

	got := sc.GenerateFilename("v500")
	want := filepath.Join("shots", "bunny_2024-03-01_12-30-45_v500.png")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	if got := sc.GenerateFilename(""); strings.Contains(got, "__") || !strings.HasSuffix(got, "45.png") {
		t.Errorf("unexpected unlabeled name %s", got)
	}
}

func TestCaptureFromPixelsFlipsRows(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "lod")
	sc.now = fixedClock

	// 1x2 image: bottom row red, top row blue (OpenGL order)
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 1, 2, "")
	if err != nil {
		t.Fatalf("CaptureFromPixels failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening capture: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding capture: %v", err)
	}

	r, _, b, _ := img.At(0, 0).RGBA()
	if b == 0 || r != 0 {
		t.Error("top row of the PNG should be blue")
	}
	r, _, b, _ = img.At(0, 1).RGBA()
	if r == 0 || b != 0 {
		t.Error("bottom row of the PNG should be red")
	}
}

func TestCaptureFromPixelsSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "lod")
	if _, err := sc.CaptureFromPixels(make([]byte, 7), 1, 2, ""); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestCaptureDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "lod")
	sc.now = fixedClock

	pixels := make([]byte, 4)
	first, err := sc.CaptureFromPixels(pixels, 1, 1, "v3")
	if err != nil {
		t.Fatalf("first capture failed: %v", err)
	}
	second, err := sc.CaptureFromPixels(pixels, 1, 1, "v3")
	if err != nil {
		t.Fatalf("second capture failed: %v", err)
	}
	if first == second {
		t.Errorf("second capture overwrote %s", first)
	}
	if !strings.HasSuffix(second, "_v3_2.png") {
		t.Errorf("unexpected second name %s", second)
	}
}
