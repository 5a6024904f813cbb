// Package debug provides debug capture utilities for the viewer.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// ScreenshotCapture writes framebuffer captures as PNG files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory for screenshots.
func (sc *ScreenshotCapture) SetOutputDir(dir string) {
	sc.outputDir = dir
}

// CaptureFromPixels saves raw RGBA pixel data read from OpenGL.
// pixels must hold width*height*4 bytes. Rows are flipped since OpenGL has
// its origin at the bottom-left. label is appended to the file name, e.g.
// the current vertex count.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int, label string) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := range height {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}

	return sc.CaptureFromImage(img, label)
}

// CaptureFromImage saves an existing image.
func (sc *ScreenshotCapture) CaptureFromImage(img image.Image, label string) (string, error) {
	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := sc.GenerateFilename(label)
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	for n := 2; os.IsExist(err); n++ {
		// Same second, same label
		filename = sc.numbered(label, n)
		file, err = os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	}
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	return filename, nil
}

// GenerateFilename generates a screenshot filename without saving.
func (sc *ScreenshotCapture) GenerateFilename(label string) string {
	return sc.numbered(label, 1)
}

func (sc *ScreenshotCapture) numbered(label string, n int) string {
	name := sc.prefix + "_" + sc.now().Format("2006-01-02_15-04-05")
	if label != "" {
		name += "_" + label
	}
	if n > 1 {
		name += fmt.Sprintf("_%d", n)
	}
	return filepath.Join(sc.outputDir, name+".png")
}
