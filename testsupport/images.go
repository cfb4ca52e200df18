// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// Split describes which half of a HalfImage is white
type Split int

const (
	// LeftWhite paints the left half white and the right half black
	LeftWhite Split = iota
	// TopWhite paints the top half white and the bottom half black
	TopWhite
)

// HalfImage returns a size×size image split into a white and a black half
func HalfImage(size int, split Split) *image.NRGBA {
	img := imaging.New(size, size, color.Black)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (split == LeftWhite && x < size/2) || (split == TopWhite && y < size/2) {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

// Gradient returns a w×h image whose brightness rises left to right
func Gradient(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.Black)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / max(w-1, 1))
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// Noise returns a w×h image with pseudo-random gray cells, stable per seed
func Noise(w, h int, seed uint32) *image.NRGBA {
	img := imaging.New(w, h, color.Black)
	state := seed*2 + 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			state ^= state << 13
			state ^= state >> 17
			state ^= state << 5
			v := uint8(state)
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// SaveImage encodes img at path, picking the format from the extension
func SaveImage(t testing.TB, path string, img image.Image) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	return path
}

// WriteBytes writes raw content at path, for corrupt or non-image fixtures
func WriteBytes(t testing.TB, path string, content []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// DuplicateDir creates a directory holding A.png and B.png (identical, left
// half white) and C.png (top half white), returning the directory.
func DuplicateDir(t testing.TB) string {
	t.Helper()

	dir := t.TempDir()
	SaveImage(t, filepath.Join(dir, "A.png"), HalfImage(64, LeftWhite))
	SaveImage(t, filepath.Join(dir, "B.png"), HalfImage(64, LeftWhite))
	SaveImage(t, filepath.Join(dir, "C.png"), HalfImage(64, TopWhite))
	return dir
}
