package view

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// saveScreenshot writes img as a timestamped WebP file under dir. A scale below
// 1 downsamples first.
func saveScreenshot(dir string, img image.Image, scale float64, now time.Time) (string, error) {
	if scale > 0 && scale < 1 {
		b := img.Bounds()
		w := max(1, int(float64(b.Dx())*scale))
		h := max(1, int(float64(b.Dy())*scale))
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("screenshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("village-%s.webp", now.Format("20060102-150405.000")))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return "", fmt.Errorf("WebP encode: %w", err)
	}
	return path, nil
}
