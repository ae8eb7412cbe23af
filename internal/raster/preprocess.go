package raster

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Prepare cleans a rasterized page in place before OCR: grayscale, a light
// sharpen, and a contrast stretch. Faxed and photographed scans gain the
// most; clean renders pass through essentially unchanged.
func Prepare(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open page image: %w", err)
	}
	img = imaging.Grayscale(img)
	img = imaging.Sharpen(img, 0.8)
	img = imaging.AdjustContrast(img, 20)
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save page image: %w", err)
	}
	return nil
}
