package raster

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	fitz "github.com/gen2brain/go-fitz"
)

// Fitz rasterizes PDFs in-process through MuPDF. It is the drop-in
// substitute for the poppler subprocess where shelling out is unwanted.
type Fitz struct {
	dpi int
}

func NewFitz(dpi int) *Fitz {
	if dpi <= 0 {
		dpi = 300
	}
	return &Fitz{dpi: dpi}
}

func (f *Fitz) Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var paths []string
	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(n, float64(f.dpi))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", n+1, err)
		}
		out := filepath.Join(outDir, fmt.Sprintf("page-%03d.png", n+1))
		file, err := os.Create(out)
		if err != nil {
			return nil, err
		}
		if err := png.Encode(file, img); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("encode page %d: %w", n+1, err)
		}
		if err := file.Close(); err != nil {
			return nil, err
		}
		paths = append(paths, out)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	return paths, nil
}
