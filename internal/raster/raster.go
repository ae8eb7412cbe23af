package raster

import "context"

// Rasterizer renders every page of a PDF into image files under outDir and
// returns the image paths in page order. One call covers the whole document,
// so a multi-page scan costs a single external invocation.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error)
}
