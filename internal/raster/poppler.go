package raster

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/healthlens/healthlens/internal/ocr"
)

// Poppler rasterizes PDFs by shelling out to pdftoppm.
type Poppler struct {
	runner ocr.Runner
	bin    string
	dpi    int
	logger *slog.Logger
}

func NewPoppler(runner ocr.Runner, bin string, dpi int, logger *slog.Logger) *Poppler {
	if runner == nil {
		runner = ocr.ExecRunner{}
	}
	if bin == "" {
		bin = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poppler{runner: runner, bin: bin, dpi: dpi, logger: logger}
}

// Rasterize runs pdftoppm -r <dpi> -png <in.pdf> <outDir>/page and collects
// the generated page images in numeric page order.
func (p *Poppler) Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	_, errb, err := p.runner.Run(ctx, p.bin, "-r", strconv.Itoa(p.dpi), "-png", pdfPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, ocr.Truncate(string(errb), 2<<10))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}
	sortByPageNumber(matches)
	return matches, nil
}

var rePageNum = regexp.MustCompile(`(\d+)\.png$`)

// sortByPageNumber orders page images by the number embedded in the filename.
// pdftoppm zero-pads, but a numeric sort holds regardless of padding width.
func sortByPageNumber(files []string) {
	sort.Slice(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})
}

func pageNumber(path string) int {
	m := rePageNum.FindStringSubmatch(filepath.Base(path))
	if len(m) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
