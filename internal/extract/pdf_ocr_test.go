package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRasterizer writes real (tiny) PNGs so the pre-processing step can open
// them, and remembers the workspace it was handed.
type fakeRasterizer struct {
	pages  int
	err    error
	outDir string
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string, outDir string) ([]string, error) {
	f.outDir = outDir
	if f.err != nil {
		return nil, f.err
	}
	var paths []string
	for i := 1; i <= f.pages; i++ {
		p := filepath.Join(outDir, fmt.Sprintf("page-%d.png", i))
		if err := writePNG(p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8)))
}

// fakeEngine returns a deterministic per-page string keyed off the image path.
type fakeEngine struct {
	text func(path string) (string, error)
}

func (f *fakeEngine) Recognize(_ context.Context, imagePath, _ string) (string, error) {
	return f.text(imagePath)
}

func pageText(path string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	return "text of " + base, nil
}

func TestPDFOCR_ConcatenatesInPageOrder(t *testing.T) {
	ras := &fakeRasterizer{pages: 3}
	e := NewPDFOCRExtractor(ras, &fakeEngine{text: pageText}, "eng", 0, 2, nil)

	got, err := e.Extract(context.Background(), pdfDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "text of page-1\ntext of page-2\ntext of page-3"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestPDFOCR_RemovesWorkspaceOnSuccess(t *testing.T) {
	ras := &fakeRasterizer{pages: 1}
	e := NewPDFOCRExtractor(ras, &fakeEngine{text: pageText}, "eng", 0, 1, nil)

	if _, err := e.Extract(context.Background(), pdfDoc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(ras.outDir); !os.IsNotExist(err) {
		t.Errorf("workspace %s still exists after success", ras.outDir)
	}
}

func TestPDFOCR_RemovesWorkspaceOnFailure(t *testing.T) {
	ras := &fakeRasterizer{err: errors.New("pdftoppm exploded")}
	e := NewPDFOCRExtractor(ras, &fakeEngine{text: pageText}, "eng", 0, 1, nil)

	if _, err := e.Extract(context.Background(), pdfDoc()); err == nil {
		t.Fatal("expected rasterization error")
	}
	if _, err := os.Stat(ras.outDir); !os.IsNotExist(err) {
		t.Errorf("workspace %s still exists after failure", ras.outDir)
	}
}

func TestPDFOCR_AllPagesBlankIsEmptyContent(t *testing.T) {
	ras := &fakeRasterizer{pages: 2}
	blank := &fakeEngine{text: func(string) (string, error) { return "   \n ", nil }}
	e := NewPDFOCRExtractor(ras, blank, "eng", 0, 1, nil)

	_, err := e.Extract(context.Background(), pdfDoc())
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("error = %v, want ErrEmptyContent", err)
	}
}

func TestPDFOCR_FailedPageIsSkippedNotFatal(t *testing.T) {
	ras := &fakeRasterizer{pages: 3}
	flaky := &fakeEngine{text: func(path string) (string, error) {
		if strings.Contains(path, "page-2") {
			return "", errors.New("page 2 failed")
		}
		return pageText(path)
	}}
	e := NewPDFOCRExtractor(ras, flaky, "eng", 0, 1, nil)

	got, err := e.Extract(context.Background(), pdfDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "text of page-1") || !strings.Contains(got, "text of page-3") {
		t.Errorf("surviving pages missing from %q", got)
	}
}

func TestPDFOCR_MaxPagesCap(t *testing.T) {
	ras := &fakeRasterizer{pages: 5}
	e := NewPDFOCRExtractor(ras, &fakeEngine{text: pageText}, "eng", 2, 1, nil)

	got, err := e.Extract(context.Background(), pdfDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "page-3") {
		t.Errorf("page beyond cap present in %q", got)
	}
	if !strings.Contains(got, "page-2") {
		t.Errorf("capped output lost page 2: %q", got)
	}
}
