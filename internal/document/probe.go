package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFProber inspects PDF text layers using a pure-Go parser, so probing never
// shells out.
type PDFProber struct{}

// HasTextLayer walks pages in order and reports true at the first non-empty
// text run. Malformed documents surface as an error, which the classifier
// maps to the rasterized strategy.
func (PDFProber) HasTextLayer(raw []byte) (found bool, err error) {
	// The parser panics on some malformed cross-reference tables; a corrupt
	// upload must not take the request down with it.
	defer func() {
		if r := recover(); r != nil {
			found = false
			err = fmt.Errorf("pdf probe panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return false, fmt.Errorf("open pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, run := range page.Content().Text {
			if strings.TrimSpace(run.S) != "" {
				return true, nil
			}
		}
	}
	return false, nil
}
