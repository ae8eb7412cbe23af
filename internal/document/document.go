package document

// MediaType is the declared media type of an uploaded report.
type MediaType string

const (
	MediaPDF  MediaType = "application/pdf"
	MediaJPEG MediaType = "image/jpeg"
	MediaPNG  MediaType = "image/png"
)

// Document is one uploaded lab report. It is immutable input, owned by the
// pipeline for the duration of a single request and discarded afterwards.
type Document struct {
	Bytes     []byte
	MediaType MediaType
}

// Strategy identifies how text is pulled out of a document.
type Strategy string

const (
	DirectPDFText    Strategy = "pdf-text"
	RasterizedPDFOCR Strategy = "pdf-ocr"
	ImageOCR         Strategy = "image-ocr"
)
