package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/healthlens/healthlens/constants"
	"github.com/healthlens/healthlens/internal/common"
	"github.com/healthlens/healthlens/internal/document"
)

type analyzeResponse struct {
	Summary  string          `json:"summary"`
	Strategy string          `json:"strategy"`
	Degraded bool            `json:"degraded"`
	Metrics  json.RawMessage `json:"metrics,omitempty"`
}

// handleAnalyze accepts a multipart upload: field "report" carries the lab
// report, optional field "userInfo" carries patient demographics as JSON.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.writeError(w, fmt.Errorf("%w: parse multipart form: %v", common.ErrInvalidInput, err))
		return
	}

	file, header, err := r.FormFile("report")
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: missing report file", common.ErrInvalidInput))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	raw, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, common.WrapError(err, "read upload"))
		return
	}

	patient, err := ParsePatientContext([]byte(r.FormValue("userInfo")))
	if err != nil {
		s.writeError(w, err)
		return
	}

	doc := document.Document{
		Bytes:     raw,
		MediaType: declaredMediaType(header.Header.Get("Content-Type"), header.Filename),
	}

	res, err := s.analyzer.Process(r.Context(), doc, patient)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := analyzeResponse{
		Summary:  res.Summary,
		Strategy: string(res.Strategy),
		Degraded: res.Degraded,
	}
	if res.Metrics != nil && res.Metrics.Len() > 0 {
		if b, mErr := json.Marshal(res.Metrics); mErr == nil {
			resp.Metrics = b
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// declaredMediaType trusts the part's Content-Type when present and falls
// back to the filename extension. Unrecognized declarations pass through
// untouched so the classifier can reject them as unsupported.
func declaredMediaType(contentType, filename string) document.MediaType {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			switch strings.ToLower(mt) {
			case "application/pdf":
				return document.MediaPDF
			case "image/jpeg", "image/jpg":
				return document.MediaJPEG
			case "image/png":
				return document.MediaPNG
			case "application/octet-stream":
				// fall through to the extension
			default:
				return document.MediaType(strings.ToLower(mt))
			}
		}
	}
	if mt := constants.MediaTypeForExt(filepath.Ext(filename)); mt != "" {
		return document.MediaType(mt)
	}
	return document.MediaType(strings.ToLower(contentType))
}
