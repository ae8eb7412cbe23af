package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/healthlens/healthlens/internal/common"
	"github.com/healthlens/healthlens/internal/document"
	"github.com/healthlens/healthlens/internal/metrics"
	"github.com/healthlens/healthlens/internal/pipeline"
	"github.com/healthlens/healthlens/internal/prompt"
)

type fakeAnalyzer struct {
	res        pipeline.Result
	err        error
	gotDoc     document.Document
	gotPatient *prompt.PatientContext
}

func (f *fakeAnalyzer) Process(_ context.Context, doc document.Document, patient *prompt.PatientContext) (pipeline.Result, error) {
	f.gotDoc = doc
	f.gotPatient = patient
	return f.res, f.err
}

func multipartUpload(t *testing.T, filename, contentType string, body []byte, userInfo string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="report"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(body)

	if userInfo != "" {
		if err := mw.WriteField("userInfo", userInfo); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func doAnalyze(t *testing.T, srv *Server, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestAnalyze_Success(t *testing.T) {
	set := metrics.NewParser(nil).Parse("Glucose: 95 mg/dL")
	fa := &fakeAnalyzer{res: pipeline.Result{
		Summary:  "looks fine",
		Strategy: document.DirectPDFText,
		Metrics:  set,
	}}
	srv := New(fa, 0, nil)

	body, ct := multipartUpload(t, "report.pdf", "application/pdf", []byte("%PDF-1.4"), `{"name":"Ada","age":52}`)
	rec := doAnalyze(t, srv, body, ct)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Summary  string             `json:"summary"`
		Strategy string             `json:"strategy"`
		Degraded bool               `json:"degraded"`
		Metrics  map[string]float64 `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Summary != "looks fine" || resp.Strategy != "pdf-text" || resp.Degraded {
		t.Errorf("response = %+v", resp)
	}
	if resp.Metrics["glucose"] != 95 {
		t.Errorf("metrics = %v", resp.Metrics)
	}
	if fa.gotDoc.MediaType != document.MediaPDF {
		t.Errorf("media type = %q", fa.gotDoc.MediaType)
	}
	if fa.gotPatient == nil || fa.gotPatient.Name != "Ada" || fa.gotPatient.Age != "52" {
		t.Errorf("patient = %+v", fa.gotPatient)
	}
}

func TestAnalyze_MissingReportFile(t *testing.T) {
	srv := New(&fakeAnalyzer{}, 0, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("userInfo", `{}`)
	_ = mw.Close()

	rec := doAnalyze(t, srv, &buf, mw.FormDataContentType())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_INPUT") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestAnalyze_MalformedUserInfo(t *testing.T) {
	srv := New(&fakeAnalyzer{}, 0, nil)

	body, ct := multipartUpload(t, "report.pdf", "application/pdf", []byte("%PDF"), `{"age":`)
	rec := doAnalyze(t, srv, body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyze_UnsupportedMediaType(t *testing.T) {
	fa := &fakeAnalyzer{err: common.ErrUnsupportedMediaType}
	srv := New(fa, 0, nil)

	body, ct := multipartUpload(t, "report.tiff", "image/tiff", []byte("II*"), "")
	rec := doAnalyze(t, srv, body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "UNSUPPORTED_MEDIA_TYPE") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestAnalyze_SummaryServiceFailure(t *testing.T) {
	fa := &fakeAnalyzer{err: common.ErrSummaryService}
	srv := New(fa, 0, nil)

	body, ct := multipartUpload(t, "report.pdf", "application/pdf", []byte("%PDF"), "")
	rec := doAnalyze(t, srv, body, ct)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "SUMMARY_SERVICE_FAILURE") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestAnalyze_Timeout(t *testing.T) {
	fa := &fakeAnalyzer{err: context.DeadlineExceeded}
	srv := New(fa, 0, nil)

	body, ct := multipartUpload(t, "report.pdf", "application/pdf", []byte("%PDF"), "")
	rec := doAnalyze(t, srv, body, ct)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
}

func TestAnalyze_InternalErrorHidesDetail(t *testing.T) {
	fa := &fakeAnalyzer{err: errors.New("pg: connection refused")}
	srv := New(fa, 0, nil)

	body, ct := multipartUpload(t, "report.pdf", "application/pdf", []byte("%PDF"), "")
	rec := doAnalyze(t, srv, body, ct)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("internal detail leaked: %s", rec.Body)
	}
}

func TestHealthz(t *testing.T) {
	srv := New(&fakeAnalyzer{}, 0, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeclaredMediaType(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		filename    string
		want        document.MediaType
	}{
		{"pdf header", "application/pdf", "x.bin", document.MediaPDF},
		{"jpg alias", "image/jpg", "x.bin", document.MediaJPEG},
		{"charset parameter", "image/png; charset=binary", "x.bin", document.MediaPNG},
		{"octet-stream falls back to extension", "application/octet-stream", "scan.jpeg", document.MediaJPEG},
		{"no header uses extension", "", "report.PDF", document.MediaPDF},
		{"unknown type passes through", "image/tiff", "x.tiff", "image/tiff"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := declaredMediaType(tc.contentType, tc.filename); got != tc.want {
				t.Errorf("declaredMediaType(%q, %q) = %q, want %q", tc.contentType, tc.filename, got, tc.want)
			}
		})
	}
}
