package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
	"github.com/Robinhood75t/Backend-MedScan-AI/internal/service"
)

const canonicalSummary = `{"Patient_Name":"Jane Doe","Hospital_Or_Clinic":"Not Found","Doctor_Name":"Dr. Rao","English_Summary":"Mild flu.","Hindi_Summary":"हल्का फ्लू।","Diagnosis":"- Mild flu","Prescription":"- Paracetamol 500mg, twice daily","Follow_Up":"- Rest"}`

// stubExtractor returns fixed text for every supported document.
type stubExtractor struct {
	text string
}

func (s *stubExtractor) Extract(ctx context.Context, doc *domain.UploadedDocument) (*domain.ExtractedText, error) {
	if doc.Kind == domain.ContentKindUnsupported {
		return nil, domain.ErrUnsupportedFileType
	}
	if _, err := doc.ReadAll(); err != nil {
		return nil, err
	}
	return &domain.ExtractedText{Content: s.text, Method: domain.ExtractionMethodPDFText, Pages: 1}, nil
}

type stubCompletionClient struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (c *stubCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.reply, c.err
}

type testServer struct {
	handler   http.Handler
	uploadDir string
	client    *stubCompletionClient
	extractor *stubExtractor
}

func newTestServer(t *testing.T, maxBytes int64) *testServer {
	t.Helper()
	logger := NewMockHandlerLogger()
	ts := &testServer{
		uploadDir: t.TempDir(),
		client:    &stubCompletionClient{reply: canonicalSummary},
		extractor: &stubExtractor{text: "Patient: Jane Doe. Diagnosis: mild flu."},
	}
	parser, err := service.NewResultParser(logger)
	if err != nil {
		t.Fatalf("failed to build parser: %v", err)
	}
	store := service.NewUploadStore(ts.uploadDir, maxBytes, logger)
	pipeline := service.NewSummaryPipeline(ts.extractor, ts.client, parser, logger)
	ts.handler = NewRouter(NewSummarizeHandler(store, pipeline, maxBytes, logger), []string{"*"}, logger)
	return ts
}

func (ts *testServer) uploadsLeft(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(ts.uploadDir)
	if err != nil {
		return 0
	}
	return len(entries)
}

func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := mw.WriteField("note", "ignored"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	pw, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := pw.Write(content); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func (ts *testServer) post(t *testing.T, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %s", rr.Body.String())
	}
	msg, ok := body["error"]
	if !ok || len(body) != 1 {
		t.Fatalf("expected {\"error\": ...}, got %s", rr.Body.String())
	}
	return msg
}

func TestSummarize_StructuredResult(t *testing.T) {
	ts := newTestServer(t, 5<<20)
	body, ct := multipartBody(t, "file", "report.pdf", "application/pdf", []byte("%PDF-1.4"))

	rr := ts.post(t, body, ct)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"result":`+canonicalSummary+`}` {
		t.Fatalf("unexpected body: %s", got)
	}
	if ts.uploadsLeft(t) != 0 {
		t.Fatal("expected the temp upload to be released")
	}
}

func TestSummarize_FallbackResult(t *testing.T) {
	ts := newTestServer(t, 5<<20)
	ts.client.reply = "I cannot process this."
	body, ct := multipartBody(t, "file", "scan.png", "image/png", []byte("\x89PNG"))

	rr := ts.post(t, body, ct)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"result":{"summary":"I cannot process this."}}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestSummarize_MissingFile(t *testing.T) {
	ts := newTestServer(t, 5<<20)

	tests := []struct {
		name        string
		body        *bytes.Buffer
		contentType string
	}{
		{name: "not multipart", body: bytes.NewBufferString(`{"file":"x"}`), contentType: "application/json"},
		{name: "no content type", body: &bytes.Buffer{}},
	}
	wrongField, wrongCT := multipartBody(t, "document", "report.pdf", "application/pdf", []byte("%PDF"))
	tests = append(tests, struct {
		name        string
		body        *bytes.Buffer
		contentType string
	}{name: "wrong field name", body: wrongField, contentType: wrongCT})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.post(t, tt.body, tt.contentType)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
			if msg := decodeError(t, rr); msg != MsgMissingFile {
				t.Fatalf("unexpected error message: %s", msg)
			}
		})
	}
	if ts.client.calls != 0 {
		t.Fatalf("expected no completion calls, got %d", ts.client.calls)
	}
}

func TestSummarize_UnsupportedType(t *testing.T) {
	ts := newTestServer(t, 5<<20)
	body, ct := multipartBody(t, "file", "notes.txt", "text/plain", []byte("Patient: Jane Doe"))

	rr := ts.post(t, body, ct)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status %d, got %d", http.StatusUnsupportedMediaType, rr.Code)
	}
	decodeError(t, rr)
	if ts.client.calls != 0 {
		t.Fatalf("expected no completion calls, got %d", ts.client.calls)
	}
	if ts.uploadsLeft(t) != 0 {
		t.Fatal("expected the temp upload to be released")
	}
}

func TestSummarize_EmptyExtraction(t *testing.T) {
	ts := newTestServer(t, 5<<20)
	ts.extractor.text = "  \n\t "
	body, ct := multipartBody(t, "file", "blank.pdf", "application/pdf", []byte("%PDF"))

	rr := ts.post(t, body, ct)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}
	decodeError(t, rr)
	if ts.client.calls != 0 {
		t.Fatalf("expected no completion calls, got %d", ts.client.calls)
	}
	if ts.uploadsLeft(t) != 0 {
		t.Fatal("expected the temp upload to be released")
	}
}

func TestSummarize_TooLarge(t *testing.T) {
	ts := newTestServer(t, 16)
	body, ct := multipartBody(t, "file", "big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 64))

	rr := ts.post(t, body, ct)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}
	if msg := decodeError(t, rr); msg != MsgFileTooLarge {
		t.Fatalf("unexpected error message: %s", msg)
	}
	if ts.uploadsLeft(t) != 0 {
		t.Fatal("expected the partial upload to be removed")
	}
}

func TestSummarize_TruncatedBody(t *testing.T) {
	ts := newTestServer(t, 5<<20)
	full, ct := multipartBody(t, "file", "report.pdf", "application/pdf", bytes.Repeat([]byte("a"), 512))
	truncated := bytes.NewBuffer(full.Bytes()[:full.Len()-100])

	rr := ts.post(t, truncated, ct)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if msg := decodeError(t, rr); msg != MsgBadUpload {
		t.Fatalf("unexpected error message: %s", msg)
	}
	if ts.uploadsLeft(t) != 0 {
		t.Fatal("expected the partial upload to be removed")
	}
	if ts.client.calls != 0 {
		t.Fatalf("expected no completion calls, got %d", ts.client.calls)
	}
}

// failingStore rejects every upload without reading it.
type failingStore struct{}

func (failingStore) Save(r io.Reader, originalName, contentType string) (*domain.UploadedDocument, error) {
	return nil, errors.New("disk full")
}

func TestSummarize_StorageFailureIsInternal(t *testing.T) {
	h := NewSummarizeHandler(failingStore{}, nil, 5<<20, NewMockHandlerLogger())
	body, ct := multipartBody(t, "file", "report.pdf", "application/pdf", []byte("%PDF"))

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.Summarize(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	decodeError(t, rr)
}

func TestSummarize_UpstreamFailure(t *testing.T) {
	ts := newTestServer(t, 5<<20)
	ts.client.err = &domain.UpstreamError{Provider: "perplexity", StatusCode: 500, Body: "internal error"}
	body, ct := multipartBody(t, "file", "report.pdf", "application/pdf", []byte("%PDF"))

	rr := ts.post(t, body, ct)

	if rr.Code < 500 {
		t.Fatalf("expected a 5xx status, got %d", rr.Code)
	}
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rr.Code)
	}
	decodeError(t, rr)
	if ts.client.calls != 1 {
		t.Fatalf("expected exactly one completion call, got %d", ts.client.calls)
	}
	if ts.uploadsLeft(t) != 0 {
		t.Fatal("expected the temp upload to be released")
	}
}

func TestSummarize_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, 5<<20)
	req := httptest.NewRequest(http.MethodGet, "/api/summarize", nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"report.pdf":            "report.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\scan.png`:     "scan.png",
		"   ":                   "document",
		"":                      "document",
		"folder/inner/name.jpg": "name.jpg",
	}
	for in, want := range tests {
		if got := sanitizeFileName(in); got != want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
