package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Robinhood75t/Backend-MedScan-AI/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) add(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, s)
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.add("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		m.add("ERROR: " + msg + " - " + err.Error())
		return
	}
	m.add("ERROR: " + msg)
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.add("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.add("WARN: " + msg)
}

func (m *MockLogger) Contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.messages {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// fakeRunner records the last command and returns canned output.
type fakeRunner struct {
	stdout []byte
	stderr []byte
	err    error

	calls int
	name  string
	args  []string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls++
	r.name = name
	r.args = args
	return r.stdout, r.stderr, r.err
}

type fakePDFEngine struct {
	mu    sync.Mutex
	pages []string
	err   error
	calls int
}

func (e *fakePDFEngine) Name() string { return "fake" }

func (e *fakePDFEngine) ExtractPages(ctx context.Context, pdfBytes []byte) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return e.pages, e.err
}

type fakeOCR struct {
	text  string
	err   error
	calls int
	path  string
}

func (o *fakeOCR) Recognize(ctx context.Context, path string) (string, error) {
	o.calls++
	o.path = path
	return o.text, o.err
}

// fakeCompletionClient counts calls and records the prompt it was given.
type fakeCompletionClient struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  int
	prompt string
}

func (c *fakeCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.prompt = prompt
	return c.reply, c.err
}

func (c *fakeCompletionClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// saveUpload stores content through a real FileUploadStore rooted in a temp dir.
func saveUpload(t *testing.T, content, contentType string) (*domain.UploadedDocument, string) {
	t.Helper()
	dir := t.TempDir()
	store := NewUploadStore(dir, 5<<20, NewMockLogger())
	doc, err := store.Save(strings.NewReader(content), "report", contentType)
	if err != nil {
		t.Fatalf("failed to save upload: %v", err)
	}
	return doc, dir
}

// buildTestPDF writes a minimal PDF with one Helvetica text line per page.
func buildTestPDF(pages ...string) []byte {
	objs := []string{"<< /Type /Catalog /Pages 2 0 R >>"}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs,
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}
