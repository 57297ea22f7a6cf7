package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/studycard/studycard/internal/llm"
	"github.com/studycard/studycard/internal/summarize"
)

type stubSummarizer struct {
	gotText string
	result  summarize.Result
}

func (s *stubSummarizer) Summarize(_ context.Context, text string) summarize.Result {
	s.gotText = text
	return s.result
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Text(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

type stubRenderer struct {
	outPath string
	err     error
}

func (s *stubRenderer) Render(_ summarize.Result, _, outPath string) error {
	s.outPath = outPath
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(outPath, []byte("%PDF-1.4"), 0644)
}

type stubStore struct {
	gotLimit int
	examples []llm.AggregatedExample
}

func (s *stubStore) Top(limit int) []llm.AggregatedExample {
	s.gotLimit = limit
	return s.examples
}

type testServer struct {
	*Server
	summarizer *stubSummarizer
	extractor  *stubExtractor
	renderer   *stubRenderer
	store      *stubStore
	uploadDir  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	uploadDir := filepath.Join(dir, "uploads")
	outputDir := filepath.Join(dir, "outputs")
	for _, d := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}

	sum := &stubSummarizer{result: summarize.Result{
		LearnPoints: []string{"导数描述变化率"},
		Confusions:  []summarize.Confusion{{Left: "导数", Right: "微分", Explain: "变化率与增量"}},
	}}
	ext := &stubExtractor{text: "识别出的笔记文字"}
	ren := &stubRenderer{}
	store := &stubStore{}

	srv := New(
		Config{Port: 0, UploadDir: uploadDir, OutputDir: outputDir},
		sum, ext, ren, store,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return &testServer{Server: srv, summarizer: sum, extractor: ext, renderer: ren, store: store, uploadDir: uploadDir}
}

func multipartImage(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake image bytes"))
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestIndexServesUploadForm(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `action="/upload"`) {
		t.Error("index page missing upload form")
	}
}

func TestUploadWithoutFileRejected(t *testing.T) {
	ts := newTestServer(t)
	body, ctype := multipartImage(t, "wrong_field", "note.png")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)

	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadFlow(t *testing.T) {
	ts := newTestServer(t)
	body, ctype := multipartImage(t, "image", "note.png")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)

	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ts.summarizer.gotText != "识别出的笔记文字" {
		t.Errorf("summarizer received %q", ts.summarizer.gotText)
	}

	page := rec.Body.String()
	if !strings.Contains(page, "导数描述变化率") {
		t.Error("result page missing learn point")
	}
	if !strings.Contains(page, "/outputs/") || !strings.Contains(page, ".pdf") {
		t.Error("result page missing pdf link")
	}

	// The upload must be persisted under a unique name ending in the
	// original base name.
	entries, err := os.ReadDir(ts.uploadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "_note.png") {
		t.Errorf("unexpected upload dir contents %v", entries)
	}
}

func TestUploadOCRFailureProceedsWithEmptyText(t *testing.T) {
	ts := newTestServer(t)
	ts.extractor.err = errors.New("tesseract missing")
	ts.summarizer.gotText = "sentinel"

	body, ctype := multipartImage(t, "image", "note.jpg")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)

	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ts.summarizer.gotText != "" {
		t.Errorf("expected empty text after ocr failure, got %q", ts.summarizer.gotText)
	}
}

func TestUploadRenderFailureOmitsPDFLink(t *testing.T) {
	ts := newTestServer(t)
	ts.renderer.err = errors.New("disk full")

	body, ctype := multipartImage(t, "image", "note.png")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)

	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "/outputs/") {
		t.Error("result page must not link a pdf that failed to render")
	}
}

func TestExamplesAPI(t *testing.T) {
	ts := newTestServer(t)
	ts.store.examples = []llm.AggregatedExample{
		{Format: "text", Freq: 3, Score: 3.5},
	}

	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/examples?limit=3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ts.store.gotLimit != 3 {
		t.Errorf("expected limit 3, got %d", ts.store.gotLimit)
	}

	var got []llm.AggregatedExample
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 1 || got[0].Format != "text" || got[0].Freq != 3 {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestExamplesAPIInvalidLimit(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/examples?limit=zero", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
