package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

// fakeRunner records invocations and returns canned output per binary name.
type fakeRunner struct {
	calls   [][]string
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if err, ok := f.errs[name]; ok && err != nil {
		return nil, []byte("engine error"), err
	}
	return []byte(f.outputs[name]), nil, nil
}

func testExtractor(cfg Config, runner Runner) *Extractor {
	e := NewExtractor(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.runner = runner
	return e
}

func TestTextRunsTesseract(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"tesseract": "识别出的文字\n"}}
	e := testExtractor(Config{}, runner)

	text, err := e.Text(context.Background(), "/tmp/img.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "识别出的文字\n" {
		t.Errorf("unexpected text %q", text)
	}

	call := runner.calls[0]
	if call[0] != "tesseract" || call[1] != "/tmp/img.png" || call[2] != "stdout" {
		t.Errorf("unexpected invocation %v", call)
	}
	if call[3] != "-l" || call[4] != "chi_sim+eng" {
		t.Errorf("expected default language, got %v", call)
	}
}

func TestTextPropagatesEngineError(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"tesseract": errors.New("exit status 1")}}
	e := testExtractor(Config{}, runner)

	if _, err := e.Text(context.Background(), "/tmp/img.png"); err == nil {
		t.Error("expected error from failing engine")
	}
}

func TestAlternateEngineUsedFirst(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"paddleocr": "替代引擎结果"}}
	e := testExtractor(Config{UseAlternate: true, AltCommand: "paddleocr --lang ch"}, runner)

	text, err := e.Text(context.Background(), "/tmp/img.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "替代引擎结果" {
		t.Errorf("unexpected text %q", text)
	}
	call := runner.calls[0]
	if call[0] != "paddleocr" || call[1] != "--lang" || call[2] != "ch" || call[3] != "/tmp/img.png" {
		t.Errorf("unexpected alternate invocation %v", call)
	}
}

func TestAlternateFailureFallsBackToTesseract(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"tesseract": "本地结果"},
		errs:    map[string]error{"paddleocr": errors.New("not installed")},
	}
	e := testExtractor(Config{UseAlternate: true, AltCommand: "paddleocr"}, runner)

	text, err := e.Text(context.Background(), "/tmp/img.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "本地结果" {
		t.Errorf("unexpected text %q", text)
	}
	if len(runner.calls) != 2 {
		t.Errorf("expected alternate then tesseract, got %v", runner.calls)
	}
}

func TestAlternateBlankCommandUsesTesseract(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"tesseract": "本地结果"}}
	e := testExtractor(Config{UseAlternate: true, AltCommand: "   \t"}, runner)

	text, err := e.Text(context.Background(), "/tmp/img.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "本地结果" {
		t.Errorf("unexpected text %q", text)
	}
	if len(runner.calls) != 1 || runner.calls[0][0] != "tesseract" {
		t.Errorf("blank alternate command must go straight to tesseract, got %v", runner.calls)
	}
}

func TestAlternateEmptyOutputFallsBack(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"paddleocr": "  \n", "tesseract": "本地结果"}}
	e := testExtractor(Config{UseAlternate: true, AltCommand: "paddleocr"}, runner)

	text, err := e.Text(context.Background(), "/tmp/img.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "本地结果" {
		t.Errorf("expected tesseract fallback, got %q", text)
	}
}
