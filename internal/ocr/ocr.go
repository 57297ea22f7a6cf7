// Package ocr extracts text from uploaded note images by shelling out to
// an OCR engine. It is a thin boundary collaborator: callers treat a
// failed extraction as empty text.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "chi_sim+eng"

	// UseAlternate routes extraction through AltCommand first, falling
	// back to tesseract when it yields nothing.
	UseAlternate bool
	AltCommand   string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "chi_sim+eng"
	}
	// A blank alternate command counts as unset.
	cfg.AltCommand = strings.TrimSpace(cfg.AltCommand)
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Text runs OCR over the image at path and returns the recognized text.
func (e *Extractor) Text(ctx context.Context, path string) (string, error) {
	if e.cfg.UseAlternate && e.cfg.AltCommand != "" {
		text, err := e.alternateOCR(ctx, path)
		if err != nil {
			e.logger.Warn("alternate ocr failed, falling back to tesseract", "error", err)
		} else if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return e.tesseractOCR(ctx, path)
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}

// alternateOCR invokes the operator-configured engine, which receives the
// image path as its only argument and prints text to stdout.
func (e *Extractor) alternateOCR(ctx context.Context, path string) (string, error) {
	fields := strings.Fields(e.cfg.AltCommand)
	args := append(fields[1:], path)
	out, errb, err := e.runner.Run(ctx, fields[0], args...)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", fields[0], err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}
