package cmd

import (
	"fmt"
	"log/slog"

	"github.com/studycard/studycard/internal/card"
	"github.com/studycard/studycard/internal/config"
	"github.com/studycard/studycard/internal/llm"
	"github.com/studycard/studycard/internal/ocr"
	"github.com/studycard/studycard/internal/summarize"
)

// loadConfig loads and validates the config file, falling back to
// defaults when it does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating data directories: %w", err)
	}
	return cfg, nil
}

// buildSummarizer wires example memory and the configured backend.
func buildSummarizer(cfg *config.Config, logger *slog.Logger) (*summarize.Summarizer, *llm.ExampleMemory) {
	memory := llm.NewExampleMemory(cfg.ExamplesFile(), logger)
	return summarize.New(cfg, memory, logger), memory
}

func buildExtractor(cfg *config.Config, logger *slog.Logger) *ocr.Extractor {
	return ocr.NewExtractor(ocr.Config{
		Tesseract:    cfg.OCRCommand,
		Lang:         cfg.OCRLang,
		UseAlternate: cfg.UseAlternateOCR,
		AltCommand:   cfg.AltOCRCommand,
	}, logger)
}

func buildRenderer(cfg *config.Config, logger *slog.Logger) *card.Renderer {
	return card.NewRenderer(cfg.FontPath, logger)
}
