package summarize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/studycard/studycard/internal/config"
	"github.com/studycard/studycard/internal/llm"
)

// Summarizer orchestrates one summarization: backend selection, prompt
// building, extraction and normalization. Every error path resolves to the
// local fallback; Summarize never fails.
type Summarizer struct {
	provider llm.Provider // nil means local-only
	logger   *slog.Logger
}

// New builds a Summarizer for the configured backend. The example memory
// is only used by the remote (negotiating) backend.
func New(cfg *config.Config, memory *llm.ExampleMemory, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	var provider llm.Provider
	switch cfg.Backend {
	case config.BackendRemote:
		provider = llm.NewDeepSeekProvider(cfg.EndpointURL, cfg.APIKey, cfg.ModelID, memory, logger)
	case config.BackendOpenAI:
		if cfg.APIKey != "" {
			provider = llm.NewOpenAIProvider(cfg.APIKey, cfg.OpenAIModel)
		} else {
			logger.Warn("openai backend selected without api key, using local summarizer")
		}
	}
	return &Summarizer{provider: provider, logger: logger}
}

// NewWithProvider builds a Summarizer around an explicit provider. A nil
// provider selects the local fallback summarizer.
func NewWithProvider(p llm.Provider, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{provider: p, logger: logger}
}

// Summarize turns OCR text into a canonical result. Remote failures are
// invisible to the caller beyond degraded content quality.
func (s *Summarizer) Summarize(ctx context.Context, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{
			LearnPoints: []string{emptyInputPoint},
			Confusions:  []Confusion{},
		}
	}

	if s.provider == nil {
		return fallbackSummarize(text)
	}

	system, user := BuildPrompt(text)
	raw, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System:      system,
		User:        user,
		MaxTokens:   800,
		Temperature: 0,
	})
	if err != nil {
		s.logger.Warn("backend call failed, using local fallback",
			"provider", s.provider.Name(), "error", err)
		return fallbackSummarize(text)
	}

	parsed, ok := ExtractJSON(raw)
	if !ok {
		s.logger.Warn("no JSON object in model output, using local fallback",
			"provider", s.provider.Name(), "output_len", len(raw))
		return fallbackSummarize(text)
	}
	return Normalize(parsed)
}
