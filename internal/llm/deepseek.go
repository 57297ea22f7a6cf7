package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	requestTimeout    = 30 * time.Second
	max403Retries     = 3
	formatPause       = 300 * time.Millisecond
	savedExampleLimit = 5
	snippetLen        = 200
	defaultMaxTokens  = 800
)

// DeepSeekProvider talks to a DeepSeek-compatible endpoint whose exact
// request schema is unknown ahead of time. It discovers a working payload
// shape by probing a fixed ladder of candidate bodies, remembers successful
// bodies in an ExampleMemory and replays the best-scored ones first on
// later calls.
type DeepSeekProvider struct {
	endpointURL string
	apiKey      string
	model       string
	client      *http.Client
	memory      *ExampleMemory
	logger      *slog.Logger

	// Test seams.
	sleep  func(time.Duration)
	jitter func() float64
}

// NewDeepSeekProvider creates a negotiating provider. memory may be shared
// with read-only consumers such as the report surface.
func NewDeepSeekProvider(endpointURL, apiKey, model string, memory *ExampleMemory, logger *slog.Logger) *DeepSeekProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeepSeekProvider{
		endpointURL: endpointURL,
		apiKey:      apiKey,
		model:       model,
		client:      &http.Client{Timeout: requestTimeout},
		memory:      memory,
		logger:      logger,
		sleep:       time.Sleep,
		jitter:      rand.Float64,
	}
}

func (p *DeepSeekProvider) Name() string { return "deepseek" }

// Complete implements Provider by concatenating the system and user parts
// into a single prompt; the remote schema is unknown, so role separation is
// only meaningful for the chat-style candidate bodies.
func (p *DeepSeekProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	prompt := req.User
	if req.System != "" {
		prompt = req.System + "\n" + req.User
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return p.Negotiate(ctx, prompt, maxTokens, req.Temperature)
}

// candidate is one concrete request payload shape tried against the endpoint.
type candidate struct {
	name string
	body map[string]any
}

// failure remembers the last observed error across candidates.
type failure struct {
	status  int
	snippet string
	err     error
}

// Negotiate runs the full candidate sequence for one prompt: saved bodies
// by descending score, then the fixed schema ladder, model-bearing shapes
// last. The first candidate yielding non-empty extracted text wins and is
// persisted; if every candidate fails, a *BackendError carries the last
// observed failure.
func (p *DeepSeekProvider) Negotiate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if p.endpointURL == "" || p.apiKey == "" {
		return "", ErrNotConfigured
	}

	var last failure

	// Previously successful bodies first, one best-effort attempt each.
	// A 403 here falls through to normal probing instead of retrying.
	if p.memory != nil {
		for _, saved := range p.memory.Top(savedExampleLimit) {
			name := "saved:" + saved.Format
			status, body, err := p.post(ctx, saved.Body)
			if err != nil {
				p.logger.Warn("saved example request failed", "format", name, "error", err)
				last = failure{err: err}
				continue
			}
			p.logger.Debug("saved example attempt", "format", name, "status", status, "score", saved.Score, "snippet", snippet(string(body)))
			if status >= 400 {
				last = failure{status: status, snippet: snippet(string(body))}
				continue
			}
			if text := extractResponseText(body); text != "" {
				p.record(saved.Format, saved.Body, text, status)
				return text, nil
			}
			last = failure{snippet: "no usable text in response"}
		}
	}

	for _, cand := range p.candidateFormats(prompt, maxTokens, temperature) {
		text, ok, f := p.tryFormat(ctx, cand)
		if ok {
			return text, nil
		}
		if f != nil {
			last = *f
		}
		// Fixed pause between distinct format attempts to avoid
		// hammering the endpoint.
		p.sleep(formatPause)
	}

	p.logger.Warn("all request formats failed", "status", last.status, "snippet", last.snippet, "error", last.err)
	return "", &BackendError{Status: last.status, Snippet: last.snippet, Err: last.err}
}

// tryFormat issues one candidate body, retrying only on 403 with
// exponential backoff (base 2, small jitter, capped attempts).
func (p *DeepSeekProvider) tryFormat(ctx context.Context, cand candidate) (string, bool, *failure) {
	for attempt := 1; ; attempt++ {
		status, body, err := p.post(ctx, cand.body)
		if err != nil {
			p.logger.Warn("format request failed", "format", cand.name, "error", err)
			return "", false, &failure{err: err}
		}
		p.logger.Debug("format attempt", "format", cand.name, "status", status, "snippet", snippet(string(body)))

		if status == http.StatusForbidden {
			if attempt > max403Retries {
				p.logger.Warn("giving up on format after rate limiting", "format", cand.name, "attempts", attempt)
				return "", false, &failure{status: status, snippet: snippet(string(body))}
			}
			backoff := time.Duration((math.Pow(2, float64(attempt)) + p.jitter()*0.5) * float64(time.Second))
			p.logger.Debug("rate limited, backing off", "format", cand.name, "backoff", backoff)
			p.sleep(backoff)
			continue
		}
		if status >= 400 {
			return "", false, &failure{status: status, snippet: snippet(string(body))}
		}

		text := extractResponseText(body)
		if text == "" {
			return "", false, &failure{snippet: "no usable text in response"}
		}
		p.record(cand.name, cand.body, text, status)
		return text, true, nil
	}
}

// candidateFormats builds the fixed probing ladder. Minimal shapes come
// first; model-bearing variants are tried last so an unrecognized model
// value cannot mask a working simple shape.
func (p *DeepSeekProvider) candidateFormats(prompt string, maxTokens int, temperature float64) []candidate {
	userMsg := map[string]any{"role": "user", "content": prompt}
	systemMsg := map[string]any{"role": "system", "content": "你是教学助理。"}

	cands := []candidate{
		{"text", map[string]any{"text": prompt}},
		{"prompt", map[string]any{"prompt": prompt, "max_tokens": maxTokens, "temperature": temperature}},
		{"input", map[string]any{"input": prompt, "max_tokens": maxTokens, "temperature": temperature}},
		{"input_wrapped", map[string]any{"input": map[string]any{"text": prompt}, "max_tokens": maxTokens, "temperature": temperature}},
		{"chat_simple", map[string]any{"messages": []any{userMsg}, "max_tokens": maxTokens, "temperature": temperature}},
		{"chat_system", map[string]any{"messages": []any{systemMsg, userMsg}, "max_tokens": maxTokens, "temperature": temperature}},
	}

	if p.model != "" {
		cands = append(cands,
			candidate{"prompt_with_model", map[string]any{"model": p.model, "prompt": prompt, "max_tokens": maxTokens, "temperature": temperature}},
			candidate{"chat_simple_model", map[string]any{"model": p.model, "messages": []any{userMsg}, "max_tokens": maxTokens, "temperature": temperature}},
			candidate{"chat_system_model", map[string]any{"model": p.model, "messages": []any{systemMsg, userMsg}, "max_tokens": maxTokens, "temperature": temperature}},
		)
	}
	return cands
}

func (p *DeepSeekProvider) post(ctx context.Context, body map[string]any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpointURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func (p *DeepSeekProvider) record(format string, body map[string]any, text string, status int) {
	if p.memory == nil {
		return
	}
	p.memory.RecordSuccess(SuccessExample{
		Format:          format,
		Body:            body,
		ResponseSnippet: snippet(text),
		StatusCode:      status,
		Timestamp:       time.Now().UTC(),
	})
}

// extractResponseText pulls usable text out of a response body using a
// fixed field-priority search over common completion schemas. The raw body
// trimmed of whitespace is a last resort for non-schema responses only: a
// matched-but-empty priority field means the endpoint answered in a known
// schema with nothing in it, which must read as no usable text rather than
// echoing the serialized body back as content.
func extractResponseText(raw []byte) string {
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err == nil {
		if text, ok := textFromJSON(v); ok {
			return text
		}
	}
	return strings.TrimSpace(string(raw))
}

// textFromJSON reports whether any priority field is present; the returned
// text may be empty even when found.
func textFromJSON(v map[string]any) (string, bool) {
	if s, ok := v["text"].(string); ok {
		return s, true
	}
	if s, ok := v["result"].(string); ok {
		return s, true
	}
	if choices, ok := v["choices"].([]any); ok && len(choices) > 0 {
		if c, ok := choices[0].(map[string]any); ok {
			if s, ok := c["text"].(string); ok {
				return s, true
			}
			if msg, ok := c["message"].(map[string]any); ok {
				if s, ok := msg["content"].(string); ok {
					return s, true
				}
			}
		}
	}
	switch d := v["data"].(type) {
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if entry, ok := d[k].(map[string]any); ok {
				if s, ok := entry["text"].(string); ok {
					return s, true
				}
			}
		}
	case []any:
		if len(d) > 0 {
			if entry, ok := d[0].(map[string]any); ok {
				if s, ok := entry["text"].(string); ok {
					return s, true
				}
			}
		}
	}
	return "", false
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) > snippetLen {
		return string(r[:snippetLen])
	}
	return s
}
