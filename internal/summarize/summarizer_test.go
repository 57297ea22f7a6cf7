package summarize

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/studycard/studycard/internal/config"
	"github.com/studycard/studycard/internal/llm"
)

// fakeProvider records calls and returns a canned response or error.
type fakeProvider struct {
	calls    []llm.CompletionRequest
	response string
	err      error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSummarizeEmptyInputSkipsBackend(t *testing.T) {
	fake := &fakeProvider{response: `{"learn_points":["x"]}`}
	s := NewWithProvider(fake, testLogger())

	res := s.Summarize(context.Background(), "   \n\t ")
	if len(fake.calls) != 0 {
		t.Errorf("expected no backend call for empty input, got %d", len(fake.calls))
	}
	if len(res.LearnPoints) != 1 || res.LearnPoints[0] != emptyInputPoint {
		t.Errorf("expected empty-input placeholder, got %v", res.LearnPoints)
	}
	if res.Confusions == nil || len(res.Confusions) != 0 {
		t.Errorf("expected empty confusions, got %v", res.Confusions)
	}
}

func TestSummarizeLocalBackendDetectsPair(t *testing.T) {
	cfg := config.DefaultConfig() // backend: local
	s := New(cfg, nil, testLogger())

	res := s.Summarize(context.Background(), "求导数的定义并举例。")
	found := false
	for _, c := range res.Confusions {
		if c.Left == "导数" && c.Right == "微分" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 导数/微分 confusion, got %v", res.Confusions)
	}
}

func TestSummarizeUsesBackendResult(t *testing.T) {
	fake := &fakeProvider{
		response: `好的，结果如下：{"learn_points": ["导数是变化率"], "confusions": [{"left":"导数","right":"微分","explain":"不同概念","example":"速度"}]}`,
	}
	s := NewWithProvider(fake, testLogger())

	res := s.Summarize(context.Background(), "导数相关笔记")
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 backend call, got %d", len(fake.calls))
	}
	if len(res.LearnPoints) != 1 || res.LearnPoints[0] != "导数是变化率" {
		t.Errorf("unexpected learn points %v", res.LearnPoints)
	}
	if len(res.Confusions) != 1 || res.Confusions[0].Left != "导数" {
		t.Errorf("unexpected confusions %v", res.Confusions)
	}
}

func TestSummarizePromptContainsInstructionsAndText(t *testing.T) {
	fake := &fakeProvider{response: `{"learn_points":["x"]}`}
	s := NewWithProvider(fake, testLogger())

	s.Summarize(context.Background(), "用户的笔记内容")
	req := fake.calls[0]
	if !strings.Contains(req.System, "教学助理") {
		t.Errorf("system instruction missing: %q", req.System)
	}
	if !strings.Contains(req.User, "用户的笔记内容") {
		t.Error("user text missing from prompt")
	}
	if !strings.Contains(req.User, "输入：") || !strings.Contains(req.User, "输出：") {
		t.Error("few-shot examples missing from prompt")
	}
	if req.MaxTokens != 800 {
		t.Errorf("expected 800 max tokens, got %d", req.MaxTokens)
	}
}

func TestSummarizeBackendErrorFallsBack(t *testing.T) {
	fake := &fakeProvider{err: errors.New("connection refused")}
	s := NewWithProvider(fake, testLogger())

	res := s.Summarize(context.Background(), "求导数的定义")
	if len(res.LearnPoints) == 0 {
		t.Fatal("fallback must produce learn points")
	}
	// Fallback keeps the input line as a learning point.
	if res.LearnPoints[0] != "求导数的定义" {
		t.Errorf("expected fallback point, got %v", res.LearnPoints)
	}
}

func TestSummarizeNotConfiguredFallsBack(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendRemote // no endpoint/key configured
	s := New(cfg, nil, testLogger())

	res := s.Summarize(context.Background(), "概率与频率的区别")
	if len(res.LearnPoints) == 0 || len(res.Confusions) == 0 {
		t.Fatalf("expected fallback result, got %+v", res)
	}
	if res.Confusions[0].Left != "概率" {
		t.Errorf("expected 概率/频率 pair from fallback, got %v", res.Confusions)
	}
}

func TestSummarizeUnparsableOutputFallsBack(t *testing.T) {
	fake := &fakeProvider{response: "很抱歉，我不能输出 JSON。"}
	s := NewWithProvider(fake, testLogger())

	res := s.Summarize(context.Background(), "矩阵与行列式")
	if res.Confusions[0].Left != "行列式" {
		t.Errorf("expected fallback pair detection, got %v", res.Confusions)
	}
}

func TestSummarizeNormalizesBackendOutput(t *testing.T) {
	long := strings.Repeat("长", 100)
	fake := &fakeProvider{response: `{"learn_points": ["` + long + `"], "confusions": []}`}
	s := NewWithProvider(fake, testLogger())

	res := s.Summarize(context.Background(), "一些笔记")
	if got := len([]rune(res.LearnPoints[0])); got != 40 {
		t.Errorf("expected normalized 40-rune point, got %d", got)
	}
	if len(res.Confusions) != 1 {
		t.Errorf("expected placeholder confusion for empty list, got %v", res.Confusions)
	}
}

func TestNewSelectsLocalForOpenAIWithoutKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendOpenAI
	s := New(cfg, nil, testLogger())
	if s.provider != nil {
		t.Error("expected nil provider when openai backend has no key")
	}
}
