package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/domain"
	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/domain/report"
)

func testSummary() report.Summary {
	s := report.Summarize(domopp.Fallback())
	s.Date = "2026-10-18"
	return s
}

func TestNarrator_Narrate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if !strings.Contains(req.Messages[1].Content, "PEPE") {
			t.Errorf("expected top pick in prompt, got %q", req.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Memecoins led today.  "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 40, "completion_tokens": 5, "total_tokens": 45}
		}`))
	}))
	defer server.Close()

	n := NewNarrator(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	text, err := n.Narrate(context.Background(), testSummary())
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if text != "Memecoins led today." {
		t.Errorf("unexpected narrative: %q", text)
	}
}

func TestNarrator_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	n := NewNarrator(&Config{APIKey: "k", BaseURL: server.URL, Model: "m"})

	_, err := n.Narrate(context.Background(), testSummary())
	if !errors.Is(err, domain.ErrNarrativeProvider) {
		t.Errorf("expected ErrNarrativeProvider, got %v", err)
	}
}

func TestNarrator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
	}))
	defer server.Close()

	n := NewNarrator(&Config{APIKey: "bad", BaseURL: server.URL, Model: "m"})

	_, err := n.Narrate(context.Background(), testSummary())
	if !errors.Is(err, domain.ErrNarrativeProvider) {
		t.Fatalf("expected ErrNarrativeProvider, got %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"quota exceeded"}`)); got != "quota exceeded" {
		t.Errorf("unexpected detail: %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("expected empty detail, got %q", got)
	}
}

func TestSummaryPrompt(t *testing.T) {
	p := summaryPrompt(testSummary())
	for _, want := range []string{"Date: 2026-10-18", "Opportunities: 2", "PEPE", "DOGE"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
