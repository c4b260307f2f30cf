package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/cache"
)

func TestExtractJSONObjectTakesOutermostSpan(t *testing.T) {
	in := `Sure, here you go: {"a": {"b": 1}} -- hope that helps`
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatalf("ExtractJSONObject: %v", err)
	}
	want := `{"a": {"b": 1}}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractJSONObjectNoBraces(t *testing.T) {
	if _, err := ExtractJSONObject("no braces here"); err != ErrNoJSONObject {
		t.Fatalf("expected ErrNoJSONObject, got %v", err)
	}
}

func TestGenerateParsesStreamedChunks(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"response":"{\"tool_name\":","done":false}` + "\n"))
		w.Write([]byte(`{"response":"\"X\"}","done":true}` + "\n"))
	}))
	defer srv.Close()

	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	c := &Client{BaseURL: srv.URL, MaxAttempts: 1, AuditLogPath: auditPath}
	got, err := c.Generate(context.Background(), Request{Model: "llama3.2", Prompt: "hi", Temperature: 0.01, TopP: 1.0})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"tool_name":"X"}` {
		t.Fatalf("unexpected response: %q", got)
	}

	var sent map[string]any
	if err := json.Unmarshal(body, &sent); err != nil {
		t.Fatalf("unmarshal sent body: %v", err)
	}
	if _, nested := sent["options"]; nested {
		t.Fatalf("expected flat request body, found nested options: %s", body)
	}
	if sent["temperature"] != 0.01 || sent["top_p"] != 1.0 {
		t.Fatalf("expected top-level temperature/top_p, got %s", body)
	}

	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if !strings.Contains(string(data), "llama3.2") {
		t.Fatalf("expected audit log to mention model name: %s", data)
	}
}

func TestPingSucceedsOnOKAndFailsOnServerError(t *testing.T) {
	var status int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("expected /api/tags, got %s", r.URL.Path)
		}
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	status = http.StatusOK
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("expected Ping to succeed, got %v", err)
	}

	status = http.StatusServiceUnavailable
	if err := c.Ping(context.Background()); !errors.Is(err, ErrModelUnreachable) {
		t.Fatalf("expected ErrModelUnreachable, got %v", err)
	}
}

func TestGenerateReturnsModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"missing\" not found"}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, MaxAttempts: 2, RetryBackoff: time.Millisecond}
	_, err := c.Generate(context.Background(), Request{Model: "missing", Prompt: "hi"})
	if err != ErrModelNotFound {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestGenerateServesFromCacheWithoutHittingServer(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"response":"{\"x\":1}","done":true}` + "\n"))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, MaxAttempts: 1, Cache: &cache.LLMCache{Dir: t.TempDir()}}
	req := Request{Model: "llama3.2", Prompt: "hi"}

	if _, err := c.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := c.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate (cached): %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 HTTP hit due to caching, got %d", hits)
	}
}

func TestGenerateRetriesOnUnreachable(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	c := &Client{BaseURL: "http://127.0.0.1:1", MaxAttempts: 2, RetryBackoff: time.Millisecond, AuditLogPath: auditPath}
	_, err := c.Generate(context.Background(), Request{Model: "m", Prompt: "hi"})
	if !errors.Is(err, ErrModelUnreachable) {
		t.Fatalf("expected ErrModelUnreachable from unreachable host, got %v", err)
	}
	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	// One audit line is written per attempt.
	attempts := strings.Count(string(data), "\n")
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}
