package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckAvailability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"models":[{"name":"gpt-oss:20b"},{"name":"llama3:8b"}]}`)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Model: "gpt-oss:20b"})
	status, err := c.CheckAvailability(context.Background())
	if err != nil {
		t.Fatalf("CheckAvailability failed: %v", err)
	}
	if len(status.Models) != 2 {
		t.Errorf("expected 2 models, got %d", len(status.Models))
	}
	if !status.ModelReady {
		t.Error("expected configured model to be reported ready")
	}
}

func TestCheckAvailability_ModelMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[{"name":"llama3:8b"}]}`)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Model: "gpt-oss:20b"})
	status, err := c.CheckAvailability(context.Background())
	if err != nil {
		t.Fatalf("CheckAvailability failed: %v", err)
	}
	if status.ModelReady {
		t.Error("expected model to be reported missing")
	}
}

func TestCheckAvailability_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	if _, err := c.CheckAvailability(context.Background()); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req["model"] != "gpt-oss:20b" {
			t.Errorf("unexpected model %v", req["model"])
		}
		if req["stream"] != false {
			t.Error("expected stream: false")
		}
		opts, ok := req["options"].(map[string]any)
		if !ok {
			t.Fatal("missing options")
		}
		for _, key := range []string{"temperature", "top_p", "top_k", "num_predict", "repeat_penalty", "num_ctx"} {
			if _, ok := opts[key]; !ok {
				t.Errorf("missing option %q", key)
			}
		}

		fmt.Fprint(w, `{"thinking":"reasoning here","response":"analysis here","done_reason":"stop","eval_count":100,"total_duration":1000000000}`)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Model: "gpt-oss:20b"})
	result, err := c.Generate(context.Background(), "analyze this ang")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.Variant != VariantTraceAndAnswer {
		t.Errorf("expected trace-and-answer variant, got %d", result.Variant)
	}
	if result.Output() != "reasoning here"+TraceSeparator+"analysis here" {
		t.Errorf("unexpected output %q", result.Output())
	}
	if result.RequestID == "" {
		t.Error("expected a request id")
	}
}

func TestGenerate_TruncatedIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":"partial output","done_reason":"length"}`)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	result, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("truncated response should succeed, got %v", err)
	}
	if !result.Truncated {
		t.Error("expected truncated flag")
	}
	if result.Output() != "partial output" {
		t.Errorf("unexpected output %q", result.Output())
	}
}

func TestGenerate_EmptyPreservesPayload(t *testing.T) {
	body := `{"done":true,"load_duration":42}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	_, err := c.Generate(context.Background(), "prompt")

	var emptyErr *EmptyError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyError, got %v", err)
	}
	if string(emptyErr.Raw) != body {
		t.Errorf("raw payload not preserved: %s", emptyErr.Raw)
	}
	if emptyErr.RequestID == "" {
		t.Error("expected request id on empty error")
	}
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	_, err := c.Generate(context.Background(), "prompt")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", statusErr.StatusCode)
	}
}

func TestSetOptions_ConcurrentWithGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":"commentary","done_reason":"stop"}`)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})

	// Hot reload replaces options from the config watch goroutine while
	// generations run on the main one. Exercised under -race.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			opts := DefaultOptions()
			opts.Temperature = float64(i) / 100
			c.SetOptions(opts)
		}
	}()

	for i := 0; i < 20; i++ {
		if _, err := c.Generate(context.Background(), "prompt"); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
	}
	<-done
}
