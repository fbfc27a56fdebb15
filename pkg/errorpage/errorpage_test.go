package errorpage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-smartrender/pkg/render"
)

func sampleError() *render.RenderError {
	return &render.RenderError{Detail: render.Detail{
		Kind:      render.KindEngineError,
		Message:   "required title is missing from the context",
		Target:    "course/card.html",
		Line:      1,
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		ContextSummary: map[string]string{
			"audience": "string",
		},
		StackTrace: []string{"goroutine 1 [running]:", "main.main()"},
	}}
}

func TestHTML_DebugShowsDiagnostics(t *testing.T) {
	page := New(WithDebug(true)).HTML(sampleError())

	for _, want := range []string{
		"engine_error",
		"required title is missing",
		"course/card.html",
		"audience",
		"goroutine 1 [running]:",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("debug page missing %q:\n%s", want, page)
		}
	}
}

func TestHTML_NonDebugShowsGenericMessageOnly(t *testing.T) {
	page := New().HTML(sampleError())

	if !strings.Contains(page, GenericMessage) {
		t.Fatalf("expected generic message:\n%s", page)
	}
	for _, leaked := range []string{
		"course/card.html",
		"required title",
		"audience",
		"goroutine",
	} {
		if strings.Contains(page, leaked) {
			t.Fatalf("non-debug page leaked %q:\n%s", leaked, page)
		}
	}
}

func TestHTML_SanitisesEngineMessage(t *testing.T) {
	re := sampleError()
	re.Detail.Message = `unexpected token <script>alert(1)</script> near line 1`

	page := New(WithDebug(true)).HTML(re)
	if strings.Contains(page, "<script>") {
		t.Fatalf("script tag survived sanitisation:\n%s", page)
	}
	if !strings.Contains(page, "unexpected token") {
		t.Fatalf("message text lost during sanitisation:\n%s", page)
	}
}

func TestHTML_NilError(t *testing.T) {
	page := New(WithDebug(true)).HTML(nil)
	if !strings.Contains(page, GenericMessage) {
		t.Fatalf("expected generic message for nil error:\n%s", page)
	}
}

func TestJSON_Debug(t *testing.T) {
	body, err := New(WithDebug(true)).JSON(sampleError())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Kind           string            `json:"kind"`
			Message        string            `json:"message"`
			Target         string            `json:"target"`
			Line           int               `json:"line"`
			Timestamp      string            `json:"timestamp"`
			ContextSummary map[string]string `json:"context_summary"`
			StackTrace     []string          `json:"stack_trace"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if envelope.Success {
		t.Fatal("error envelope must report success=false")
	}
	if envelope.Error.Kind != "engine_error" || envelope.Error.Target != "course/card.html" {
		t.Fatalf("unexpected envelope: %+v", envelope.Error)
	}
	if envelope.Error.Timestamp != "2024-06-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp: %q", envelope.Error.Timestamp)
	}
	if envelope.Error.ContextSummary["audience"] != "string" {
		t.Fatalf("context summary missing: %+v", envelope.Error.ContextSummary)
	}
	if len(envelope.Error.StackTrace) != 2 {
		t.Fatalf("stack trace missing: %+v", envelope.Error.StackTrace)
	}
}

func TestJSON_NonDebug(t *testing.T) {
	body, err := New().JSON(sampleError())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	text := string(body)
	if !strings.Contains(text, GenericMessage) || !strings.Contains(text, "engine_error") {
		t.Fatalf("expected kind plus generic message: %s", text)
	}
	for _, leaked := range []string{"course/card.html", "audience", "goroutine", "stack_trace"} {
		if strings.Contains(text, leaked) {
			t.Fatalf("non-debug response leaked %q: %s", leaked, text)
		}
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		path   string
		prefix string
		want   bool
	}{
		{"json accept", "application/json", "/courses/1", "/api/", true},
		{"json among others", "text/plain, application/json;q=0.9", "/courses/1", "/api/", true},
		{"wildcard subtype", "application/*", "/courses/1", "/api/", true},
		{"api path", "text/html", "/api/courses/1", "/api/", true},
		{"html page", "text/html", "/courses/1", "/api/", false},
		{"no prefix configured", "text/html", "/api/courses/1", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WantsJSON(tc.accept, tc.path, tc.prefix); got != tc.want {
				t.Fatalf("WantsJSON(%q, %q, %q) = %v, want %v", tc.accept, tc.path, tc.prefix, got, tc.want)
			}
		})
	}
}
