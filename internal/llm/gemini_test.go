package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/genai"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestGeminiProvider_TextReply(t *testing.T) {
	var body map[string]any
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": `{"topic":"Percent"}`}}},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 8, "totalTokenCount": 20},
		})
	})

	if p.ModelID() != DefaultGeminiModel {
		t.Fatalf("expected default model %q, got %q", DefaultGeminiModel, p.ModelID())
	}

	resp, err := p.Generate(context.Background(), Request{
		System: "sys",
		Messages: []Message{{
			Role:    RoleUser,
			Content: "20% of 50?",
			Images:  []Image{{MIMEType: "image/png", Data: []byte{1, 2, 3}}},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != `{"topic":"Percent"}` {
		t.Fatalf("unexpected text %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 20 {
		t.Fatalf("expected 20 total tokens, got %d", resp.Usage.TotalTokens)
	}

	contents, _ := body["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("expected one content, got %v", body["contents"])
	}
	parts, _ := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected image and text parts, got %v", parts)
	}
	if _, ok := parts[0].(map[string]any)["inlineData"]; !ok {
		t.Fatalf("expected inline image first, got %v", parts[0])
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Fatal("expected systemInstruction in request")
	}
}

func TestGeminiProvider_RateLimit(t *testing.T) {
	p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"},
		})
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestBuildGeminiContents(t *testing.T) {
	contents := buildGeminiContents([]Message{
		{Role: RoleUser, Images: []Image{{MIMEType: "image/webp", Data: []byte("w")}}},
		{Role: RoleAssistant, Content: "ok"},
	})
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != genai.RoleUser || contents[1].Role != genai.RoleModel {
		t.Fatalf("unexpected roles %q %q", contents[0].Role, contents[1].Role)
	}
	if len(contents[0].Parts) != 1 || contents[0].Parts[0].InlineData == nil {
		t.Fatalf("image-only turn should carry just the image, got %+v", contents[0].Parts)
	}
	if contents[0].Parts[0].InlineData.MIMEType != "image/webp" {
		t.Fatalf("unexpected MIME type %q", contents[0].Parts[0].InlineData.MIMEType)
	}
	if contents[1].Parts[0].Text != "ok" {
		t.Fatalf("unexpected text part %+v", contents[1].Parts[0])
	}
}

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	schema := buildGeminiSchema(solutionShapeSchema().Definition)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	steps := schema.Properties["steps"]
	if steps == nil || steps.Type != genai.TypeArray {
		t.Fatalf("expected steps array, got %+v", steps)
	}
	if steps.Items.Properties["explanation"].Type != genai.TypeString {
		t.Fatalf("expected string explanation, got %+v", steps.Items.Properties["explanation"])
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %v", schema.Required)
	}
}

// solutionShapeSchema mirrors the tutor's structured output shape with Go
// literals ([]string required lists).
func solutionShapeSchema() *Schema {
	return &Schema{
		Name: "math-solution",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topic": map[string]any{"type": "string"},
				"steps": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":       map[string]any{"type": "string"},
							"explanation": map[string]any{"type": "string"},
						},
					},
				},
			},
			"required": []string{"topic", "steps"},
		},
	}
}
