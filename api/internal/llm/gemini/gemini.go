package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"recipe-analyzer/api/internal/llm"
)

// NewClient opens the Gemini client shared by every model variant. The caller
// owns it and must Close it on shutdown.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	return genai.NewClient(ctx, option.WithAPIKey(apiKey))
}

type Engine struct {
	model *genai.GenerativeModel
	name  string
}

func New(cl *genai.Client, model string) *Engine {
	name := strings.TrimSpace(model)
	m := cl.GenerativeModel(name)
	// every prompt asks for JSON only
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
	}
	return &Engine{model: m, name: name}
}

func (e *Engine) Name() string { return e.name }

func (e *Engine) Generate(ctx context.Context, parts []llm.Part) (string, error) {
	resp, err := e.model.GenerateContent(ctx, toParts(parts)...)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", e.name, err)
	}
	txt := responseText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", fmt.Errorf("gemini %s: empty response", e.name)
	}
	return txt, nil
}

// --------------------------- helpers ---------------------------

func toParts(parts []llm.Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case llm.Text:
			out = append(out, genai.Text(string(v)))
		case llm.Image:
			out = append(out, genai.Blob{MIMEType: v.MIMEType, Data: v.Data})
		}
	}
	return out
}

// responseText concatenates the text parts of the first candidate that has
// content.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		return b.String()
	}
	return ""
}
