package gpt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"recipe-analyzer/api/internal/llm"
	"recipe-analyzer/api/internal/util"
)

type Engine struct {
	cl    openai.Client
	model string
}

// New builds an OpenAI chat model. Extra options are appended last, so tests
// can point it at a local server.
func New(key, model string, opts ...option.RequestOption) *Engine {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		// long prompts take a while before the first header arrives
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}

	base := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(key)),
		option.WithHTTPClient(&http.Client{Transport: tr}),
		// one attempt per request, failures surface immediately
		option.WithMaxRetries(0),
	}
	return &Engine{
		cl:    openai.NewClient(append(base, opts...)...),
		model: strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string { return e.model }

func (e *Engine) Generate(ctx context.Context, parts []llm.Part) (string, error) {
	resp, err := e.cl.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(toContent(parts)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai %s: %w", e.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai " + e.model + ": empty choices")
	}
	out := resp.Choices[0].Message.Content
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("openai %s: empty response", e.model)
	}
	return out, nil
}

func toContent(parts []llm.Part) []openai.ChatCompletionContentPartUnionParam {
	out := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case llm.Text:
			out = append(out, openai.TextContentPart(string(v)))
		case llm.Image:
			if !isOpenAIImageMIME(v.MIMEType) {
				continue
			}
			out = append(out, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: util.MakeDataURL(v.MIMEType, v.Data),
			}))
		}
	}
	return out
}

func isOpenAIImageMIME(m string) bool {
	m = strings.ToLower(strings.TrimSpace(m))
	switch m {
	case "image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif":
		return true
	}
	return false
}
