package llm

import (
	"context"
	"errors"
	"strings"
)

type Model interface {
	Name() string
	Generate(ctx context.Context, parts []Part) (string, error)
}

// Models holds the process-wide model handles. Pro and Flash are required;
// GPT is registered only when an OpenAI key is configured.
type Models struct {
	Pro   Model
	Flash Model
	GPT   Model
}

func (m *Models) Validate() error {
	if m == nil || m.Pro == nil || m.Flash == nil {
		return errors.New("llm: pro and flash models are required")
	}
	return nil
}

// Select picks a model from the caller's model_choice. Anything that does not
// name a cheaper variant gets the highest-capability one.
func (m *Models) Select(choice string) Model {
	c := strings.ToLower(choice)
	switch {
	case strings.Contains(c, "flash"):
		return m.Flash
	case strings.Contains(c, "gpt") && m.GPT != nil:
		return m.GPT
	default:
		return m.Pro
	}
}
