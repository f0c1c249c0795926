package llm

import (
	"context"
	"time"
)

// Call is the outcome of one Invoke.
type Call struct {
	PromptText string
	HasImage   bool
	Model      string
	Raw        string
	Skipped    bool
	Duration   time.Duration
}

// Invoke sends parts to model exactly once. With developerMode set the model
// is not contacted and only the prompt text is returned.
func Invoke(ctx context.Context, model Model, parts []Part, developerMode bool) (Call, error) {
	call := Call{
		PromptText: PromptText(parts),
		HasImage:   HasImage(parts),
	}
	if developerMode {
		call.Skipped = true
		return call, nil
	}

	call.Model = model.Name()
	start := time.Now()
	raw, err := model.Generate(ctx, parts)
	call.Duration = time.Since(start)
	if err != nil {
		return call, err
	}
	call.Raw = raw
	return call, nil
}
