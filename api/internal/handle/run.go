package handle

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"recipe-analyzer/api/internal/apperr"
	"recipe-analyzer/api/internal/llm"
	"recipe-analyzer/api/internal/prompt"
	"recipe-analyzer/api/internal/store"
	"recipe-analyzer/api/internal/types"
	"recipe-analyzer/api/internal/util"
)

// Result is the 200 response envelope.
type Result struct {
	Result          any    `json:"result"`
	PromptText      string `json:"prompt_text,omitempty"`
	RawResponseText string `json:"raw_response_text,omitempty"`
	HasImage        bool   `json:"has_image,omitempty"`
	Model           string `json:"model,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Run executes one request body end to end. A model reply that is not JSON is
// reported inside the Result; every other failure is returned as an error.
func (h *Handle) Run(ctx context.Context, body []byte) (Result, error) {
	start := time.Now()

	env, err := types.ParseEnvelope(body)
	if err != nil {
		return Result{}, err
	}
	marker := env.Task.Marker()
	log := h.log.With(zap.String("task", marker), zap.Bool("developer_mode", env.DeveloperMode))

	parts, err := h.build(ctx, env.Task)
	if err != nil {
		log.Info("request rejected", zap.Error(err), zap.Duration("took", time.Since(start)))
		return Result{}, err
	}

	model := h.models.Select(env.ModelChoice)
	call, err := llm.Invoke(ctx, model, parts, env.DeveloperMode)
	if err != nil {
		h.record(ctx, marker, call, err.Error())
		log.Warn("model call failed", zap.String("model", call.Model), zap.Error(err), zap.Duration("took", time.Since(start)))
		return Result{}, apperr.Unexpected(err)
	}

	if call.Skipped {
		log.Info("developer mode, model skipped", zap.Duration("took", time.Since(start)))
		return Result{PromptText: call.PromptText, HasImage: call.HasImage}, nil
	}

	res := Result{HasImage: call.HasImage, Model: call.Model}
	if !h.opts.Production {
		res.PromptText = call.PromptText
		res.RawResponseText = call.Raw
	}

	decoded, perr := util.NormalizeJSON(call.Raw)
	if perr != nil {
		res.Error = perr.Error()
		res.RawResponseText = call.Raw
		h.record(ctx, marker, call, res.Error)
		log.Warn("model reply is not JSON",
			zap.String("model", call.Model),
			zap.String("raw_preview", util.ClampRunes(call.Raw, 200)),
			zap.Duration("model_took", call.Duration),
			zap.Duration("took", time.Since(start)))
		return res, nil
	}
	res.Result = decoded
	h.record(ctx, marker, call, "")
	log.Info("request served",
		zap.String("model", call.Model),
		zap.Duration("model_took", call.Duration),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

func (h *Handle) build(ctx context.Context, task types.Task) ([]llm.Part, error) {
	switch t := task.(type) {
	case types.RecipeAnalysis:
		return prompt.RecipeAnalysis(t), nil
	case types.FindSimilar:
		return prompt.FindSimilar(t), nil
	case types.MealSuggestion:
		return prompt.MealIdeas(t), nil
	case types.InventoryImport:
		return prompt.Inventory(t), nil
	case types.ProfileReview:
		return prompt.ProfileReview(t), nil
	case types.Chat:
		return prompt.Chat(t), nil
	case types.HealthCheck:
		return prompt.HealthCheck(t), nil
	case types.NutritionEstimation:
		return prompt.Nutrition(t), nil
	case types.Healthify:
		return prompt.Healthify(t), nil
	case types.RecipeFromText:
		return prompt.RecipeText(t.Text), nil
	case types.RecipeFromImage:
		return prompt.RecipeImage(t), nil
	case types.RecipeFromURL:
		if h.fetch == nil {
			return nil, apperr.Unexpected(errors.New("url fetching is not configured"))
		}
		text, err := h.fetch.Fetch(ctx, t.URL)
		if err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(text) < types.MinTextLen {
			return nil, apperr.Invalid("Insufficient text scraped from URL for analysis.")
		}
		return prompt.RecipeText(text), nil
	}
	return nil, apperr.Unexpected(fmt.Errorf("no prompt builder for %T", task))
}

// record writes an audit row on a context detached from the request, so a
// client hanging up does not lose the row.
func (h *Handle) record(ctx context.Context, task string, call llm.Call, errText string) {
	if h.opts.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	_, err := h.opts.Recorder.Insert(ctx, store.CallRow{
		Task:        task,
		Model:       call.Model,
		PromptText:  call.PromptText,
		RawResponse: call.Raw,
		Error:       errText,
		Duration:    call.Duration,
	})
	if err != nil {
		h.log.Warn("audit insert failed", zap.String("task", task), zap.Error(err))
	}
}
