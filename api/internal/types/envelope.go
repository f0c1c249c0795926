// Package types turns a raw request body into exactly one discriminated task.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"recipe-analyzer/api/internal/apperr"
	"recipe-analyzer/api/internal/util"
)

const (
	MarkerRecipeAnalysis  = "recipe_analysis_request"
	MarkerFindSimilar     = "find_similar_request"
	MarkerMealSuggestion  = "meal_suggestion_request"
	MarkerInventoryImport = "inventory_import_request"
	MarkerReviewText      = "review_text"
	MarkerChat            = "chat_request"
	MarkerHealthCheck     = "health_check"
	MarkerNutrition       = "nutritional_estimation_request"
	MarkerHealthify       = "healthify_recipe_request"
	MarkerURL             = "url"
	MarkerText            = "text"
	MarkerImage           = "image"
)

// Markers is the routing priority. When a body carries several markers the
// first one listed here wins.
var Markers = []string{
	MarkerRecipeAnalysis,
	MarkerFindSimilar,
	MarkerMealSuggestion,
	MarkerInventoryImport,
	MarkerReviewText,
	MarkerChat,
	MarkerHealthCheck,
	MarkerNutrition,
	MarkerHealthify,
	MarkerURL,
	MarkerText,
	MarkerImage,
}

// MinTextLen is the floor for pasted and scraped recipe text.
const MinTextLen = 20

const (
	DefaultMealProfile = "No profile provided."
	DefaultMealIntent  = "No specific situation provided."
)

type Envelope struct {
	Task          Task
	ModelChoice   string
	DeveloperMode bool
}

var errBodyRequired = apperr.Invalid("Invalid request. JSON body is required.")

// ParseEnvelope validates body and returns the single task it describes.
// Every failure is an *apperr.Error with status 400.
func ParseEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return env, errBodyRequired
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return env, errBodyRequired
	}

	if raw, ok := fields["model_choice"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &env.ModelChoice); err != nil {
			return env, apperr.Invalid("Invalid request. 'model_choice' must be a string.")
		}
	}
	if raw, ok := fields["developer_mode"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &env.DeveloperMode); err != nil {
			return env, apperr.Invalid("Invalid request. 'developer_mode' must be a boolean.")
		}
	}

	for _, marker := range Markers {
		raw, ok := fields[marker]
		if !ok {
			continue
		}
		task, err := parseTask(marker, raw, fields)
		if err != nil {
			return env, err
		}
		env.Task = task
		return env, nil
	}
	return env, apperr.Invalid("Invalid request. One of %s key is required.", quoteList(Markers))
}

func parseTask(marker string, raw json.RawMessage, fields map[string]json.RawMessage) (Task, error) {
	switch marker {
	case MarkerRecipeAnalysis:
		return parseRecipeAnalysis(raw)
	case MarkerFindSimilar:
		return parseFindSimilar(raw)
	case MarkerMealSuggestion:
		return parseMealSuggestion(raw)
	case MarkerInventoryImport:
		return parseInventoryImport(raw)
	case MarkerReviewText:
		text, err := nonBlankString(raw)
		if err != nil {
			return nil, apperr.Invalid("Profile review requires a non-empty 'review_text'.")
		}
		return ProfileReview{Text: text}, nil
	case MarkerChat:
		return parseChat(raw)
	case MarkerHealthCheck:
		// The marker value itself is ignored; the payload lives at top level.
		profile, recipe := fields["dietary_profile"], fields["recipe_data"]
		if isBlank(profile) || isBlank(recipe) {
			return nil, apperr.Invalid("Health check requires 'dietary_profile' and 'recipe_data'.")
		}
		return HealthCheck{DietaryProfile: profile, RecipeData: recipe}, nil
	case MarkerNutrition:
		var req NutritionEstimation
		if err := decodeMarker(marker, raw, &req); err != nil {
			return nil, err
		}
		if strings.TrimSpace(req.Text) == "" {
			return nil, apperr.Invalid("Nutritional estimation requires 'text'.")
		}
		return req, nil
	case MarkerHealthify:
		var req Healthify
		if err := decodeMarker(marker, raw, &req); err != nil {
			return nil, err
		}
		if isBlank(req.RecipeData) {
			return nil, apperr.Invalid("Healthify requires 'recipe_data'.")
		}
		return req, nil
	case MarkerURL:
		return parseURL(raw)
	case MarkerText:
		var text string
		if err := json.Unmarshal(raw, &text); err != nil || utf8.RuneCountInString(text) < MinTextLen {
			return nil, apperr.Invalid("Insufficient text provided for analysis.")
		}
		return RecipeFromText{Text: text}, nil
	case MarkerImage:
		return parseImage(raw)
	}
	return nil, apperr.Unexpected(errors.New("unrouted marker " + marker))
}

func parseRecipeAnalysis(raw json.RawMessage) (Task, error) {
	var req RecipeAnalysis
	if err := decodeMarker(MarkerRecipeAnalysis, raw, &req); err != nil {
		return nil, err
	}
	if len(req.Tasks) == 0 || isBlank(req.RecipeData) {
		return nil, apperr.Invalid("Recipe analysis requires 'tasks' and 'recipe_data'.")
	}
	return req, nil
}

func parseFindSimilar(raw json.RawMessage) (Task, error) {
	var req struct {
		PrimaryRecipe    json.RawMessage   `json:"primary_recipe"`
		CandidateRecipes []json.RawMessage `json:"candidate_recipes"`
	}
	if err := decodeMarker(MarkerFindSimilar, raw, &req); err != nil {
		return nil, err
	}
	if isBlank(req.PrimaryRecipe) || len(req.CandidateRecipes) == 0 {
		return nil, apperr.Invalid("Find similar requires 'primary_recipe' and 'candidate_recipes'.")
	}
	out := FindSimilar{PrimaryRecipe: req.PrimaryRecipe, Candidates: make([]Candidate, 0, len(req.CandidateRecipes))}
	for i, c := range req.CandidateRecipes {
		id, err := candidateID(c)
		if err != nil {
			return nil, apperr.Invalid("Candidate recipe %d must carry an integer 'id'.", i)
		}
		out.Candidates = append(out.Candidates, Candidate{ID: id, Data: c})
	}
	return out, nil
}

func candidateID(raw json.RawMessage) (int64, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, err
	}
	idRaw, ok := obj["id"]
	if !ok {
		return 0, errors.New("missing id")
	}
	idRaw = bytes.TrimSpace(idRaw)
	if len(idRaw) == 0 || idRaw[0] == '"' {
		return 0, errors.New("id is not a number")
	}
	dec := json.NewDecoder(bytes.NewReader(idRaw))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, err
	}
	return n.Int64()
}

func parseMealSuggestion(raw json.RawMessage) (Task, error) {
	var req MealSuggestion
	if !isNull(raw) {
		if err := decodeMarker(MarkerMealSuggestion, raw, &req); err != nil {
			return nil, err
		}
	}
	if isNull(req.Inventory) {
		req.Inventory = json.RawMessage("[]")
	}
	if strings.TrimSpace(req.DietaryProfile) == "" {
		req.DietaryProfile = DefaultMealProfile
	}
	if strings.TrimSpace(req.UserIntent) == "" {
		req.UserIntent = DefaultMealIntent
	}
	return req, nil
}

func parseInventoryImport(raw json.RawMessage) (Task, error) {
	var req struct {
		InventoryImport
		// Older clients nested the payload one level deeper.
		Nested *InventoryImport `json:"inventory_import_request"`
	}
	if err := decodeMarker(MarkerInventoryImport, raw, &req); err != nil {
		return nil, err
	}
	out := req.InventoryImport
	if strings.TrimSpace(out.Text) == "" && req.Nested != nil {
		out.Text = req.Nested.Text
	}
	if strings.TrimSpace(out.Text) == "" {
		return nil, apperr.Invalid("Inventory import requires 'text'.")
	}
	if out.Locations == nil {
		out.Locations = []string{}
	}
	return out, nil
}

func parseChat(raw json.RawMessage) (Task, error) {
	var req Chat
	if err := decodeMarker(MarkerChat, raw, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		return nil, apperr.Invalid("Chat requires 'user_message'.")
	}
	for i, turn := range req.History {
		if turn.Role != RoleUser && turn.Role != RoleModel {
			return nil, apperr.Invalid("Chat history entry %d has role %q; expected 'user' or 'model'.", i, turn.Role)
		}
	}
	return req, nil
}

func parseURL(raw json.RawMessage) (Task, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, apperr.Invalid("Invalid request. 'url' must be a string.")
	}
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.Invalid("Invalid request. 'url' must be an absolute http(s) URL.")
	}
	return RecipeFromURL{URL: u.String()}, nil
}

func parseImage(raw json.RawMessage) (Task, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
		return nil, apperr.Invalid("Invalid request. 'image' must be base64 image data.")
	}
	data, hint, err := util.DecodeBase64MaybeDataURL(s)
	if err != nil || len(data) == 0 {
		return nil, apperr.Invalid("Invalid request. 'image' must be base64 image data.")
	}
	return RecipeFromImage{Data: data, MIMEType: util.PickMIME("", hint, data)}, nil
}

// decodeMarker reports a payload of the wrong shape separately from missing
// fields, naming the offending field when the decoder knows it.
func decodeMarker(marker string, raw json.RawMessage, v any) error {
	err := json.Unmarshal(raw, v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Invalid("Invalid request. '%s.%s' must be %s, got %s.", marker, typeErr.Field, typeErr.Type, typeErr.Value)
	}
	if errors.As(err, &typeErr) {
		return apperr.Invalid("Invalid request. '%s' must be an object.", marker)
	}
	return apperr.Invalid("Invalid request. '%s' is malformed: %v", marker, err)
}

func nonBlankString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", errors.New("blank")
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// isBlank treats absent, null and empty JSON values as missing.
func isBlank(raw json.RawMessage) bool {
	if isNull(raw) {
		return true
	}
	switch string(bytes.TrimSpace(raw)) {
	case `""`, `{}`, `[]`, `false`, `0`:
		return true
	}
	return false
}

func quoteList(keys []string) string {
	q := make([]string, len(keys))
	for i, k := range keys {
		q[i] = "'" + k + "'"
	}
	return strings.Join(q[:len(q)-1], ", ") + ", or " + q[len(q)-1]
}
