package types

import "encoding/json"

// Task is the discriminated request payload. Exactly one variant is produced
// per request by ParseEnvelope.
type Task interface {
	Marker() string
}

// --- recipe_analysis_request ---

type RecipeAnalysis struct {
	Tasks          []string        `json:"tasks"`
	RecipeData     json.RawMessage `json:"recipe_data"`
	DietaryProfile string          `json:"dietary_profile"`
}

// --- find_similar_request ---

// Candidate is a stored recipe offered for comparison. ID is what the model
// must echo back; the rest of the object is passed through untouched.
type Candidate struct {
	ID   int64
	Data json.RawMessage
}

func (c Candidate) MarshalJSON() ([]byte, error) { return c.Data, nil }

type FindSimilar struct {
	PrimaryRecipe json.RawMessage
	Candidates    []Candidate
}

// --- meal_suggestion_request ---

type MealSuggestion struct {
	Inventory      json.RawMessage `json:"inventory"`
	DietaryProfile string          `json:"dietary_profile"`
	UserIntent     string          `json:"user_intent"`
}

// --- inventory_import_request ---

type InventoryImport struct {
	Text      string   `json:"text"`
	Locations []string `json:"locations"`
}

// --- review_text ---

type ProfileReview struct {
	Text string
}

// --- chat_request ---

type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

type ChatTurn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

type Chat struct {
	UserMessage   string     `json:"user_message"`
	ProfileText   string     `json:"profile_text"`
	InventoryText string     `json:"inventory_text"`
	History       []ChatTurn `json:"chat_history"`
}

// --- health_check ---

type HealthCheck struct {
	DietaryProfile json.RawMessage
	RecipeData     json.RawMessage
}

// --- nutritional_estimation_request ---

type NutritionEstimation struct {
	Text string `json:"text"`
}

// --- healthify_recipe_request ---

type Healthify struct {
	RecipeData     json.RawMessage `json:"recipe_data"`
	DietaryProfile string          `json:"dietary_profile"`
}

// --- url / text / image ---

type RecipeFromURL struct {
	URL string
}

type RecipeFromText struct {
	Text string
}

type RecipeFromImage struct {
	Data     []byte
	MIMEType string
}

func (RecipeAnalysis) Marker() string      { return MarkerRecipeAnalysis }
func (FindSimilar) Marker() string         { return MarkerFindSimilar }
func (MealSuggestion) Marker() string      { return MarkerMealSuggestion }
func (InventoryImport) Marker() string     { return MarkerInventoryImport }
func (ProfileReview) Marker() string       { return MarkerReviewText }
func (Chat) Marker() string                { return MarkerChat }
func (HealthCheck) Marker() string         { return MarkerHealthCheck }
func (NutritionEstimation) Marker() string { return MarkerNutrition }
func (Healthify) Marker() string           { return MarkerHealthify }
func (RecipeFromURL) Marker() string       { return MarkerURL }
func (RecipeFromText) Marker() string      { return MarkerText }
func (RecipeFromImage) Marker() string     { return MarkerImage }
