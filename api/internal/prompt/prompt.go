// Package prompt builds the ordered model input for every task. Builders are
// pure: they never perform I/O.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"recipe-analyzer/api/internal/llm"
	"recipe-analyzer/api/internal/types"
)

const generalGuidelines = "No dietary profile was provided. Use general healthy eating guidelines."

func RecipeText(text string) []llm.Part {
	var b strings.Builder
	b.WriteString("You are a recipe parsing API. The raw text below may contain blog posts, comments and other noise. Ignore it, find the recipe and extract its components.\n\n")
	writeSchema(&b, RecipeSchema)
	b.WriteString(recipeRules + "\n")
	writeSection(&b, "Raw text to analyze", text)
	return []llm.Part{llm.Text(b.String())}
}

// RecipeImage places the image ahead of the instructions.
func RecipeImage(img types.RecipeFromImage) []llm.Part {
	var b strings.Builder
	b.WriteString("You are a recipe parsing expert. The image shows a cookbook page or recipe card. Ignore photos, page numbers and decorations, find the recipe text and extract its components.\n\n")
	writeSchema(&b, RecipeSchema)
	b.WriteString(recipeRules)
	return []llm.Part{
		llm.Image{MIMEType: img.MIMEType, Data: img.Data},
		llm.Text(b.String()),
	}
}

// RecipeAnalysis adds one instruction block per known task. Unknown task
// names are ignored.
func RecipeAnalysis(req types.RecipeAnalysis) []llm.Part {
	var b strings.Builder
	b.WriteString("You are a recipe and nutrition analysis API. Perform the tasks below on the recipe and answer with a single JSON object that follows JSON_RESPONSE_TEMPLATE exactly.\n\nTASKS TO PERFORM:\n")
	for _, task := range req.Tasks {
		if block, ok := analysisTasks[task]; ok {
			b.WriteString("- " + task + ": " + block + "\n")
		}
	}
	b.WriteString("\nJSON_RESPONSE_TEMPLATE:\n" + AnalysisSchema + "\n")
	b.WriteString("If a task was not requested or cannot be completed, keep its key with an empty value ([] or {}).\n" + jsonOnly + "\n")
	writeSection(&b, "Recipe", compactJSON(req.RecipeData))
	profile := strings.TrimSpace(req.DietaryProfile)
	if profile == "" {
		profile = generalGuidelines
	}
	writeSection(&b, "Dietary profile", profile)
	return []llm.Part{llm.Text(b.String())}
}

var analysisTasks = map[string]string{
	"generateTags":      "Generate 5-7 relevant tags (cuisine, meal type, key ingredient) from the title and ingredients and put them in 'tags'.",
	"healthCheck":       "Rate the recipe against the dietary profile. Fill 'health_analysis' with a 'health_rating' of SAFE, CAUTION or AVOID, a short 'summary' and a list of 'suggestions'.",
	"estimateNutrition": "Estimate nutrition per serving and fill 'nutritional_info'. Values are whole-number strings, \"N/A\" when unknown.",
	"parse":             "Normalise the recipe into the recipe structure below and put it in 'parsed_recipe':\n" + RecipeSchema,
}

func HealthCheck(req types.HealthCheck) []llm.Part {
	var b strings.Builder
	b.WriteString("You are a nutritional analyst. Analyze the recipe against the user's dietary guidelines.\n")
	writeSection(&b, "Dietary guidelines", compactJSON(req.DietaryProfile))
	writeSection(&b, "Recipe", compactJSON(req.RecipeData))
	b.WriteString(`Your task:
1. Assign a health_rating of SAFE, CAUTION or AVOID.
   - SAFE: fits the user's goals.
   - CAUTION: acceptable in moderation, with minor issues.
   - AVOID: clearly violates one or more core health rules.
2. Write a one or two sentence summary of your findings.
3. List specific, actionable suggestions for improvement.

`)
	writeSchema(&b, HealthAnalysisSchema)
	return []llm.Part{llm.Text(b.String())}
}

func Nutrition(req types.NutritionEstimation) []llm.Part {
	var b strings.Builder
	b.WriteString(`You are a meticulous nutritional analyst. Estimate the nutrition PER SERVING for the recipe below.

Steps:
1. Find the number of servings. Assume 4 if it is not stated.
2. Look for modifiers such as "low-sodium", "unsalted", "reduced-sugar" or "light" and adjust for them.
3. Use these baseline conversions:
   - 1 teaspoon table salt = 2300mg sodium
   - 1 tablespoon table salt = 6900mg sodium
   - 1 tablespoon soy sauce = 900mg sodium
   - 1 cup regular chicken/beef/vegetable stock = 800mg sodium
   - 1 teaspoon sugar = 4g sugar
   - 1 tablespoon sugar = 12g sugar
   - 1 tablespoon honey/maple syrup = 17g sugar
4. Estimate anything else from general nutritional knowledge.
5. Sum each nutrient over all ingredients.
6. Divide each total by the number of servings.

Return exactly these keys, no more and no fewer:
`)
	b.WriteString(NutritionSchema + "\n\n")
	b.WriteString("Every value is a string rounded to the nearest whole number. Use \"N/A\" when a value cannot be determined.\n" + jsonOnly + "\n")
	writeSection(&b, "Recipe text", req.Text)
	return []llm.Part{llm.Text(b.String())}
}

func Inventory(req types.InventoryImport) []llm.Part {
	var b strings.Builder
	b.WriteString("You are an inventory parsing API. The text lists food items, possibly grouped under location headings.\n\n")
	b.WriteString("Valid locations: " + compactJSON(mustJSON(req.Locations)) + "\n\n")
	b.WriteString("Extract every item. When an item sits under a heading (e.g. '--- FRIDGE ---' or 'In the Pantry:'), set location_name to the matching valid location. Without a heading, location_name is null.\n\n")
	b.WriteString("Return a JSON array:\n" + InventorySchema + "\n\n")
	b.WriteString("Return [] when the text contains no items.\n" + jsonOnly + "\n")
	writeSection(&b, "Raw text to analyze", req.Text)
	return []llm.Part{llm.Text(b.String())}
}

func FindSimilar(req types.FindSimilar) []llm.Part {
	var b strings.Builder
	b.WriteString("You are a recipe analyst. Compare the PRIMARY RECIPE with the CANDIDATE RECIPES. Using title and ingredients, decide which candidates are a variation of the same core dish.\n\n")
	b.WriteString("Return one JSON object with the single key 'similar_recipe_ids' holding the integer ids of ONLY the similar candidates, for example:\n" + SimilarSchema + "\n")
	b.WriteString("Use an empty list when none are similar.\n" + jsonOnly + "\n")
	writeSection(&b, "PRIMARY RECIPE", compactJSON(req.PrimaryRecipe))
	writeSection(&b, "CANDIDATE RECIPES", compactJSON(mustJSON(req.Candidates)))
	return []llm.Part{llm.Text(b.String())}
}

// Chat embeds history oldest first, in the order the client sent it.
func Chat(req types.Chat) []llm.Part {
	var b strings.Builder
	b.WriteString("You are a friendly kitchen assistant chatting with a home cook. Use their profile and inventory when relevant and keep answers practical.\n")
	writeSection(&b, "User profile", orNone(req.ProfileText))
	writeSection(&b, "Current inventory", orNone(req.InventoryText))
	if len(req.History) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range req.History {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
		}
	}
	fmt.Fprintf(&b, "\nuser: %s\n\n", req.UserMessage)
	b.WriteString("Answer the last user message. Respond with JSON:\n" + ChatSchema + "\n" + jsonOnly)
	return []llm.Part{llm.Text(b.String())}
}

func ProfileReview(req types.ProfileReview) []llm.Part {
	var b strings.Builder
	b.WriteString(`You are a dietary assistant. The user wrote their health rules and personal preferences as free text. Split and refine it into two summaries:
1. Health rules and allergies: clear, actionable medical directives only.
2. Likes, dislikes and preferences: tastes, cuisines and other non-critical information.

`)
	writeSchema(&b, ProfileReviewSchema)
	writeSection(&b, "User text", req.Text)
	return []llm.Part{llm.Text(b.String())}
}

func MealIdeas(req types.MealSuggestion) []llm.Part {
	var b strings.Builder
	b.WriteString("You are an empathetic kitchen assistant helping the user decide what to make.\n\nCONTEXT:\n")
	fmt.Fprintf(&b, "- Dietary profile: %s\n", req.DietaryProfile)
	fmt.Fprintf(&b, "- Current inventory: %s\n", compactJSON(req.Inventory))
	fmt.Fprintf(&b, "- Immediate situation: %s\n\n", req.UserIntent)
	b.WriteString("Suggest 3 to 5 simple meal ideas. Give each a title and a one-sentence description of why it fits.\n\n")
	b.WriteString("Return a JSON array:\n" + MealIdeasSchema + "\n" + jsonOnly)
	return []llm.Part{llm.Text(b.String())}
}

func Healthify(req types.Healthify) []llm.Part {
	var b strings.Builder
	b.WriteString("You are a chef and nutritionist. Rewrite the recipe so it is healthier for the user while staying close to the original dish. Swap ingredients, adjust quantities and change techniques where it helps.\n\n")
	b.WriteString("Return the rewritten recipe using this structure, plus a \"changes_made\" list of short strings describing each change:\n")
	b.WriteString(RecipeSchema + "\n\n" + jsonOnly + "\n")
	writeSection(&b, "Original recipe", compactJSON(req.RecipeData))
	profile := strings.TrimSpace(req.DietaryProfile)
	if profile == "" {
		profile = generalGuidelines
	}
	writeSection(&b, "Dietary profile", profile)
	return []llm.Part{llm.Text(b.String())}
}

func writeSchema(b *strings.Builder, schema string) {
	b.WriteString("Return a single JSON value with this structure:\n")
	b.WriteString(schema)
	b.WriteString("\n\n" + jsonOnly + "\n")
}

func writeSection(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "\n%s:\n---\n%s\n---\n", title, body)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

// compactJSON renders raw JSON on one line. Values that are not valid JSON
// are returned unchanged.
func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}
