package prompt

// RecipeSchema is the output shape shared by every recipe extraction prompt.
const RecipeSchema = `{
  "title": "Name of the recipe",
  "description": "One sentence describing the dish",
  "prep_time": "Preparation time if stated (e.g. '20 minutes')",
  "cook_time": "Cooking time if stated (e.g. '45 minutes')",
  "total_time": "Total time if stated (e.g. '1 hour 5 minutes')",
  "servings": "Number of servings if stated (e.g. '4-6 people')",
  "ingredients": [
    {
      "quantity_display": "Quantity exactly as written (e.g. '2 or 3', '1/2', 'a splash'). Always a string.",
      "quantity_numeric": "Numeric quantity when possible ('2 or 3' -> 2.5, '1/2' -> 0.5), otherwise null",
      "unit": "Unit of measurement (e.g. 'cup', 'tbsp', 'clove')",
      "name": "Core ingredient name",
      "notes": "Preparation notes, brand suggestions or referenced notes (e.g. 'finely chopped')"
    }
  ],
  "instructions": ["One string per step"],
  "other_timings": [
    {"label": "Any other labelled time (e.g. 'Rest Time')", "duration": "Its duration (e.g. '10 mins')"}
  ],
  "tags": ["Cuisine, meal type or key ingredient tags (e.g. 'Italian', 'Dinner', 'Chicken')"]
}`

const recipeRules = `Put "Prep Time", "Cook Time" and "Total Time" in their own fields. Any other labelled timing goes into "other_timings".
When an ingredient refers to a note such as "(see note)", find that note anywhere in the source and copy its text into "notes".
Use "" or [] for anything that is not available.`

const HealthAnalysisSchema = `{
  "health_rating": "SAFE | CAUTION | AVOID",
  "summary": "One or two sentences",
  "suggestions": ["Specific, actionable improvement"]
}`

const NutritionSchema = `{
  "calories": "...",
  "protein_grams": "...",
  "carbohydrates_grams": "...",
  "sugar_grams": "...",
  "fat_grams": "...",
  "saturated_fat_grams": "...",
  "sodium_milligrams": "...",
  "fiber_grams": "...",
  "cholesterol_milligrams": "..."
}`

// AnalysisSchema is the combined response for a modular recipe analysis.
// Keys for tasks that were not requested keep their empty defaults.
const AnalysisSchema = `{
  "tags": [],
  "health_analysis": ` + HealthAnalysisSchema + `,
  "nutritional_info": ` + NutritionSchema + `,
  "parsed_recipe": {}
}`

const InventorySchema = `[
  {
    "name": "Core ingredient name",
    "quantity": "Quantity if available (e.g. '2', '1/2', 'a splash')",
    "unit": "Unit if available (e.g. 'cup', 'tbsp', 'gallon')",
    "location_name": "A name from the valid locations list, or null"
  }
]`

const SimilarSchema = `{"similar_recipe_ids": [1, 2]}`

const ProfileReviewSchema = `{
  "suggested_rules": "Refined summary of health rules and allergies",
  "suggested_preferences": "Refined summary of likes, dislikes and preferences"
}`

const MealIdeasSchema = `[
  {"title": "...", "description": "..."}
]`

const ChatSchema = `{"reply": "Your answer to the user"}`

const jsonOnly = "Return only the JSON. No text or formatting before or after it."
