package handle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-analyzer/api/internal/apperr"
	"recipe-analyzer/api/internal/llm"
	"recipe-analyzer/api/internal/store"
)

type stubModel struct {
	name  string
	reply string
	err   error

	mu    sync.Mutex
	calls int
	last  []llm.Part
}

func (m *stubModel) Name() string { return m.name }

func (m *stubModel) Generate(_ context.Context, parts []llm.Part) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = parts
	return m.reply, m.err
}

type stubFetcher struct {
	text  string
	err   error
	calls int
}

func (f *stubFetcher) Fetch(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type memRecorder struct {
	rows []store.CallRow
	err  error
}

func (r *memRecorder) Insert(_ context.Context, row store.CallRow) (uuid.UUID, error) {
	r.rows = append(r.rows, row)
	return uuid.New(), r.err
}

type fixture struct {
	pro, flash *stubModel
	fetch      *stubFetcher
	rec        *memRecorder
	h          *Handle
}

func newFixture(reply string, opts Options) *fixture {
	f := &fixture{
		pro:   &stubModel{name: "gemini-2.5-pro", reply: reply},
		flash: &stubModel{name: "gemini-2.5-flash", reply: reply},
		fetch: &stubFetcher{text: "Pancakes. 2 cups flour, 1 egg, mix and fry."},
		rec:   &memRecorder{},
	}
	if opts.Recorder == nil {
		opts.Recorder = f.rec
	}
	f.h = New(&llm.Models{Pro: f.pro, Flash: f.flash}, f.fetch, nil, opts)
	return f
}

func (f *fixture) calls() int { return f.pro.calls + f.flash.calls }

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func TestPreflight(t *testing.T) {
	f := newFixture("{}", Options{})
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture("{}", Options{})
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"error":"Method not allowed."}`, rr.Body.String())
}

func TestEmptyBody(t *testing.T) {
	f := newFixture("{}", Options{})
	rr, out := post(t, f.h, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request. JSON body is required.", out["error"])
	assert.Zero(t, f.calls())
}

func TestNoMarker(t *testing.T) {
	f := newFixture("{}", Options{})
	rr, out := post(t, f.h, `{"model_choice":"flash"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotEmpty(t, out["error"])
	assert.Zero(t, f.calls())
}

func TestShortText(t *testing.T) {
	f := newFixture("{}", Options{})
	rr, out := post(t, f.h, `{"text":"too short"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, out["error"], "Insufficient text")
	assert.Zero(t, f.calls())
}

func TestHealthCheckMissingProfile(t *testing.T) {
	f := newFixture("{}", Options{})
	rr, out := post(t, f.h, `{"health_check":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, out["error"], "dietary_profile")
	assert.Zero(t, f.calls())
}

func TestInventoryImport(t *testing.T) {
	reply := strings.Join([]string{"```json", `[{"name":"flour","quantity":"2","unit":"cups","location_name":null}]`, "```"}, "\n")
	f := newFixture(reply, Options{Production: true})

	rr, out := post(t, f.h, `{"inventory_import_request":{"text":"2 cups flour\n1 egg"}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{map[string]any{"name": "flour", "quantity": "2", "unit": "cups", "location_name": nil}}, out["result"])
	assert.Equal(t, "gemini-2.5-pro", out["model"])
	assert.NotContains(t, out, "prompt_text")
	assert.NotContains(t, out, "raw_response_text")
	assert.NotContains(t, out, "error")
	assert.Equal(t, 1, f.pro.calls)
}

func TestFindSimilar(t *testing.T) {
	f := newFixture(`{"similar_recipe_ids": [2]}`, Options{})
	rr, out := post(t, f.h, `{"find_similar_request":{"primary_recipe":{"title":"Pancakes"},
		"candidate_recipes":[{"id":1,"title":"Waffles"},{"id":2,"title":"Fluffy pancakes"}]}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	res, _ := json.Marshal(out["result"])
	assert.JSONEq(t, `{"similar_recipe_ids":[2]}`, string(res))
}

func TestModelChoice(t *testing.T) {
	f := newFixture(`{"suggested_rules":"","suggested_preferences":""}`, Options{})
	_, out := post(t, f.h, `{"review_text":"no nuts please","model_choice":"gemini-2.5-flash"}`)
	assert.Equal(t, "gemini-2.5-flash", out["model"])
	assert.Equal(t, 1, f.flash.calls)
	assert.Zero(t, f.pro.calls)

	_, out = post(t, f.h, `{"meal_suggestion_request":{},"model_choice":"something-else"}`)
	assert.Equal(t, "gemini-2.5-pro", out["model"])
}

func TestDeveloperModeNeverCallsModel(t *testing.T) {
	img := base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0})
	bodies := map[string]string{
		"recipe_analysis_request":        `{"recipe_analysis_request":{"tasks":["generateTags"],"recipe_data":{"title":"Stew"}}}`,
		"find_similar_request":           `{"find_similar_request":{"primary_recipe":{"title":"a"},"candidate_recipes":[{"id":1}]}}`,
		"meal_suggestion_request":        `{"meal_suggestion_request":{}}`,
		"inventory_import_request":       `{"inventory_import_request":{"text":"milk"}}`,
		"review_text":                    `{"review_text":"no nuts"}`,
		"chat_request":                   `{"chat_request":{"user_message":"hi"}}`,
		"health_check":                   `{"health_check":true,"dietary_profile":"low salt","recipe_data":{"title":"Soup"}}`,
		"nutritional_estimation_request": `{"nutritional_estimation_request":{"text":"1 tbsp soy sauce"}}`,
		"healthify_recipe_request":       `{"healthify_recipe_request":{"recipe_data":{"title":"Fries"}}}`,
		"url":                            `{"url":"https://example.com/pancakes"}`,
		"text":                           `{"text":"Pancakes: 2 cups flour, 1 egg, milk"}`,
		"image":                          `{"image":"` + img + `"}`,
	}
	for marker, body := range bodies {
		t.Run(marker, func(t *testing.T) {
			f := newFixture("{}", Options{Production: true})
			body = strings.TrimSuffix(body, "}") + `,"developer_mode":true}`

			rr, out := post(t, f.h, body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.NotEmpty(t, out["prompt_text"])
			assert.Nil(t, out["result"])
			assert.NotContains(t, out, "model")
			assert.Zero(t, f.calls())
			assert.Empty(t, f.rec.rows)
		})
	}
}

func TestImageIsSentFirst(t *testing.T) {
	f := newFixture(`{"title":"Scones"}`, Options{})
	img := base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0})
	_, out := post(t, f.h, `{"image":"`+img+`"}`)

	assert.Equal(t, true, out["has_image"])
	require.Len(t, f.pro.last, 2)
	_, ok := f.pro.last[0].(llm.Image)
	assert.True(t, ok)
}

func TestURLTask(t *testing.T) {
	f := newFixture(`{"title":"Pancakes"}`, Options{})
	rr, out := post(t, f.h, `{"url":"https://example.com/pancakes"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, f.fetch.calls)
	assert.Contains(t, out["prompt_text"], "2 cups flour")

	f.fetch.text = "tiny"
	rr, out = post(t, f.h, `{"url":"https://example.com/pancakes"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Insufficient text scraped from URL for analysis.", out["error"])

	f.fetch.err = apperr.Fetch(errors.New("connection refused"))
	rr, out = post(t, f.h, `{"url":"https://example.com/pancakes"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, out["error"], "Failed to fetch or scrape URL")
	assert.Equal(t, 1, f.pro.calls)
}

func TestParseFailureIsReported(t *testing.T) {
	f := newFixture("Sorry, I cannot help with that.", Options{Production: true})
	rr, out := post(t, f.h, `{"review_text":"no nuts"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, out["result"])
	assert.Contains(t, out["error"], "Failed to parse AI response as JSON")
	assert.Equal(t, "Sorry, I cannot help with that.", out["raw_response_text"])
	require.Len(t, f.rec.rows, 1)
	assert.NotEmpty(t, f.rec.rows[0].Error)
}

func TestModelError(t *testing.T) {
	f := newFixture("", Options{})
	f.pro.err = errors.New("quota exceeded")
	rr, out := post(t, f.h, `{"review_text":"no nuts"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "An unexpected error occurred: quota exceeded", out["error"])
	assert.Equal(t, 1, f.pro.calls)
	require.Len(t, f.rec.rows, 1)
	assert.Equal(t, "quota exceeded", f.rec.rows[0].Error)
}

func TestEmptyModelReplyIsUnexpected(t *testing.T) {
	f := newFixture("", Options{})
	f.pro.err = errors.New("gemini gemini-2.5-pro: empty response")
	rr, out := post(t, f.h, `{"nutritional_estimation_request":{"text":"1 tbsp soy sauce"}}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, out["error"], "empty response")
}

func TestAuditFailureDoesNotFailRequest(t *testing.T) {
	rec := &memRecorder{err: errors.New("db down")}
	f := newFixture(`{"reply":"hello"}`, Options{Recorder: rec})
	rr, out := post(t, f.h, `{"chat_request":{"user_message":"hi"}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"reply": "hello"}, out["result"])
	require.Len(t, rec.rows, 1)
	assert.Equal(t, "chat_request", rec.rows[0].Task)
	assert.Equal(t, "gemini-2.5-pro", rec.rows[0].Model)
}

func TestIdempotent(t *testing.T) {
	f := newFixture(`{"calories":"420"}`, Options{})
	body := `{"nutritional_estimation_request":{"text":"1 tbsp soy sauce"}}`
	first, err := f.h.Run(context.Background(), []byte(body))
	require.NoError(t, err)
	second, err := f.h.Run(context.Background(), []byte(body))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBodyTooLarge(t *testing.T) {
	f := newFixture("{}", Options{})
	big := `{"text":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	rr, _ := post(t, f.h, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Zero(t, f.calls())
}
