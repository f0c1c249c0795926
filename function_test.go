package recipeanalyzer

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredFunctionReportsError(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	rr := httptest.NewRecorder()
	RecipeAnalyzerAPI(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"review_text":"x"}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"error":"Service is not configured."}`, rr.Body.String())
}

func TestPreflightWithoutConfiguration(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	rr := httptest.NewRecorder()
	RecipeAnalyzerAPI(rr, httptest.NewRequest(http.MethodOptions, "/", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
}
