// Package recipeanalyzer exposes the analyzer as a Google Cloud Function.
package recipeanalyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"go.uber.org/zap"

	"recipe-analyzer/api/internal/app"
	"recipe-analyzer/api/internal/config"
	"recipe-analyzer/api/internal/handle"
	"recipe-analyzer/api/internal/logger"
)

func init() {
	functions.HTTP("RecipeAnalyzerAPI", RecipeAnalyzerAPI)
}

var (
	once    sync.Once
	handler http.Handler
	initErr error
)

// setup runs once per instance; model clients are reused across invocations.
func setup() {
	lg, err := logger.New(os.Getenv("ENV"))
	if err != nil {
		initErr = err
		return
	}
	cfg, err := config.Load()
	if err != nil {
		lg.Error("config", zap.Error(err))
		initErr = err
		return
	}
	a, err := app.New(context.Background(), cfg, lg)
	if err != nil {
		lg.Error("init", zap.Error(err))
		initErr = err
		return
	}
	handler = a.Handler
}

func RecipeAnalyzerAPI(w http.ResponseWriter, r *http.Request) {
	// Preflight never depends on the model clients, so browsers still see the
	// error body of the real request when setup failed.
	if r.Method == http.MethodOptions {
		handle.Preflight(w)
		return
	}
	once.Do(setup)
	if initErr != nil {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Service is not configured."})
		return
	}
	handler.ServeHTTP(w, r)
}
