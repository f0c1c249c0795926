// Package app wires configuration into a ready-to-serve analyzer handler.
// Both the container server and the Cloud Functions entry point use it.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"recipe-analyzer/api/internal/config"
	"recipe-analyzer/api/internal/handle"
	"recipe-analyzer/api/internal/llm"
	"recipe-analyzer/api/internal/llm/gemini"
	"recipe-analyzer/api/internal/llm/gpt"
	"recipe-analyzer/api/internal/scrape"
	"recipe-analyzer/api/internal/store"
)

type App struct {
	Handler *handle.Handle

	closers []func() error
}

// Close releases model clients and the audit database.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{}

	cl, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, cl.Close)

	models := &llm.Models{
		Pro:   gemini.New(cl, cfg.GeminiProModel),
		Flash: gemini.New(cl, cfg.GeminiFlashModel),
	}
	if cfg.GPTEnabled() {
		models.GPT = gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if err := models.Validate(); err != nil {
		_ = a.Close()
		return nil, err
	}

	opts := handle.Options{Production: cfg.Production()}
	if cfg.DatabaseURL != "" {
		db, err := openAudit(ctx, cfg, log)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		opts.Recorder = store.NewCallRepo(db)
	}

	fetcher := scrape.New(cfg.FetchTimeout, cfg.ScrapeUserAgent)
	a.Handler = handle.New(models, fetcher, log, opts)

	log.Info("analyzer ready",
		zap.String("env", cfg.Env),
		zap.String("pro", cfg.GeminiProModel),
		zap.String("flash", cfg.GeminiFlashModel),
		zap.Bool("gpt", models.GPT != nil),
		zap.Bool("audit", opts.Recorder != nil))
	return a, nil
}

func openAudit(ctx context.Context, cfg *config.Config, log *zap.Logger) (*sql.DB, error) {
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("audit db: %w", err)
	}
	repo := store.NewCallRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit schema: %w", err)
	}
	n, err := repo.PurgeOlderThan(ctx, cfg.AuditRetention)
	if err != nil {
		log.Warn("audit purge failed", zap.Error(err))
	} else if n > 0 {
		log.Info("audit purged", zap.Int64("rows", n), zap.Duration("retention", cfg.AuditRetention))
	}
	return db, nil
}
