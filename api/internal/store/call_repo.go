package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// CallRow is one model invocation kept for diagnosing prompt and model drift.
type CallRow struct {
	ID          uuid.UUID
	Task        string
	Model       string
	PromptText  string
	RawResponse string
	Error       string
	Duration    time.Duration
}

type CallRepo struct{ DB *sql.DB }

func NewCallRepo(db *sql.DB) *CallRepo { return &CallRepo{DB: db} }

// Open connects through the pgx stdlib driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
create table if not exists model_calls (
	id           uuid primary key,
	created_at   timestamptz not null default now(),
	task         text not null,
	model        text not null,
	prompt_text  text not null,
	raw_response text not null default '',
	error        text not null default '',
	duration_ms  bigint not null default 0
)`

func (r *CallRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// Insert stores row. A zero ID is replaced with a fresh UUID, which is
// returned.
func (r *CallRepo) Insert(ctx context.Context, row CallRow) (uuid.UUID, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	const q = `
insert into model_calls(id, task, model, prompt_text, raw_response, error, duration_ms)
values ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.DB.ExecContext(ctx, q, row.ID, row.Task, row.Model, row.PromptText,
		row.RawResponse, row.Error, row.Duration.Milliseconds())
	if err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

// PurgeOlderThan deletes calls older than maxAge. A non-positive maxAge keeps
// everything.
func (r *CallRepo) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	res, err := r.DB.ExecContext(ctx, `delete from model_calls where created_at < $1`, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
