package db

import (
	"context"

	_ "embed"

	"slotbook/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates all tables and constraints. Statements are idempotent,
// so re-running at startup against an existing database is safe.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return errs.Wrap(err, "failed to apply schema")
	}
	return nil
}
