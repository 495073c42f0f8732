package repository

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema создаёт недостающие таблицы
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// ResetSchema сбрасывает состояние БД (режим --reset_db)
func (db *PostgresDB) ResetSchema(ctx context.Context) error {
	drop := `DROP TABLE IF EXISTS visits, link_visibility, accounts, links CASCADE`
	if _, err := db.Pool.Exec(ctx, drop); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return db.EnsureSchema(ctx)
}
