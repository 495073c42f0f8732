package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/usulmund/url-shorter/internal/models"
)

var (
	ErrVisibilityNotFound = errors.New("visibility record not found")
	ErrVisibilityExists   = errors.New("visibility record already exists")
	ErrVisibilityConflict = errors.New("visibility record changed concurrently")
)

// VisibilityRepository хранит множество пользователей, которым доступна
// ссылка. Сериализация в строку через пробел происходит только здесь.
// Update выполняется как compare-and-swap относительно прочитанного
// состояния, чтобы параллельные объединения не затирали друг друга.
type VisibilityRepository interface {
	Create(ctx context.Context, originalURL string, set models.VisibilitySet) error
	Get(ctx context.Context, originalURL string) (models.VisibilitySet, error)
	Update(ctx context.Context, originalURL string, set, previous models.VisibilitySet) error
}

type visibilityRepository struct {
	db *PostgresDB
}

func NewVisibilityRepository(db *PostgresDB) VisibilityRepository {
	return &visibilityRepository{db: db}
}

func (r *visibilityRepository) Create(ctx context.Context, originalURL string, set models.VisibilitySet) error {
	query := `INSERT INTO link_visibility (original_url, users) VALUES ($1, $2)`

	_, err := r.db.Pool.Exec(ctx, query, originalURL, set.String())
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrVisibilityExists
		}
		return fmt.Errorf("failed to create visibility: %w", err)
	}

	return nil
}

func (r *visibilityRepository) Get(ctx context.Context, originalURL string) (models.VisibilitySet, error) {
	query := `SELECT users FROM link_visibility WHERE original_url = $1`

	var raw string
	err := r.db.Pool.QueryRow(ctx, query, originalURL).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVisibilityNotFound
		}
		return nil, fmt.Errorf("failed to get visibility: %w", err)
	}

	return models.ParseVisibilitySet(raw), nil
}

// Update заменяет множество, только если оно не изменилось с момента чтения.
// ErrVisibilityConflict означает проигранную гонку: нужно перечитать и
// объединить заново.
func (r *visibilityRepository) Update(ctx context.Context, originalURL string, set, previous models.VisibilitySet) error {
	query := `UPDATE link_visibility SET users = $2 WHERE original_url = $1 AND users = $3`

	result, err := r.db.Pool.Exec(ctx, query, originalURL, set.String(), previous.String())
	if err != nil {
		return fmt.Errorf("failed to update visibility: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrVisibilityConflict
	}

	return nil
}
