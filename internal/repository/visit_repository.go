package repository

import (
	"context"
	"fmt"

	"github.com/usulmund/url-shorter/internal/models"
)

type VisitRepository interface {
	Record(ctx context.Context, visit *models.Visit) error
	CountByShortCode(ctx context.Context, code string) (int64, error)
	ListByShortCode(ctx context.Context, code string, offset, limit int) ([]models.Visit, error)
}

type visitRepository struct {
	db *PostgresDB
}

func NewVisitRepository(db *PostgresDB) VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Record(ctx context.Context, visit *models.Visit) error {
	query := `
		INSERT INTO visits (short_code, original_url, link_id, link_type, visited_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		visit.ShortCode,
		visit.OriginalURL,
		visit.LinkID,
		visit.LinkType,
		visit.VisitedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	return nil
}

func (r *visitRepository) CountByShortCode(ctx context.Context, code string) (int64, error) {
	query := `SELECT COUNT(*) FROM visits WHERE short_code = $1`

	var cnt int64
	if err := r.db.Pool.QueryRow(ctx, query, code).Scan(&cnt); err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}

	return cnt, nil
}

func (r *visitRepository) ListByShortCode(ctx context.Context, code string, offset, limit int) ([]models.Visit, error) {
	query := `
		SELECT id, short_code, original_url, link_id, link_type, visited_at
		FROM visits
		WHERE short_code = $1
		ORDER BY visited_at
		OFFSET $2 LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, code, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var visit models.Visit
		if err := rows.Scan(
			&visit.ID,
			&visit.ShortCode,
			&visit.OriginalURL,
			&visit.LinkID,
			&visit.LinkType,
			&visit.VisitedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, visit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}

	return visits, nil
}
