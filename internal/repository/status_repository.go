package repository

import (
	"context"
	"fmt"

	"github.com/usulmund/url-shorter/internal/models"
)

// Таблицы, опрашиваемые эндпоинтом /ping
var pingTables = []string{"links", "accounts", "link_visibility", "visits"}

// LinkWithVisibility строка выборки для /user/status
type LinkWithVisibility struct {
	Link  models.Link
	Users models.VisibilitySet
}

type StatusRepository interface {
	CountTable(ctx context.Context, table string) (int64, error)
	ListLinksWithVisibility(ctx context.Context, offset, limit int) ([]LinkWithVisibility, error)
}

type statusRepository struct {
	db *PostgresDB
}

func NewStatusRepository(db *PostgresDB) StatusRepository {
	return &statusRepository{db: db}
}

// PingTables возвращает список таблиц, по которым строится отчёт /ping
func PingTables() []string {
	return pingTables
}

func (r *statusRepository) CountTable(ctx context.Context, table string) (int64, error) {
	// имя таблицы берётся только из фиксированного списка pingTables
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)

	var cnt int64
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&cnt); err != nil {
		return 0, fmt.Errorf("failed to count table %s: %w", table, err)
	}

	return cnt, nil
}

func (r *statusRepository) ListLinksWithVisibility(ctx context.Context, offset, limit int) ([]LinkWithVisibility, error) {
	query := `
		SELECT l.id, l.original_url, l.short_code, l.created_at, v.users
		FROM links l
		JOIN link_visibility v ON l.original_url = v.original_url
		ORDER BY l.id
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var result []LinkWithVisibility
	for rows.Next() {
		var row LinkWithVisibility
		var rawUsers string
		if err := rows.Scan(
			&row.Link.ID,
			&row.Link.OriginalURL,
			&row.Link.ShortCode,
			&row.Link.CreatedAt,
			&rawUsers,
		); err != nil {
			return nil, fmt.Errorf("failed to scan link row: %w", err)
		}
		row.Users = models.ParseVisibilitySet(rawUsers)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return result, nil
}
