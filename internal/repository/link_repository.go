package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/usulmund/url-shorter/internal/models"
)

var (
	ErrLinkNotFound = errors.New("link not found")
	ErrURLExists    = errors.New("original url already exists")
	ErrCodeExists   = errors.New("short code already exists")
)

// Имена ограничений из schema.sql
const (
	constraintOriginalURL = "links_original_url_key"
	constraintShortCode   = "links_short_code_key"
)

type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByURL(ctx context.Context, originalURL string) (*models.Link, error)
	GetByShortCode(ctx context.Context, code string) (*models.Link, error)
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

// Create вставляет новую пару url/short_code.
// Гонки разрешаются ограничениями уникальности: ErrURLExists означает,
// что ссылку успел создать кто-то другой, ErrCodeExists - коллизию кода.
func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (original_url, short_code, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		link.OriginalURL,
		link.ShortCode,
		link.CreatedAt,
	).Scan(&link.ID, &link.CreatedAt)

	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case constraintOriginalURL:
				return ErrURLExists
			case constraintShortCode:
				return ErrCodeExists
			}
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByURL(ctx context.Context, originalURL string) (*models.Link, error) {
	query := `
		SELECT id, original_url, short_code, created_at
		FROM links
		WHERE original_url = $1
	`

	link := &models.Link{}
	err := r.db.Pool.QueryRow(ctx, query, originalURL).Scan(
		&link.ID,
		&link.OriginalURL,
		&link.ShortCode,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by url: %w", err)
	}

	return link, nil
}

func (r *linkRepository) GetByShortCode(ctx context.Context, code string) (*models.Link, error) {
	query := `
		SELECT id, original_url, short_code, created_at
		FROM links
		WHERE short_code = $1
	`

	link := &models.Link{}
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&link.ID,
		&link.OriginalURL,
		&link.ShortCode,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}
