package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/usulmund/url-shorter/internal/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameExists  = errors.New("username already exists")
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}

type accountRepository struct {
	db *PostgresDB
}

func NewAccountRepository(db *PostgresDB) AccountRepository {
	return &accountRepository{db: db}
}

// Create регистрирует аккаунт. ErrUsernameExists сигнализирует,
// что такой пользователь уже есть (в том числе при гонке двух первых входов).
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (username, password, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		account.Username,
		account.Password,
		account.CreatedAt,
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, password, created_at
		FROM accounts
		WHERE username = $1
	`

	account := &models.Account{}
	err := r.db.Pool.QueryRow(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.Password,
		&account.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}
