package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/usulmund/url-shorter/internal/models"
	"github.com/usulmund/url-shorter/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService интерфейс проверки учётных данных.
// Authenticate регистрирует аккаунт при первом входе,
// CheckAccess только проверяет существующий.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
	CheckAccess(ctx context.Context, username, password string) (bool, error)
}

type authService struct {
	accountRepo   repository.AccountRepository
	hashPasswords bool
	logger        *zap.Logger
}

// NewAuthService создаёт новый экземпляр сервиса.
// hashPasswords включает bcrypt; при false пароли хранятся и сравниваются
// в открытом виде, как в первой версии сервиса.
func NewAuthService(
	accountRepo repository.AccountRepository,
	hashPasswords bool,
	logger *zap.Logger,
) AuthService {
	return &authService{
		accountRepo:   accountRepo,
		hashPasswords: hashPasswords,
		logger:        logger,
	}
}

// Authenticate проверяет логин и пароль. Незнакомый пользователь
// регистрируется автоматически. Гонка двух первых входов разрешается
// ограничением уникальности на username: проигравший переходит
// к обычной проверке пароля.
func (s *authService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if containsWhitespace(username) {
		return false, nil
	}

	stored, err := s.storedPassword(password)
	if err != nil {
		return false, err
	}

	account := &models.Account{
		Username:  username,
		Password:  stored,
		CreatedAt: time.Now(),
	}

	err = s.accountRepo.Create(ctx, account)
	if err == nil {
		s.logger.Info("Зарегистрирован новый пользователь", zap.String("username", username))
		return true, nil
	}
	if !errors.Is(err, repository.ErrUsernameExists) {
		return false, err
	}

	return s.CheckAccess(ctx, username, password)
}

// CheckAccess проверяет пароль существующего аккаунта, не создавая новых.
// Для неизвестного пользователя возвращает false без деталей.
func (s *authService) CheckAccess(ctx context.Context, username, password string) (bool, error) {
	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}

	return s.verifyPassword(password, account.Password), nil
}

// storedPassword приводит пароль к виду, в котором он хранится
func (s *authService) storedPassword(password string) (string, error) {
	if !s.hashPasswords {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) verifyPassword(password, stored string) bool {
	if s.hashPasswords {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

func containsWhitespace(username string) bool {
	return strings.ContainsFunc(username, unicode.IsSpace)
}
