package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/usulmund/url-shorter/internal/models"
	"github.com/usulmund/url-shorter/internal/repository"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrCodeSpaceExhausted = errors.New("исчерпаны попытки генерации короткого кода")
)

// Константы генератора
const (
	shortCodeLength     = 6
	charset             = "ABCDEFGHJKLMNOPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz234567890"
	maxGenerateAttempts = 5
)

// ShortenerService интерфейс создания коротких ссылок
type ShortenerService interface {
	CreateShortURL(ctx context.Context, input *models.CreateShortInput) (string, error)
}

type shortenerService struct {
	linkRepo repository.LinkRepository
	visRepo  repository.VisibilityRepository
	logger   *zap.Logger
}

// NewShortenerService создаёт новый экземпляр сервиса
func NewShortenerService(
	linkRepo repository.LinkRepository,
	visRepo repository.VisibilityRepository,
	logger *zap.Logger,
) ShortenerService {
	return &shortenerService{
		linkRepo: linkRepo,
		visRepo:  visRepo,
		logger:   logger,
	}
}

// CreateShortURL возвращает короткий код для URL: существующий для уже
// известного адреса, новый для незнакомого. В обоих случаях запись о
// видимости создаётся или дополняется запросом пользователя.
func (s *shortenerService) CreateShortURL(ctx context.Context, input *models.CreateShortInput) (string, error) {
	code, err := s.getOrCreateCode(ctx, input.OriginalURL)
	if err != nil {
		return "", err
	}

	if err := s.mergeVisibility(ctx, input.OriginalURL, input.CreatorName, input.Users); err != nil {
		return "", err
	}

	return code, nil
}

// getOrCreateCode идемпотентно сопоставляет URL и короткий код.
// Уникальность обеспечивается только ограничениями БД: вставка с повтором
// original_url означает проигранную гонку, берём код победителя;
// повтор short_code - коллизию генератора, пробуем новый код.
func (s *shortenerService) getOrCreateCode(ctx context.Context, originalURL string) (string, error) {
	link, err := s.linkRepo.GetByURL(ctx, originalURL)
	if err == nil {
		s.logger.Debug("URL уже известен", zap.String("short_code", link.ShortCode))
		return link.ShortCode, nil
	}
	if !errors.Is(err, repository.ErrLinkNotFound) {
		return "", err
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := generateShortCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}

		newLink := &models.Link{
			OriginalURL: originalURL,
			ShortCode:   code,
			CreatedAt:   time.Now(),
		}

		err = s.linkRepo.Create(ctx, newLink)
		switch {
		case err == nil:
			return code, nil

		case errors.Is(err, repository.ErrURLExists):
			// Параллельный запрос успел создать эту же ссылку
			existing, getErr := s.linkRepo.GetByURL(ctx, originalURL)
			if getErr != nil {
				return "", getErr
			}
			return existing.ShortCode, nil

		case errors.Is(err, repository.ErrCodeExists):
			s.logger.Warn("Коллизия короткого кода, повторная генерация",
				zap.String("short_code", code),
				zap.Int("attempt", attempt+1),
			)

		default:
			return "", err
		}
	}

	return "", ErrCodeSpaceExhausted
}

// mergeVisibility создаёт либо дополняет запись о видимости ссылки.
// Обновление выполняется через compare-and-swap: проигравший гонку
// перечитывает состояние и повторяет объединение. В каждом круге
// кто-то один побеждает, поэтому цикл всегда продвигается;
// отмена контекста его прерывает.
func (s *shortenerService) mergeVisibility(ctx context.Context, originalURL, creator, requested string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		existing, err := s.visRepo.Get(ctx, originalURL)

		if errors.Is(err, repository.ErrVisibilityNotFound) {
			set := models.NewVisibilitySet(creator, requested)
			createErr := s.visRepo.Create(ctx, originalURL, set)
			if createErr == nil {
				return nil
			}
			if errors.Is(createErr, repository.ErrVisibilityExists) {
				// Запись уже создана конкурентом, перечитываем и объединяем
				continue
			}
			return createErr
		}
		if err != nil {
			return err
		}

		merged := existing.Merge(creator, requested)
		err = s.visRepo.Update(ctx, originalURL, merged, existing)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVisibilityConflict) {
			return err
		}
		s.logger.Debug("Гонка при объединении видимости, повторная попытка",
			zap.String("original_url", originalURL),
		)
	}
}

// generateShortCode генерирует случайный код из 6 символов алфавита charset
func generateShortCode() (string, error) {
	result := make([]byte, shortCodeLength)
	for i := 0; i < shortCodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}
