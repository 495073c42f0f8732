package service

import (
	"context"
	"errors"

	"github.com/usulmund/url-shorter/internal/repository"
	"go.uber.org/zap"
)

// ResolutionState состояние разрешения короткой ссылки
type ResolutionState int

const (
	ResolutionNotFound ResolutionState = iota
	ResolutionPublic
	ResolutionPrivate
)

// Resolution результат разрешения: куда и как отправлять пользователя
type Resolution struct {
	State       ResolutionState
	OriginalURL string
}

// ResolverService интерфейс разрешения коротких ссылок
type ResolverService interface {
	Resolve(ctx context.Context, code string) (*Resolution, error)
}

type resolverService struct {
	linkRepo repository.LinkRepository
	visRepo  repository.VisibilityRepository
	logger   *zap.Logger
}

// NewResolverService создаёт новый экземпляр сервиса
func NewResolverService(
	linkRepo repository.LinkRepository,
	visRepo repository.VisibilityRepository,
	logger *zap.Logger,
) ResolverService {
	return &resolverService{
		linkRepo: linkRepo,
		visRepo:  visRepo,
		logger:   logger,
	}
}

// Resolve определяет судьбу перехода: редирект для публичной ссылки,
// страница с проверкой доступа для приватной, NotFound для неизвестного кода.
// Ссылка без записи о видимости считается несуществующей, а не ошибкой.
func (s *resolverService) Resolve(ctx context.Context, code string) (*Resolution, error) {
	link, err := s.linkRepo.GetByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			s.logger.Info("Короткий код не найден", zap.String("short_code", code))
			return &Resolution{State: ResolutionNotFound}, nil
		}
		return nil, err
	}

	visibility, err := s.visRepo.Get(ctx, link.OriginalURL)
	if err != nil {
		if errors.Is(err, repository.ErrVisibilityNotFound) {
			s.logger.Warn("Ссылка без записи о видимости",
				zap.String("short_code", code),
				zap.String("original_url", link.OriginalURL),
			)
			return &Resolution{State: ResolutionNotFound}, nil
		}
		return nil, err
	}

	state := ResolutionPrivate
	if visibility.IsPublic() {
		state = ResolutionPublic
	}

	return &Resolution{
		State:       state,
		OriginalURL: link.OriginalURL,
	}, nil
}
