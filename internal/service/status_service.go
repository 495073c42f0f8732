package service

import (
	"context"
	"fmt"

	"github.com/usulmund/url-shorter/internal/models"
	"github.com/usulmund/url-shorter/internal/repository"
	"go.uber.org/zap"
)

// PingReport отчёт о состоянии БД для эндпоинта /ping
type PingReport struct {
	Active bool
	Tables map[string]string // таблица -> "N records" либо "connection error"
}

// StatusService интерфейс админских и статистических операций
type StatusService interface {
	Ping(ctx context.Context) *PingReport
	LinkStatuses(ctx context.Context, offset, limit int) ([]repository.LinkWithVisibility, error)
	TransitionCount(ctx context.Context, code string) (int64, error)
	VisitLog(ctx context.Context, code string, offset, limit int) ([]models.Visit, error)
}

type statusService struct {
	statusRepo repository.StatusRepository
	linkRepo   repository.LinkRepository
	visitRepo  repository.VisitRepository
	logger     *zap.Logger
}

// NewStatusService создаёт новый экземпляр сервиса
func NewStatusService(
	statusRepo repository.StatusRepository,
	linkRepo repository.LinkRepository,
	visitRepo repository.VisitRepository,
	logger *zap.Logger,
) StatusService {
	return &statusService{
		statusRepo: statusRepo,
		linkRepo:   linkRepo,
		visitRepo:  visitRepo,
		logger:     logger,
	}
}

// Ping опрашивает каждую таблицу отдельно: недоступность одной
// помечается как connection error и переводит общий статус в inactive.
func (s *statusService) Ping(ctx context.Context) *PingReport {
	report := &PingReport{
		Active: true,
		Tables: make(map[string]string),
	}

	for _, table := range repository.PingTables() {
		cnt, err := s.statusRepo.CountTable(ctx, table)
		if err != nil {
			s.logger.Error("Ошибка подключения к БД",
				zap.String("table", table),
				zap.Error(err),
			)
			report.Tables[table] = "connection error"
			report.Active = false
			continue
		}
		report.Tables[table] = fmt.Sprintf("%d records", cnt)
	}

	return report
}

func (s *statusService) LinkStatuses(ctx context.Context, offset, limit int) ([]repository.LinkWithVisibility, error) {
	return s.statusRepo.ListLinksWithVisibility(ctx, offset, limit)
}

// TransitionCount возвращает число переходов по коду.
// Неизвестный код - это ErrLinkNotFound, а не нулевой счётчик.
func (s *statusService) TransitionCount(ctx context.Context, code string) (int64, error) {
	if _, err := s.linkRepo.GetByShortCode(ctx, code); err != nil {
		return 0, err
	}
	return s.visitRepo.CountByShortCode(ctx, code)
}

func (s *statusService) VisitLog(ctx context.Context, code string, offset, limit int) ([]models.Visit, error) {
	if _, err := s.linkRepo.GetByShortCode(ctx, code); err != nil {
		return nil, err
	}
	return s.visitRepo.ListByShortCode(ctx, code, offset, limit)
}
