package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/usulmund/url-shorter/internal/models"
	"github.com/usulmund/url-shorter/internal/repository"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	maxRecordRetries     = 3    // Максимальное количество попыток записи
)

// VisitProcessor интерфейс асинхронной записи переходов.
// Запись best-effort: потеря события не должна ломать редирект.
type VisitProcessor interface {
	Start()
	Stop()
	RecordVisit(ctx context.Context, event *models.VisitEvent) error
}

// visitProcessor реализация на основе worker pool
type visitProcessor struct {
	visitRepo    repository.VisitRepository
	linkRepo     repository.LinkRepository
	visRepo      repository.VisibilityRepository
	logger       *zap.Logger
	visitChannel chan *models.VisitEvent
	workerCount  int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewVisitProcessor создаёт новый экземпляр процессора переходов
func NewVisitProcessor(
	visitRepo repository.VisitRepository,
	linkRepo repository.LinkRepository,
	visRepo repository.VisibilityRepository,
	logger *zap.Logger,
) VisitProcessor {
	return &visitProcessor{
		visitRepo:    visitRepo,
		linkRepo:     linkRepo,
		visRepo:      visRepo,
		logger:       logger,
		visitChannel: make(chan *models.VisitEvent, defaultChannelBuffer),
		workerCount:  defaultWorkerCount,
	}
}

// Start запускает worker pool
func (p *visitProcessor) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("Запуск воркеров процессора переходов", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop корректно останавливает worker pool
func (p *visitProcessor) Stop() {
	p.logger.Info("Остановка процессора переходов...")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Процессор переходов остановлен")
}

// worker обрабатывает события переходов из канала
func (p *visitProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Воркер переходов запущен", zap.Int("id", id))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Воркер переходов остановлен", zap.Int("id", id))
			return

		case event, ok := <-p.visitChannel:
			if !ok {
				return
			}
			p.processVisit(event)
		}
	}
}

// processVisit записывает один переход: находит ссылку, классифицирует её
// по множеству видимости и добавляет строку в журнал. Неизвестный код
// молча пропускается - телеметрия не важнее редиректа.
func (p *visitProcessor) processVisit(event *models.VisitEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()

	link, err := p.linkRepo.GetByShortCode(ctx, event.ShortCode)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			p.logger.Debug("Переход по неизвестному коду не записан",
				zap.String("short_code", event.ShortCode),
			)
			return
		}
		p.logger.Warn("Не удалось найти ссылку для записи перехода",
			zap.String("short_code", event.ShortCode),
			zap.Error(err),
		)
		return
	}

	linkType := models.LinkTypePrivate
	visibility, err := p.visRepo.Get(ctx, link.OriginalURL)
	if err != nil {
		p.logger.Warn("Не удалось получить видимость для записи перехода",
			zap.String("short_code", event.ShortCode),
			zap.Error(err),
		)
		return
	}
	if visibility.IsPublic() {
		linkType = models.LinkTypePublic
	}

	visit := &models.Visit{
		ShortCode:   event.ShortCode,
		OriginalURL: link.OriginalURL,
		LinkID:      link.ID,
		LinkType:    linkType,
		VisitedAt:   time.Now(),
	}

	// Retry логика для записи в БД
	for i := 0; i < maxRecordRetries; i++ {
		if err = p.visitRepo.Record(ctx, visit); err == nil {
			return
		}
		if i < maxRecordRetries-1 {
			p.logger.Debug("Повторная попытка записи перехода",
				zap.String("short_code", event.ShortCode),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
		}
	}

	p.logger.Error("Не удалось записать переход после всех попыток",
		zap.String("short_code", event.ShortCode),
		zap.Error(err),
	)
}

// RecordVisit отправляет событие перехода в worker pool (неблокирующая операция)
func (p *visitProcessor) RecordVisit(ctx context.Context, event *models.VisitEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.visitChannel <- event:
		return nil
	default:
		// Канал заполнен, теряем событие, но не блокируем запрос
		p.logger.Warn("Буфер канала переходов заполнен, событие потеряно",
			zap.String("short_code", event.ShortCode),
		)
		return nil
	}
}
