package mocks

import (
	"context"
	"sync"

	"github.com/usulmund/url-shorter/internal/models"
	"github.com/usulmund/url-shorter/internal/repository"
)

// MockLinkRepository реализует repository.LinkRepository для тестов.
// Эмулирует оба ограничения уникальности таблицы links.
type MockLinkRepository struct {
	mu     sync.RWMutex
	byURL  map[string]*models.Link
	byCode map[string]*models.Link
	nextID int64
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		byURL:  make(map[string]*models.Link),
		byCode: make(map[string]*models.Link),
		nextID: 1,
	}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byURL[link.OriginalURL]; exists {
		return repository.ErrURLExists
	}
	if _, exists := m.byCode[link.ShortCode]; exists {
		return repository.ErrCodeExists
	}

	link.ID = m.nextID
	m.nextID++
	m.byURL[link.OriginalURL] = link
	m.byCode[link.ShortCode] = link
	return nil
}

func (m *MockLinkRepository) GetByURL(ctx context.Context, originalURL string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.byURL[originalURL]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func (m *MockLinkRepository) GetByShortCode(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.byCode[code]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

// MockVisibilityRepository реализует repository.VisibilityRepository для тестов
type MockVisibilityRepository struct {
	mu      sync.RWMutex
	records map[string]models.VisibilitySet
}

func NewMockVisibilityRepository() *MockVisibilityRepository {
	return &MockVisibilityRepository{
		records: make(map[string]models.VisibilitySet),
	}
}

func (m *MockVisibilityRepository) Create(ctx context.Context, originalURL string, set models.VisibilitySet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[originalURL]; exists {
		return repository.ErrVisibilityExists
	}
	m.records[originalURL] = models.ParseVisibilitySet(set.String())
	return nil
}

func (m *MockVisibilityRepository) Get(ctx context.Context, originalURL string) (models.VisibilitySet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, exists := m.records[originalURL]
	if !exists {
		return nil, repository.ErrVisibilityNotFound
	}
	return models.ParseVisibilitySet(set.String()), nil
}

func (m *MockVisibilityRepository) Update(ctx context.Context, originalURL string, set, previous models.VisibilitySet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.records[originalURL]
	if !exists || current.String() != previous.String() {
		return repository.ErrVisibilityConflict
	}
	m.records[originalURL] = models.ParseVisibilitySet(set.String())
	return nil
}

// MockAccountRepository реализует repository.AccountRepository для тестов
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	nextID   int64
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*models.Account),
		nextID:   1,
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[account.Username]; exists {
		return repository.ErrUsernameExists
	}

	account.ID = m.nextID
	m.nextID++
	m.accounts[account.Username] = account
	return nil
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, exists := m.accounts[username]
	if !exists {
		return nil, repository.ErrAccountNotFound
	}
	return account, nil
}

// MockVisitRepository реализует repository.VisitRepository для тестов
type MockVisitRepository struct {
	mu     sync.RWMutex
	visits []*models.Visit
	nextID int64
}

func NewMockVisitRepository() *MockVisitRepository {
	return &MockVisitRepository{nextID: 1}
}

func (m *MockVisitRepository) Record(ctx context.Context, visit *models.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	visit.ID = m.nextID
	m.nextID++
	m.visits = append(m.visits, visit)
	return nil
}

func (m *MockVisitRepository) CountByShortCode(ctx context.Context, code string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cnt int64
	for _, visit := range m.visits {
		if visit.ShortCode == code {
			cnt++
		}
	}
	return cnt, nil
}

func (m *MockVisitRepository) ListByShortCode(ctx context.Context, code string, offset, limit int) ([]models.Visit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.Visit
	for _, visit := range m.visits {
		if visit.ShortCode == code {
			matched = append(matched, *visit)
		}
	}

	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// All возвращает все записанные переходы (для проверок в тестах)
func (m *MockVisitRepository) All() []*models.Visit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Visit, len(m.visits))
	copy(out, m.visits)
	return out
}

// MockStatusRepository реализует repository.StatusRepository для тестов
type MockStatusRepository struct {
	mu     sync.RWMutex
	Counts map[string]int64
	// FailTables таблицы, опрос которых возвращает ошибку
	FailTables map[string]error
	Links      []repository.LinkWithVisibility
}

func NewMockStatusRepository() *MockStatusRepository {
	return &MockStatusRepository{
		Counts:     make(map[string]int64),
		FailTables: make(map[string]error),
	}
}

func (m *MockStatusRepository) CountTable(ctx context.Context, table string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.FailTables[table]; ok {
		return 0, err
	}
	return m.Counts[table], nil
}

func (m *MockStatusRepository) ListLinksWithVisibility(ctx context.Context, offset, limit int) ([]repository.LinkWithVisibility, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset >= len(m.Links) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.Links) {
		end = len(m.Links)
	}
	return m.Links[offset:end], nil
}
