package service_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usulmund/url-shorter/internal/models"
	"github.com/usulmund/url-shorter/internal/service"
	"github.com/usulmund/url-shorter/internal/service/mocks"
)

// setupResolver создаёт резолвер с моковыми репозиториями
func setupResolver() (service.ResolverService, *mocks.MockLinkRepository, *mocks.MockVisibilityRepository) {
	linkRepo := mocks.NewMockLinkRepository()
	visRepo := mocks.NewMockVisibilityRepository()
	resolver := service.NewResolverService(linkRepo, visRepo, zap.NewNop())
	return resolver, linkRepo, visRepo
}

func seedLink(t *testing.T, linkRepo *mocks.MockLinkRepository, visRepo *mocks.MockVisibilityRepository, url, code, users string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, &models.Link{
		OriginalURL: url,
		ShortCode:   code,
		CreatedAt:   time.Now(),
	}))
	require.NoError(t, visRepo.Create(ctx, url, models.ParseVisibilitySet(users)))
}

// TestResolverService_PublicLink проверяет разрешение публичной ссылки
func TestResolverService_PublicLink(t *testing.T) {
	resolver, linkRepo, visRepo := setupResolver()
	seedLink(t, linkRepo, visRepo, "http://example.com", "abc234", "all")

	resolution, err := resolver.Resolve(context.Background(), "abc234")

	require.NoError(t, err)
	assert.Equal(t, service.ResolutionPublic, resolution.State)
	assert.Equal(t, "http://example.com", resolution.OriginalURL)
}

// TestResolverService_PrivateLink проверяет разрешение приватной ссылки
func TestResolverService_PrivateLink(t *testing.T) {
	resolver, linkRepo, visRepo := setupResolver()
	seedLink(t, linkRepo, visRepo, "http://example.com", "abc234", "alice bob")

	resolution, err := resolver.Resolve(context.Background(), "abc234")

	require.NoError(t, err)
	assert.Equal(t, service.ResolutionPrivate, resolution.State)
	assert.Equal(t, "http://example.com", resolution.OriginalURL)
}

// TestResolverService_UnknownCode проверяет разрешение несуществующего кода
func TestResolverService_UnknownCode(t *testing.T) {
	resolver, _, _ := setupResolver()

	resolution, err := resolver.Resolve(context.Background(), "nosuch")

	require.NoError(t, err)
	assert.Equal(t, service.ResolutionNotFound, resolution.State)
}

// TestResolverService_MissingVisibility проверяет защитную ветку:
// ссылка без записи о видимости считается несуществующей
func TestResolverService_MissingVisibility(t *testing.T) {
	resolver, linkRepo, _ := setupResolver()
	require.NoError(t, linkRepo.Create(context.Background(), &models.Link{
		OriginalURL: "http://example.com",
		ShortCode:   "abc234",
		CreatedAt:   time.Now(),
	}))

	resolution, err := resolver.Resolve(context.Background(), "abc234")

	require.NoError(t, err)
	assert.Equal(t, service.ResolutionNotFound, resolution.State)
}
