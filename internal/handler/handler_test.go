package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usulmund/url-shorter/internal/config"
	"github.com/usulmund/url-shorter/internal/handler"
	"github.com/usulmund/url-shorter/internal/models"
	"github.com/usulmund/url-shorter/internal/repository"
	"github.com/usulmund/url-shorter/internal/service"
	"github.com/usulmund/url-shorter/internal/service/mocks"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// testEnv окружение для тестов обработчиков
type testEnv struct {
	router     *gin.Engine
	linkRepo   *mocks.MockLinkRepository
	visRepo    *mocks.MockVisibilityRepository
	visitRepo  *mocks.MockVisitRepository
	statusRepo *mocks.MockStatusRepository
	processor  service.VisitProcessor
}

// setupEnv собирает роутер поверх моковых репозиториев
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	templatesDir := t.TempDir()
	challenge := `<html><body><a href="<PRIVATE_URL>">link</a></body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(templatesDir, "private_link.html"), []byte(challenge), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(templatesDir, "auth_form.html"), []byte("<html>form</html>"), 0o644))

	linkRepo := mocks.NewMockLinkRepository()
	visRepo := mocks.NewMockVisibilityRepository()
	accountRepo := mocks.NewMockAccountRepository()
	visitRepo := mocks.NewMockVisitRepository()
	statusRepo := mocks.NewMockStatusRepository()

	logger := zap.NewNop()
	shortener := service.NewShortenerService(linkRepo, visRepo, logger)
	resolver := service.NewResolverService(linkRepo, visRepo, logger)
	auth := service.NewAuthService(accountRepo, true, logger)
	status := service.NewStatusService(statusRepo, linkRepo, visitRepo, logger)

	processor := service.NewVisitProcessor(visitRepo, linkRepo, visRepo, logger)
	processor.Start()
	t.Cleanup(processor.Stop)

	appCfg := config.AppConfig{
		Host:         "localhost",
		Port:         "8080",
		TemplatesDir: templatesDir,
	}
	router := handler.NewRouter(shortener, resolver, auth, status, processor, appCfg, logger)

	return &testEnv{
		router:     router,
		linkRepo:   linkRepo,
		visRepo:    visRepo,
		visitRepo:  visitRepo,
		statusRepo: statusRepo,
		processor:  processor,
	}
}

func (env *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	env.router.ServeHTTP(w, req)
	return w
}

// TestHandler_Auth проверяет сценарий входа: регистрация, повторный вход,
// неверный пароль
func TestHandler_Auth(t *testing.T) {
	env := setupEnv(t)

	w := env.postJSON(t, "/auth", gin.H{"username": "dave", "password": "p1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Welcome, dave!", resp.Message)

	w = env.postJSON(t, "/auth", gin.H{"username": "dave", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Username or password is incorrect.", resp.Message)
}

// TestHandler_PrivateLinkAccess проверяет, что /private_link не создаёт аккаунтов
func TestHandler_PrivateLinkAccess(t *testing.T) {
	env := setupEnv(t)

	w := env.postJSON(t, "/private_link", gin.H{"username": "stranger", "password": "p1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env.postJSON(t, "/auth", gin.H{"username": "dave", "password": "p1"})
	w = env.postJSON(t, "/private_link", gin.H{"username": "dave", "password": "p1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestHandler_ShortAndRedirect проверяет сквозной сценарий: создание публичной
// ссылки и редирект по ней
func TestHandler_ShortAndRedirect(t *testing.T) {
	env := setupEnv(t)

	w := env.postJSON(t, "/short", gin.H{
		"url":          "http://example.com",
		"creator_name": "alice",
		"users":        "",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp handler.ShortLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.ShortLink, "localhost:8080/"))

	code := strings.TrimPrefix(resp.ShortLink, "localhost:8080/")
	assert.Len(t, code, 6)

	w = env.get("/" + code)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "http://example.com", w.Header().Get("Location"))
}

// TestHandler_PrivateChallenge проверяет сужение публичной ссылки и
// страницу проверки доступа с подставленным оригинальным URL
func TestHandler_PrivateChallenge(t *testing.T) {
	env := setupEnv(t)

	w := env.postJSON(t, "/short", gin.H{
		"url":          "http://example.com",
		"creator_name": "alice",
		"users":        "",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var first handler.ShortLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = env.postJSON(t, "/short", gin.H{
		"url":          "http://example.com",
		"creator_name": "bob",
		"users":        "carol",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var second handler.ShortLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ShortLink, second.ShortLink)

	code := strings.TrimPrefix(second.ShortLink, "localhost:8080/")
	w = env.get("/" + code)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http://example.com")
}

// TestHandler_UnknownCode проверяет 404 для несуществующего кода
// и отсутствие записи в журнале переходов
func TestHandler_UnknownCode(t *testing.T) {
	env := setupEnv(t)

	w := env.get("/nosuch")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No such page")

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, env.visitRepo.All())
}

// TestHandler_Ping проверяет отчёт о состоянии БД
func TestHandler_Ping(t *testing.T) {
	env := setupEnv(t)
	env.statusRepo.Counts["links"] = 2

	w := env.get("/ping")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "active", resp["db_status"])
	assert.Equal(t, "2 records", resp["links"])
}

// TestHandler_Ping_Inactive проверяет 503 при недоступной таблице
func TestHandler_Ping_Inactive(t *testing.T) {
	env := setupEnv(t)
	env.statusRepo.FailTables["visits"] = errors.New("connection refused")

	w := env.get("/ping")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "inactive", resp["db_status"])
	assert.Equal(t, "connection error", resp["visits"])
}

// TestHandler_UserStatus проверяет список ссылок с типом видимости
func TestHandler_UserStatus(t *testing.T) {
	env := setupEnv(t)
	env.statusRepo.Links = []repository.LinkWithVisibility{
		{
			Link: models.Link{
				ID:          1,
				OriginalURL: "http://example.com",
				ShortCode:   "abc234",
			},
			Users: models.ParseVisibilitySet("all"),
		},
		{
			Link: models.Link{
				ID:          2,
				OriginalURL: "http://example.org",
				ShortCode:   "def567",
			},
			Users: models.ParseVisibilitySet("alice bob"),
		},
	}

	w := env.get("/user/status")
	assert.Equal(t, http.StatusOK, w.Code)

	var statuses []models.LinkStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, "http://localhost:8080/abc234", statuses[0].ShortURL)
	assert.Equal(t, models.LinkTypePublic, statuses[0].Type)
	assert.Equal(t, models.LinkTypePrivate, statuses[1].Type)
}

// TestHandler_LinkStats проверяет счётчик переходов и 404 для неизвестного кода
func TestHandler_LinkStats(t *testing.T) {
	env := setupEnv(t)

	w := env.postJSON(t, "/short", gin.H{
		"url":          "http://example.com",
		"creator_name": "alice",
		"users":        "",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp handler.ShortLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code := strings.TrimPrefix(resp.ShortLink, "localhost:8080/")

	// Два перехода по ссылке
	env.get("/" + code)
	env.get("/" + code)

	// Даём worker pool время обработать события
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(env.visitRepo.All()) < 2 {
		time.Sleep(10 * time.Millisecond)
	}

	w = env.get("/" + code + "/status")
	assert.Equal(t, http.StatusOK, w.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, "localhost:8080/"+code, stats["url"])
	assert.Equal(t, float64(2), stats["count of transitions"])

	w = env.get("/nosuch/status")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestHandler_LinkStats_FullInfo проверяет постраничный журнал переходов
func TestHandler_LinkStats_FullInfo(t *testing.T) {
	env := setupEnv(t)

	w := env.postJSON(t, "/short", gin.H{
		"url":          "http://example.com",
		"creator_name": "alice",
		"users":        "",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp handler.ShortLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code := strings.TrimPrefix(resp.ShortLink, "localhost:8080/")

	for i := 0; i < 3; i++ {
		env.get("/" + code)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(env.visitRepo.All()) < 3 {
		time.Sleep(10 * time.Millisecond)
	}

	w = env.get("/" + code + "/status?full_info=true&offset=1&limit=10")
	assert.Equal(t, http.StatusOK, w.Code)

	var visits []models.Visit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &visits))
	assert.Len(t, visits, 2)
	for _, visit := range visits {
		assert.Equal(t, code, visit.ShortCode)
		assert.Equal(t, models.LinkTypePublic, visit.LinkType)
	}
}

// TestHandler_Index проверяет выдачу формы логина
func TestHandler_Index(t *testing.T) {
	env := setupEnv(t)

	w := env.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "form")
}
