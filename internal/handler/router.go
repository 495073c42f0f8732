package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/usulmund/url-shorter/internal/config"
	"github.com/usulmund/url-shorter/internal/service"
	"go.uber.org/zap"
)

func NewRouter(
	shortener service.ShortenerService,
	resolver service.ResolverService,
	auth service.AuthService,
	status service.StatusService,
	visitProcessor service.VisitProcessor,
	appCfg config.AppConfig,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.Default()

	// Middleware для логгирования
	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	baseURL := appCfg.BaseURL()

	authHandler := NewAuthHandler(auth, appCfg.TemplatesDir, logger)
	linkHandler := NewLinkHandler(shortener, resolver, visitProcessor, baseURL, appCfg.TemplatesDir, logger)
	statusHandler := NewStatusHandler(status, baseURL, logger)

	// Форма логина и создания ссылок
	router.GET("/", authHandler.Index)

	// Аутентификация и доступ к приватным ссылкам
	router.POST("/auth", authHandler.LogIn)
	router.POST("/private_link", authHandler.PrivateAccess)

	// Создание короткой ссылки
	router.POST("/short", linkHandler.CreateShort)

	// Админские и статистические эндпоинты
	router.GET("/ping", statusHandler.Ping)
	router.GET("/user/status", statusHandler.UserStatus)
	router.GET("/:code/status", statusHandler.LinkStats)

	// Переход по короткой ссылке (корневой путь)
	router.GET("/:code", linkHandler.Resolve)

	return router
}
