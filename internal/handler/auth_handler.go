package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/usulmund/url-shorter/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service      service.AuthService
	templatesDir string
	logger       *zap.Logger
}

func NewAuthHandler(service service.AuthService, templatesDir string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		templatesDir: templatesDir,
		logger:       logger,
	}
}

type AuthRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Index serves the login/creation form
func (h *AuthHandler) Index(c *gin.Context) {
	c.File(filepath.Join(h.templatesDir, "auth_form.html"))
}

// LogIn handles POST /auth: validates credentials, registering
// the account on first use
func (h *AuthHandler) LogIn(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid auth request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, MessageResponse{
			Message: "Username and password are required.",
		})
		return
	}

	ok, err := h.service.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error("Failed to authenticate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{
			Message: "Internal server error.",
		})
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{
			Message: "Username or password is incorrect.",
		})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: "Welcome, " + req.Username + "!",
	})
}

// PrivateAccess handles POST /private_link: checks access to a private
// link for an existing account, never creating a new one
func (h *AuthHandler) PrivateAccess(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid private_link request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, MessageResponse{
			Message: "Username and password are required.",
		})
		return
	}

	ok, err := h.service.CheckAccess(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error("Failed to check access", zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{
			Message: "Internal server error.",
		})
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{
			Message: "Username or password is incorrect.",
		})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: "Welcome, " + req.Username + "!",
	})
}
