package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/usulmund/url-shorter/internal/models"
	"github.com/usulmund/url-shorter/internal/service"
	"go.uber.org/zap"
)

// privateURLPlaceholder placeholder substituted with the hidden
// original URL in the challenge template
const privateURLPlaceholder = "<PRIVATE_URL>"

const noPageHTML = `
    <html>
        <head>
            <title>Error</title>
        </head>
        <body>
            <h1>No such page</h1>
        </body>
    </html>
`

type LinkHandler struct {
	shortener      service.ShortenerService
	resolver       service.ResolverService
	visitProcessor service.VisitProcessor
	baseURL        string
	templatesDir   string
	logger         *zap.Logger
}

func NewLinkHandler(
	shortener service.ShortenerService,
	resolver service.ResolverService,
	visitProcessor service.VisitProcessor,
	baseURL string,
	templatesDir string,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		shortener:      shortener,
		resolver:       resolver,
		visitProcessor: visitProcessor,
		baseURL:        baseURL,
		templatesDir:   templatesDir,
		logger:         logger,
	}
}

type ShortLinkResponse struct {
	ShortLink string `json:"short_link"`
}

// CreateShort handles POST /short: returns a short alias for the URL
// and applies the requested visibility
func (h *LinkHandler) CreateShort(c *gin.Context) {
	var req models.CreateShortInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid short request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, MessageResponse{
			Message: "Field url is required.",
		})
		return
	}

	code, err := h.shortener.CreateShortURL(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to create short url", zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{
			Message: "Failed to create short link.",
		})
		return
	}

	c.JSON(http.StatusCreated, ShortLinkResponse{
		ShortLink: h.baseURL + "/" + code,
	})
}

// Resolve handles GET /:code: redirects for a public link, renders the
// access challenge for a private one, 404 for an unknown code.
// The visit is enqueued before resolution, best-effort.
func (h *LinkHandler) Resolve(c *gin.Context) {
	code := c.Param("code")

	if err := h.visitProcessor.RecordVisit(c.Request.Context(), &models.VisitEvent{ShortCode: code}); err != nil {
		h.logger.Debug("Failed to record visit (non-blocking)", zap.Error(err))
	}

	resolution, err := h.resolver.Resolve(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("Failed to resolve short code", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{
			Message: "Internal server error.",
		})
		return
	}

	switch resolution.State {
	case service.ResolutionPublic:
		c.Redirect(http.StatusTemporaryRedirect, resolution.OriginalURL)

	case service.ResolutionPrivate:
		h.renderChallenge(c, resolution.OriginalURL)

	default:
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(noPageHTML))
	}
}

// renderChallenge renders the private link challenge page with the
// original URL embedded for the follow-up access check
func (h *LinkHandler) renderChallenge(c *gin.Context, originalURL string) {
	template, err := os.ReadFile(filepath.Join(h.templatesDir, "private_link.html"))
	if err != nil {
		h.logger.Error("Failed to read challenge template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{
			Message: "Internal server error.",
		})
		return
	}

	page := strings.ReplaceAll(string(template), privateURLPlaceholder, originalURL)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
