package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/usulmund/url-shorter/internal/models"
	"github.com/usulmund/url-shorter/internal/repository"
	"github.com/usulmund/url-shorter/internal/service"
	"go.uber.org/zap"
)

// Пагинация по умолчанию
const (
	defaultOffset = 0
	defaultLimit  = 10
)

type StatusHandler struct {
	service service.StatusService
	baseURL string
	logger  *zap.Logger
}

func NewStatusHandler(service service.StatusService, baseURL string, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Ping handles GET /ping: reports per-table record counts;
// any unreachable table turns the status inactive with HTTP 503
func (h *StatusHandler) Ping(c *gin.Context) {
	report := h.service.Ping(c.Request.Context())

	body := gin.H{}
	for table, state := range report.Tables {
		body[table] = state
	}

	if report.Active {
		body["db_status"] = "active"
		c.JSON(http.StatusOK, body)
		return
	}

	body["db_status"] = "inactive"
	c.JSON(http.StatusServiceUnavailable, body)
}

// UserStatus handles GET /user/status: paginated list of all links
// with their visibility type
func (h *StatusHandler) UserStatus(c *gin.Context) {
	offset := queryInt(c, "offset", defaultOffset)
	limit := queryInt(c, "limit", defaultLimit)

	rows, err := h.service.LinkStatuses(c.Request.Context(), offset, limit)
	if err != nil {
		h.logger.Error("Failed to list link statuses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{
			Message: "Internal server error.",
		})
		return
	}

	statuses := make([]models.LinkStatus, 0, len(rows))
	for _, row := range rows {
		linkType := models.LinkTypePrivate
		if row.Users.IsPublic() {
			linkType = models.LinkTypePublic
		}
		statuses = append(statuses, models.LinkStatus{
			ShortID:     row.Link.ID,
			ShortURL:    "http://" + h.baseURL + "/" + row.Link.ShortCode,
			OriginalURL: row.Link.OriginalURL,
			Type:        linkType,
		})
	}

	c.JSON(http.StatusOK, statuses)
}

// LinkStats handles GET /:code/status: visit count by default,
// the paginated visit log with full_info=true
func (h *StatusHandler) LinkStats(c *gin.Context) {
	code := c.Param("code")
	fullInfo, _ := strconv.ParseBool(c.Query("full_info"))

	if fullInfo {
		offset := queryInt(c, "offset", defaultOffset)
		limit := queryInt(c, "limit", defaultLimit)

		visits, err := h.service.VisitLog(c.Request.Context(), code, offset, limit)
		if err != nil {
			h.respondStatsError(c, code, err)
			return
		}
		if visits == nil {
			visits = []models.Visit{}
		}
		c.JSON(http.StatusOK, visits)
		return
	}

	cnt, err := h.service.TransitionCount(c.Request.Context(), code)
	if err != nil {
		h.respondStatsError(c, code, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":                  h.baseURL + "/" + code,
		"count of transitions": cnt,
	})
}

func (h *StatusHandler) respondStatsError(c *gin.Context, code string, err error) {
	if errors.Is(err, repository.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, MessageResponse{
			Message: "Link not found.",
		})
		return
	}
	h.logger.Error("Failed to get link stats", zap.String("code", code), zap.Error(err))
	c.JSON(http.StatusInternalServerError, MessageResponse{
		Message: "Internal server error.",
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
