package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lcheng-dev/homekeep/internal/ai"
	"github.com/lcheng-dev/homekeep/internal/recurrence"
	"github.com/lcheng-dev/homekeep/internal/service"
	"github.com/lcheng-dev/homekeep/internal/storage"
)

const userIDHeader = "X-User-ID"

// NewRouter wires the /api/v1 reminder surface. Authentication is out of
// scope; the gateway in front of this service is expected to resolve the
// user and forward it in the X-User-ID header.
func NewRouter(svc *service.ReminderService, aiClient *ai.Client, loc *time.Location) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	h := &ReminderHandler{svc: svc, ai: aiClient, loc: loc}

	v1 := r.Group("/api/v1", requireUserID)
	{
		v1.GET("/reminders", h.List)
		v1.POST("/reminders", h.Create)
		v1.POST("/reminders/quick", h.QuickCreate)
		v1.POST("/reminders/preview", h.PreviewRule)
		v1.GET("/reminders/:id", h.Get)
		v1.PUT("/reminders/:id", h.Update)
		v1.DELETE("/reminders/:id", h.Delete)
		v1.POST("/reminders/:id/complete", h.Complete)
		v1.POST("/reminders/:id/uncomplete", h.Uncomplete)
		v1.POST("/reminders/:id/cancel", h.Cancel)
		v1.PUT("/reminders/:id/recurrence", h.EditRecurrence)
		v1.GET("/reminders/:id/preview", h.Preview)
		v1.GET("/reminders/:id/rrule", h.RRule)
		v1.GET("/completions/reminder/:id", h.Completions)
		v1.GET("/completions/stats/my", h.Statistics)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func requireUserID(c *gin.Context) {
	id, err := strconv.ParseInt(c.GetHeader(userIDHeader), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "missing_user",
			"message": "valid " + userIDHeader + " header required",
		})
		return
	}
	c.Set("userID", id)
}

func userID(c *gin.Context) int64 {
	return c.GetInt64("userID")
}

func reminderID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "bad_id", "reminder id must be a positive integer")
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, status int, errType, message string) {
	c.JSON(status, gin.H{"error": errType, "message": message})
}

// respondDomainError maps engine and storage errors onto HTTP statuses.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", "reminder not found")
	case errors.Is(err, storage.ErrConcurrencyConflict):
		respondError(c, http.StatusConflict, "version_conflict", "reminder was modified concurrently, retry")
	case errors.Is(err, service.ErrAlreadyTerminal):
		respondError(c, http.StatusConflict, "already_terminal", err.Error())
	case errors.Is(err, service.ErrNotPending):
		respondError(c, http.StatusConflict, "not_pending", err.Error())
	case errors.Is(err, recurrence.ErrConfig):
		respondError(c, http.StatusUnprocessableEntity, "config_error", err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
