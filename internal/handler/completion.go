package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lcheng-dev/homekeep/internal/models"
)

func (h *ReminderHandler) Completions(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	completions, err := h.svc.Completions(c.Request.Context(), id, userID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if completions == nil {
		completions = []*models.Completion{}
	}
	c.JSON(http.StatusOK, completions)
}

func (h *ReminderHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context(), userID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
