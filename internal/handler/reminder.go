package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lcheng-dev/homekeep/internal/ai"
	"github.com/lcheng-dev/homekeep/internal/models"
	"github.com/lcheng-dev/homekeep/internal/service"
	"github.com/lcheng-dev/homekeep/internal/storage"
)

type ReminderHandler struct {
	svc *service.ReminderService
	ai  *ai.Client
	loc *time.Location
}

type createReminderRequest struct {
	Title            string          `json:"title" binding:"required"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	RecurrenceType   string          `json:"recurrenceType"`
	RecurrenceConfig json.RawMessage `json:"recurrenceConfig"`
	FirstRemindTime  time.Time       `json:"firstRemindTime" binding:"required"`
	AdvanceMinutes   int             `json:"advanceMinutes"`
}

func (h *ReminderHandler) Create(c *gin.Context) {
	var req createReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	r, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		UserID:           userID(c),
		Title:            req.Title,
		Description:      req.Description,
		Category:         models.Category(req.Category),
		RecurrenceType:   req.RecurrenceType,
		RecurrenceConfig: req.RecurrenceConfig,
		FirstRemindTime:  req.FirstRemindTime,
		AdvanceMinutes:   req.AdvanceMinutes,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "reminder created",
		slog.Int("reminder_id", r.ReminderID),
		slog.Int64("user_id", r.UserID),
		slog.String("recurrence", r.RecurrenceType),
	)
	c.JSON(http.StatusCreated, r)
}

type quickCreateRequest struct {
	Text string `json:"text" binding:"required"`
}

// QuickCreate parses free text into a reminder via the AI client and runs it
// through the normal create path.
func (h *ReminderHandler) QuickCreate(c *gin.Context) {
	if h.ai == nil {
		respondError(c, http.StatusServiceUnavailable, "ai_disabled", "natural language create is not configured")
		return
	}

	var req quickCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	draft, err := h.ai.ParseReminder(c.Request.Context(), req.Text, time.Now().In(h.loc))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "quick create parse failed",
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadGateway, "ai_error", "could not parse reminder text")
		return
	}

	first, err := time.ParseInLocation("2006-01-02 15:04", draft.FirstRemindTime, h.loc)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "config_error", "could not understand the reminder time")
		return
	}

	r, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		UserID:           userID(c),
		Title:            draft.Title,
		Description:      draft.Description,
		Category:         models.Category(draft.Category),
		RecurrenceType:   draft.RecurrenceType,
		RecurrenceConfig: draft.RecurrenceConfig,
		FirstRemindTime:  first,
		AdvanceMinutes:   draft.AdvanceMinutes,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ReminderHandler) Get(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	r, err := h.svc.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReminderHandler) List(c *gin.Context) {
	filter := storage.ListFilter{Category: c.Query("category")}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("pageSize"))

	reminders, err := h.svc.List(c.Request.Context(), userID(c), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if reminders == nil {
		reminders = []*models.Reminder{}
	}
	c.JSON(http.StatusOK, gin.H{"items": reminders, "page": filter.Page, "pageSize": filter.PageSize})
}

type updateReminderRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Category       *string `json:"category"`
	AdvanceMinutes *int    `json:"advanceMinutes"`
	IsActive       *bool   `json:"isActive"`
}

func (h *ReminderHandler) Update(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	var req updateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	in := service.UpdateInput{
		Title:          req.Title,
		Description:    req.Description,
		AdvanceMinutes: req.AdvanceMinutes,
		IsActive:       req.IsActive,
	}
	if req.Category != nil {
		cat := models.Category(*req.Category)
		in.Category = &cat
	}
	r, err := h.svc.Update(c.Request.Context(), id, userID(c), in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReminderHandler) Delete(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, userID(c)); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type completeRequest struct {
	CompletedAt *time.Time `json:"completedAt"`
	Notes       *string    `json:"notes"`
	Amount      *float64   `json:"amount"`
}

func (h *ReminderHandler) Complete(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	// An empty body is fine: everything in the payload is optional.
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	var when time.Time
	if req.CompletedAt != nil {
		when = *req.CompletedAt
	}
	r, err := h.svc.Complete(c.Request.Context(), id, userID(c), when, req.Notes, req.Amount)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	slog.InfoContext(c.Request.Context(), "reminder completed",
		slog.Int("reminder_id", id),
		slog.String("next_remind_time", r.NextRemindTime.Format(time.RFC3339)),
	)
	c.JSON(http.StatusOK, r)
}

func (h *ReminderHandler) Uncomplete(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	r, err := h.svc.Uncomplete(c.Request.Context(), id, userID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReminderHandler) Cancel(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	r, err := h.svc.Cancel(c.Request.Context(), id, userID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type editRecurrenceRequest struct {
	RecurrenceType   string          `json:"recurrenceType" binding:"required"`
	RecurrenceConfig json.RawMessage `json:"recurrenceConfig"`
	FirstRemindTime  *time.Time      `json:"firstRemindTime"`
}

func (h *ReminderHandler) EditRecurrence(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	var req editRecurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	r, err := h.svc.EditRecurrence(c.Request.Context(), id, userID(c), service.EditRecurrenceInput{
		RecurrenceType:   req.RecurrenceType,
		RecurrenceConfig: req.RecurrenceConfig,
		FirstRemindTime:  req.FirstRemindTime,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReminderHandler) Preview(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	count, _ := strconv.Atoi(c.DefaultQuery("count", "5"))
	occurrences, err := h.svc.Preview(c.Request.Context(), id, userID(c), count)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occurrences": occurrences})
}

type previewRuleRequest struct {
	RecurrenceType   string          `json:"recurrenceType" binding:"required"`
	RecurrenceConfig json.RawMessage `json:"recurrenceConfig"`
	FirstRemindTime  time.Time       `json:"firstRemindTime" binding:"required"`
	Count            int             `json:"count"`
}

// PreviewRule previews a rule that has not been saved yet, so the create
// form can show upcoming occurrences as the user edits.
func (h *ReminderHandler) PreviewRule(c *gin.Context) {
	var req previewRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.Count < 1 {
		req.Count = 5
	}
	occurrences, err := h.svc.PreviewRule(req.RecurrenceType, req.RecurrenceConfig, req.FirstRemindTime, req.Count)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occurrences": occurrences})
}

func (h *ReminderHandler) RRule(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	rule, err := h.svc.RRuleString(c.Request.Context(), id, userID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rrule": rule})
}
