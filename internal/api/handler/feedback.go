package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/response"
	"github.com/cryptoforce/platform/internal/service"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

// POST /api/v1/feedback
func (h *FeedbackHandler) Create(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var req dto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	fb, err := h.feedbackService.Create(c.Request.Context(), user, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, "Ticket creado", fb)
}

// GET /api/v1/feedback/mine
func (h *FeedbackHandler) ListMine(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	items, err := h.feedbackService.ListMine(user)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, items)
}

// List is the moderator inbox, optionally filtered by status.
// GET /api/v1/feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var q dto.FeedbackListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.feedbackService.List(user, q.Status, q.Page, q.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessPage(c, total, q.Page, q.PageSize, items)
}

// GET /api/v1/feedback/:id
func (h *FeedbackHandler) Get(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	fb, err := h.feedbackService.Get(user, id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, fb)
}

// GET /api/v1/feedback/:id/responses
func (h *FeedbackHandler) ListResponses(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	items, err := h.feedbackService.ListResponses(user, id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, items)
}

// POST /api/v1/feedback/:id/respond
func (h *FeedbackHandler) Respond(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.RespondFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	fb, err := h.feedbackService.Respond(c.Request.Context(), user, id, req.Response)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Respuesta enviada", fb)
}

// POST /api/v1/feedback/:id/resolve
func (h *FeedbackHandler) Resolve(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	fb, err := h.feedbackService.Resolve(c.Request.Context(), user, id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Ticket resuelto", fb)
}

// PUT /api/v1/feedback/:id/status
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.UpdateFeedbackStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	fb, err := h.feedbackService.UpdateStatus(c.Request.Context(), user, id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Estado actualizado", fb)
}

// DELETE /api/v1/feedback/:id
func (h *FeedbackHandler) Delete(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.feedbackService.Delete(user, id); err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Ticket eliminado", nil)
}
