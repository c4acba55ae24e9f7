package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/response"
	"github.com/cryptoforce/platform/internal/service"
)

type TribunalHandler struct {
	tribunalService *service.TribunalService
}

func NewTribunalHandler(tribunalService *service.TribunalService) *TribunalHandler {
	return &TribunalHandler{
		tribunalService: tribunalService,
	}
}

// List returns published content the caller's level unlocks.
// GET /api/v1/tribunal/content
func (h *TribunalHandler) List(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var q dto.ContentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.tribunalService.ListPublished(user, q.Category, q.Page, q.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessPage(c, total, q.Page, q.PageSize, items)
}

// GET /api/v1/tribunal/content/mine
func (h *TribunalHandler) ListMine(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	items, err := h.tribunalService.ListMine(user)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, items)
}

// GET /api/v1/tribunal/content/:id
func (h *TribunalHandler) Get(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	content, err := h.tribunalService.Get(user, id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, content)
}

// POST /api/v1/tribunal/content
func (h *TribunalHandler) Submit(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var req dto.SubmitContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	content, err := h.tribunalService.Submit(c.Request.Context(), user, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, "Contenido enviado al Tribunal", content)
}

// PUT /api/v1/tribunal/content/:id
func (h *TribunalHandler) Update(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	content, err := h.tribunalService.Update(user, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Contenido actualizado", content)
}

// DELETE /api/v1/tribunal/content/:id
func (h *TribunalHandler) Delete(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.tribunalService.Delete(user, id); err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Contenido eliminado", nil)
}

// GET /api/v1/tribunal/review
func (h *TribunalHandler) ListPending(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var q dto.ContentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.tribunalService.ListPending(user, q.Page, q.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessPage(c, total, q.Page, q.PageSize, items)
}

// POST /api/v1/tribunal/content/:id/approve
func (h *TribunalHandler) Approve(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	content, err := h.tribunalService.Approve(c.Request.Context(), user, id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Contenido aprobado", content)
}

// POST /api/v1/tribunal/content/:id/reject
func (h *TribunalHandler) Reject(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.RejectContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	content, err := h.tribunalService.Reject(c.Request.Context(), user, id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Contenido rechazado", content)
}

// POST /api/v1/tribunal/content/:id/publish
func (h *TribunalHandler) Publish(c *gin.Context) {
	h.setPublished(c, true, "Contenido publicado")
}

// DELETE /api/v1/tribunal/content/:id/publish
func (h *TribunalHandler) Unpublish(c *gin.Context) {
	h.setPublished(c, false, "Contenido despublicado")
}

func (h *TribunalHandler) setPublished(c *gin.Context, published bool, message string) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	content, err := h.tribunalService.SetPublished(user, id, published)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, message, content)
}
