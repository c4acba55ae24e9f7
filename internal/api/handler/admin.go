package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/response"
	"github.com/cryptoforce/platform/internal/service"
)

// AdminHandler serves founder-only maintenance routes.
type AdminHandler struct {
	userService     *service.UserService
	referralService *service.ReferralService
}

func NewAdminHandler(userService *service.UserService, referralService *service.ReferralService) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		referralService: referralService,
	}
}

// PUT /api/v1/admin/users/:id/level
func (h *AdminHandler) SetLevel(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	targetID, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.SetLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.userService.SetLevel(user, targetID, *req.Level)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Nivel actualizado", profile)
}

// NormalizeCodes rewrites legacy referral codes. Dry run unless dry_run=false.
// POST /api/v1/admin/referral-codes/normalize
func (h *AdminHandler) NormalizeCodes(c *gin.Context) {
	var req dto.NormalizeCodesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ParamError(c, err.Error())
			return
		}
	}

	dryRun := true
	if req.DryRun != nil {
		dryRun = *req.DryRun
	}

	report, err := h.referralService.NormalizeLegacyCodes(dryRun)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, report)
}
