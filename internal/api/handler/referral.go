package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/response"
	"github.com/cryptoforce/platform/internal/service"
)

type ReferralHandler struct {
	referralService *service.ReferralService
}

func NewReferralHandler(referralService *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
	}
}

// Validate never fails on an unknown code.
// GET /api/v1/referrals/validate?code=
func (h *ReferralHandler) Validate(c *gin.Context) {
	resp, err := h.referralService.Validate(c.Query("code"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, resp)
}

// Process attributes the caller to the owner of the code. Business
// rejections are a 200 with success=false in the result.
// POST /api/v1/referrals/process
func (h *ReferralHandler) Process(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var req dto.ProcessReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.referralService.Process(c.Request.Context(), user.Email, req.ReferralCode)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}

// GET /api/v1/user/referrals
func (h *ReferralHandler) Stats(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	stats, err := h.referralService.Stats(user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, stats)
}
