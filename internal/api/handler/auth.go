package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/response"
	"github.com/cryptoforce/platform/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a local account, attributing the referral code if any.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, "Registro exitoso", resp)
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Inicio de sesión exitoso", resp)
}

// Session returns the caller's identity and profile.
// GET /api/v1/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	response.Success(c, h.authService.Session(user))
}
