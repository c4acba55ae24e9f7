package handler

import (
	"io"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/response"
	"github.com/cryptoforce/platform/internal/service"
)

const maxAvatarSize = 5 * 1024 * 1024

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, profile)
}

// PUT /api/v1/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.userService.UpdateProfile(user, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Perfil actualizado", profile)
}

// POST /api/v1/user/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "Selecciona una imagen")
		return
	}

	if file.Size > maxAvatarSize {
		response.ParamError(c, "La imagen no puede superar 5MB")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAvatarSize+1))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	url, err := h.userService.UploadAvatar(user, data, filepath.Ext(file.Filename))
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Avatar actualizado", gin.H{
		"avatar_url": url,
	})
}
