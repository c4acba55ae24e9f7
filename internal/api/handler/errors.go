package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/internal/api/middleware"
	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/pkg/response"
	"github.com/cryptoforce/platform/internal/service"
)

// writeError maps service sentinels onto response helpers. Anything else is
// logged and reported as a generic 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrFeedbackNotFound),
		errors.Is(err, service.ErrContentNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrFounderImmutable),
		errors.Is(err, service.ErrLevelLocked):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrReferralCodeTaken),
		errors.Is(err, service.ErrTicketResolved),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidReviewState),
		errors.Is(err, service.ErrNotApproved):
		response.ConflictError(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.AuthError(c, err.Error())
	case errors.Is(err, service.ErrInvalidLevel),
		errors.Is(err, service.ErrInvalidAvatar),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidContentLevel):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		response.Error(c, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		response.ServerError(c, "")
	}
}

// caller returns the authenticated profile or writes a 401.
func caller(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.AuthError(c, "")
		return nil, false
	}
	return user, true
}

// paramID parses the :id path parameter or writes a 400.
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "ID inválido")
		return 0, false
	}
	return id, true
}
