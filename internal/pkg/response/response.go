package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Default messages per status
var statusMessages = map[int]string{
	http.StatusOK:                  "ok",
	http.StatusBadRequest:          "Parámetros inválidos",
	http.StatusUnauthorized:        "No autenticado",
	http.StatusForbidden:           "Acceso denegado",
	http.StatusNotFound:            "Recurso no encontrado",
	http.StatusConflict:            "Operación en conflicto",
	http.StatusTooManyRequests:     "Demasiadas solicitudes",
	http.StatusInternalServerError: "Error interno del servidor",
}

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PageData wraps a page of items.
type PageData struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Items    interface{} `json:"items"`
}

// Success writes a 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage writes a 200 with a message and data.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created writes a 201 with data.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SuccessPage writes a paginated 200.
func SuccessPage(c *gin.Context, total int64, page, pageSize int, items interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PageData{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Items:    items,
		},
	})
}

// Error writes a failure envelope with the given HTTP status.
func Error(c *gin.Context, status int, message string) {
	if message == "" {
		message = statusMessages[status]
	}
	c.JSON(status, Response{
		Success: false,
		Error:   message,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func AuthError(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func PermissionError(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func NotFoundError(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func ConflictError(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// ServerError never exposes the underlying error text.
func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
