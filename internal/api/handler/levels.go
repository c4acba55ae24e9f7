package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/response"
)

type LevelsHandler struct{}

func NewLevelsHandler() *LevelsHandler {
	return &LevelsHandler{}
}

// List returns the membership hierarchy.
// GET /api/v1/levels
func (h *LevelsHandler) List(c *gin.Context) {
	levels := access.Levels()
	items := make([]dto.LevelItem, len(levels))
	for i, l := range levels {
		items[i] = dto.LevelItem{
			Level:     l.Level,
			Name:      l.Name,
			Slug:      l.Slug,
			Dashboard: l.Dashboard,
		}
	}

	response.Success(c, gin.H{
		"levels": items,
	})
}
