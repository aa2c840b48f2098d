package handlers

import (
	"github.com/dentclinicai/dentclinicai-api/internal/services"
	"github.com/gin-gonic/gin"
)

type RoiHandler struct {
	service services.RoiServiceInterface
}

func NewRoiHandler(service services.RoiServiceInterface) *RoiHandler {
	return &RoiHandler{service: service}
}

// Calculate handles POST /api/roi
func (h *RoiHandler) Calculate(c *gin.Context) {
	noStore(c)

	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.Calculate(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, result)
}
