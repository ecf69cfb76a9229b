package handlers

import (
	"github.com/gin-gonic/gin"

	"editorial-cms/helper"
	"editorial-cms/models"
	"editorial-cms/services"
)

type DocumentHandler struct {
	readService services.ReadService
	Helper      *helper.HTTPHelper
}

func NewDocumentHandler(readService services.ReadService, h *helper.HTTPHelper) *DocumentHandler {
	return &DocumentHandler{readService: readService, Helper: h}
}

// Render projects a serialized body without storing anything. Malformed
// bodies render the fallback and report it.
func (h *DocumentHandler) Render(c *gin.Context) {
	var req models.RenderDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", h.readService.RenderBody(req.Body))
}
