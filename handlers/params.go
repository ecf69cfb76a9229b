package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"editorial-cms/helper"
	"editorial-cms/middleware"
	"editorial-cms/models"
)

// uintParam reads a positive numeric path parameter. On failure it has
// already written a bad request.
func uintParam(c *gin.Context, h *helper.HTTPHelper, name, label string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		h.SendBadRequest(c, "Invalid "+label, h.EmptyJsonMap())
		return 0, false
	}
	return uint(v), true
}

// actor reads the caller set by the auth middleware. On failure it has
// already written an unauthorized response.
func actor(c *gin.Context, h *helper.HTTPHelper) (models.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		h.SendUnauthorizedError(c, "User not found in context", h.EmptyJsonMap())
	}
	return a, ok
}
