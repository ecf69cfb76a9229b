package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"editorial-cms/draft"
	"editorial-cms/helper"
	"editorial-cms/models"
	"editorial-cms/services"
)

// DraftHandler exposes the edit, preview and submit workflow. Every route
// acts on the session named by :id.
type DraftHandler struct {
	sessions services.DraftSessionService
	Helper   *helper.HTTPHelper
}

func NewDraftHandler(sessions services.DraftSessionService, h *helper.HTTPHelper) *DraftHandler {
	return &DraftHandler{sessions: sessions, Helper: h}
}

func (h *DraftHandler) Start(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}

	var req models.StartDraftRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Helper.SendBindError(c, err)
			return
		}
	}

	sess, err := h.sessions.Start(c.Request.Context(), a, req.ArticleID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Draft session started", sess)
}

func (h *DraftHandler) Get(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(c.Param("id"), a)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", sess)
}

func (h *DraftHandler) Edit(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}

	var req models.EditDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	sess, err := h.sessions.Edit(c.Param("id"), a, req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Draft updated", sess)
}

func (h *DraftHandler) Preview(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}

	result, err := h.sessions.Preview(c.Param("id"), a)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Preview ready", result)
}

func (h *DraftHandler) View(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}

	view, err := h.sessions.View(c.Param("id"), a)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", view)
}

func (h *DraftHandler) Back(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}

	var req models.BackToEditingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Helper.SendBindError(c, err)
			return
		}
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	sess, err := h.sessions.Back(c.Param("id"), a, req.Token)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Back to editing", sess)
}

func (h *DraftHandler) Submit(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}

	var req models.SubmitDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBindError(c, err)
		return
	}

	// Once submitted, the write completes even if the client goes away.
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := h.sessions.Submit(ctx, c.Param("id"), a, draft.Action(req.Action))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	message := "Draft saved"
	if result.Outcome.Status == models.StatusPublished {
		message = "Article published"
	}
	h.Helper.SendSuccess(c, message, result)
}

func (h *DraftHandler) Discard(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}

	if err := h.sessions.Discard(c.Param("id"), a); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Draft discarded", h.Helper.EmptyJsonMap())
}
