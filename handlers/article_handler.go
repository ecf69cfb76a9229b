package handlers

import (
	"github.com/gin-gonic/gin"

	"editorial-cms/helper"
	"editorial-cms/models"
	"editorial-cms/services"
)

type ArticleHandler struct {
	articleService services.ArticleService
	readService    services.ReadService
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, readService services.ReadService, h *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, readService: readService, Helper: h}
}

func bindListParams(c *gin.Context, h *helper.HTTPHelper) (models.ArticleListParams, bool) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.SendBindError(c, err)
		return params, false
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 10
	}
	return params, true
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	params, ok := bindListParams(c, h.Helper)
	if !ok {
		return
	}

	articles, total, err := h.articleService.GetArticles(c.Request.Context(), params, false)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", map[string]interface{}{
		"articles":   articles,
		"pagination": h.Helper.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

func (h *ArticleHandler) GetPublicArticles(c *gin.Context) {
	params, ok := bindListParams(c, h.Helper)
	if !ok {
		return
	}

	views, total, err := h.readService.PublicArticles(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", map[string]interface{}{
		"articles":   views,
		"pagination": h.Helper.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}
	id, ok := uintParam(c, h.Helper, "id", "article ID")
	if !ok {
		return
	}

	view, err := h.readService.ArticleView(c.Request.Context(), id, a)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", view)
}

func (h *ArticleHandler) GetPublicArticle(c *gin.Context) {
	id, ok := uintParam(c, h.Helper, "id", "article ID")
	if !ok {
		return
	}

	view, err := h.readService.PublicArticle(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", view)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}
	id, ok := uintParam(c, h.Helper, "id", "article ID")
	if !ok {
		return
	}

	if err := h.articleService.DeleteArticle(c.Request.Context(), id, a); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article deleted successfully", h.Helper.EmptyJsonMap())
}

func (h *ArticleHandler) GetArticleVersions(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}
	id, ok := uintParam(c, h.Helper, "id", "article ID")
	if !ok {
		return
	}

	versions, err := h.articleService.GetArticleVersions(c.Request.Context(), id, a)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", versions)
}

func (h *ArticleHandler) GetArticleVersion(c *gin.Context) {
	a, ok := actor(c, h.Helper)
	if !ok {
		return
	}
	articleID, ok := uintParam(c, h.Helper, "id", "article ID")
	if !ok {
		return
	}
	versionID, ok := uintParam(c, h.Helper, "version_id", "version ID")
	if !ok {
		return
	}

	version, err := h.articleService.GetArticleVersion(c.Request.Context(), articleID, versionID, a)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", version)
}
