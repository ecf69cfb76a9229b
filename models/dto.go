package models

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Slug string `json:"slug" binding:"required,min=1,max=100"`
}

type ArticleListParams struct {
	Status     string `form:"status"`
	AuthorID   uint   `form:"author_id"`
	TagID      uint   `form:"tag_id"`
	CategoryID uint   `form:"category_id"`
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=10"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
}

// StartDraftRequest opens an editing session. ArticleID is nil for a new
// article.
type StartDraftRequest struct {
	ArticleID *uint `json:"article_id"`
}

type EditDraftRequest struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Thumbnail  string   `json:"thumbnail"`
	CategoryID *uint    `json:"category_id"`
	Tags       []string `json:"tags"`
}

type BackToEditingRequest struct {
	Token string `json:"token"`
}

type SubmitDraftRequest struct {
	Action string `json:"action" binding:"required,oneof=draft publish"`
}

type RenderDocumentRequest struct {
	Body string `json:"body"`
}

type RenderDocumentResponse struct {
	Summary  string `json:"summary"`
	HTML     string `json:"html"`
	Fallback bool   `json:"fallback"`
}

// ArticleView is an article with its body projected for reading.
type ArticleView struct {
	Article *Article        `json:"article"`
	Version *ArticleVersion `json:"version"`
	Summary string          `json:"summary"`
	HTML    string          `json:"html"`
}
