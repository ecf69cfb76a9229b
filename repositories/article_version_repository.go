package repositories

import (
	"context"

	"editorial-cms/models"

	"gorm.io/gorm"
)

type ArticleVersionRepository interface {
	WithTx(tx *gorm.DB) ArticleVersionRepository
	DeleteVersionsByArticleID(ctx context.Context, articleID uint) error
}

type articleVersionRepository struct {
	db *gorm.DB
}

func NewArticleVersionRepository(db *gorm.DB) ArticleVersionRepository {
	return &articleVersionRepository{db: db}
}

func (r *articleVersionRepository) WithTx(tx *gorm.DB) ArticleVersionRepository {
	return &articleVersionRepository{db: tx}
}

func (r *articleVersionRepository) DeleteVersionsByArticleID(ctx context.Context, articleID uint) error {
	return r.db.WithContext(ctx).Where("article_id = ?", articleID).Delete(&models.ArticleVersion{}).Error
}
