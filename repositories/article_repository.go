package repositories

import (
	"context"
	"errors"
	"fmt"

	"editorial-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var articleSortColumns = map[string]string{
	"created_at": "articles.created_at",
	"updated_at": "articles.updated_at",
	"title":      "articles.title",
	"view_count": "articles.view_count",
	"like_count": "articles.like_count",
}

type ArticleRepository interface {
	WithTx(tx *gorm.DB) ArticleRepository
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	GetList(ctx context.Context, params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint) error
	CreateVersion(ctx context.Context, version *models.ArticleVersion) error
	GetVersions(ctx context.Context, articleID uint) ([]models.ArticleVersion, error)
	GetVersion(ctx context.Context, articleID, versionID uint) (*models.ArticleVersion, error)
	GetVersionByID(ctx context.Context, versionID uint) (*models.ArticleVersion, error)
	UpdateVersionStatus(ctx context.Context, versionID uint, status models.ArticleStatus) error
	NextVersionNumber(ctx context.Context, articleID uint) (int, error)
	CountArticlesByTag(ctx context.Context) (map[uint]int, error)
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) WithTx(tx *gorm.DB) ArticleRepository {
	return &articleRepository{db: tx}
}

func (r *articleRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("PublishedVersion.Tags").
		Preload("PublishedVersion.Category").
		Preload("LatestVersion.Tags").
		Preload("LatestVersion.Category").
		First(&article, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.ErrorNotFound{Resource: "article", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) GetList(ctx context.Context, params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error) {
	var articles []models.Article
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Article{})

	// Public listings filter on the published version, everything else on
	// the latest one. Only one of the two joins is ever added.
	if isPublic {
		query = query.Joins("JOIN article_versions av ON articles.published_version_id = av.id").
			Where("av.status = ?", models.StatusPublished)
	} else {
		query = query.Joins("JOIN article_versions av ON articles.latest_version_id = av.id")
		if params.Status != "" {
			query = query.Where("av.status = ?", params.Status)
		}
	}

	if params.AuthorID > 0 {
		query = query.Where("articles.author_id = ?", params.AuthorID)
	}
	if params.CategoryID > 0 {
		query = query.Where("av.category_id = ?", params.CategoryID)
	}
	if params.TagID > 0 {
		query = query.Joins("JOIN article_version_tags avt ON av.id = avt.article_version_id").
			Where("avt.tag_id = ?", params.TagID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := articleSortColumns[params.SortBy]
	if !ok {
		column = articleSortColumns["created_at"]
	}
	order := "desc"
	if params.SortOrder == "asc" {
		order = "asc"
	}

	page, limit := params.Page, params.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	err := query.
		Preload("Author").
		Preload("LatestVersion.Tags").
		Preload("PublishedVersion.Tags").
		Order(fmt.Sprintf("%s %s", column, order)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&articles).Error

	return articles, total, err
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).
		Model(article).
		Select("Title", "LatestVersionID", "PublishedVersionID").
		Updates(article).Error
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Article{}, id).Error
}

func (r *articleRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// CreateVersion inserts version and its tag links. Tags must already exist.
func (r *articleRepository) CreateVersion(ctx context.Context, version *models.ArticleVersion) error {
	return r.db.WithContext(ctx).Omit("Article", "Category", "Tags.*").Create(version).Error
}

func (r *articleRepository) GetVersions(ctx context.Context, articleID uint) ([]models.ArticleVersion, error) {
	var versions []models.ArticleVersion
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Preload("Tags").
		Order("version_number desc").
		Find(&versions).Error
	return versions, err
}

func (r *articleRepository) GetVersion(ctx context.Context, articleID, versionID uint) (*models.ArticleVersion, error) {
	var version models.ArticleVersion
	err := r.db.WithContext(ctx).
		Where("article_id = ? AND id = ?", articleID, versionID).
		Preload("Tags").
		Preload("Category").
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.ErrorNotFound{Resource: "article version", ID: versionID}
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *articleRepository) GetVersionByID(ctx context.Context, versionID uint) (*models.ArticleVersion, error) {
	var version models.ArticleVersion
	err := r.db.WithContext(ctx).Preload("Tags").Preload("Category").First(&version, versionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.ErrorNotFound{Resource: "article version", ID: versionID}
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *articleRepository) UpdateVersionStatus(ctx context.Context, versionID uint, status models.ArticleStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ArticleVersion{}).
		Where("id = ?", versionID).
		Update("status", status).Error
}

func (r *articleRepository) NextVersionNumber(ctx context.Context, articleID uint) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.ArticleVersion{}).
		Unscoped().
		Where("article_id = ?", articleID).
		Select("MAX(version_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// CountArticlesByTag counts published versions per tag.
func (r *articleRepository) CountArticlesByTag(ctx context.Context) (map[uint]int, error) {
	var results []struct {
		TagID uint
		Count int
	}

	query := `
		SELECT 
			avt.tag_id,
			COUNT(*) as count
		FROM article_version_tags avt
		JOIN article_versions av ON avt.article_version_id = av.id
		WHERE av.status = 'published' AND av.deleted_at IS NULL
		GROUP BY avt.tag_id
	`

	err := r.db.WithContext(ctx).Raw(query).Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int)
	for _, result := range results {
		counts[result.TagID] = result.Count
	}

	return counts, nil
}
