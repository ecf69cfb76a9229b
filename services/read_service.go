package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"editorial-cms/cache"
	"editorial-cms/document"
	"editorial-cms/models"
)

// ReadService projects stored article bodies for readers.
type ReadService interface {
	PublicArticle(ctx context.Context, id uint) (*models.ArticleView, error)
	ArticleView(ctx context.Context, id uint, actor models.Actor) (*models.ArticleView, error)
	PublicArticles(ctx context.Context, params models.ArticleListParams) ([]models.ArticleView, int64, error)
	RenderBody(body string) models.RenderDocumentResponse
}

// articleReader is the part of ArticleService the read path needs.
type articleReader interface {
	GetArticle(ctx context.Context, id uint, actor models.Actor, isPublic bool) (*models.Article, error)
	GetArticles(ctx context.Context, params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error)
	RecordView(ctx context.Context, id uint) error
}

type renderedBody struct {
	Summary string `json:"summary"`
	HTML    string `json:"html"`
}

type readService struct {
	articles articleReader
	cache    cache.Cache
	ttl      time.Duration
	log      zerolog.Logger
}

func NewReadService(articles articleReader, c cache.Cache, ttl time.Duration, log zerolog.Logger) ReadService {
	return &readService{
		articles: articles,
		cache:    c,
		ttl:      ttl,
		log:      log.With().Str("component", "read_service").Logger(),
	}
}

func (s *readService) PublicArticle(ctx context.Context, id uint) (*models.ArticleView, error) {
	article, err := s.articles.GetArticle(ctx, id, models.Actor{}, true)
	if err != nil {
		return nil, err
	}

	if err := s.articles.RecordView(ctx, id); err != nil {
		s.log.Warn().Err(err).Uint("article_id", id).Msg("Failed to record view")
	} else {
		article.ViewCount++
	}

	return s.view(ctx, article, article.PublishedVersion), nil
}

func (s *readService) ArticleView(ctx context.Context, id uint, actor models.Actor) (*models.ArticleView, error) {
	article, err := s.articles.GetArticle(ctx, id, actor, false)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, article, article.LatestVersion), nil
}

// PublicArticles lists published articles with their summaries. Bodies
// are not rendered for listings.
func (s *readService) PublicArticles(ctx context.Context, params models.ArticleListParams) ([]models.ArticleView, int64, error) {
	articles, total, err := s.articles.GetArticles(ctx, params, true)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.ArticleView, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		v := models.ArticleView{Article: a, Version: a.PublishedVersion, Summary: document.FallbackPreview}
		if a.PublishedVersion != nil {
			v.Summary = s.rendered(ctx, a.PublishedVersion).Summary
		}
		views = append(views, v)
	}
	return views, total, nil
}

func (s *readService) RenderBody(body string) models.RenderDocumentResponse {
	parsed := document.Parse(body)
	return models.RenderDocumentResponse{
		Summary:  document.ExtractPreview(parsed.Document),
		HTML:     document.Render(parsed.Document),
		Fallback: parsed.Fallback,
	}
}

func (s *readService) view(ctx context.Context, article *models.Article, version *models.ArticleVersion) *models.ArticleView {
	v := &models.ArticleView{Article: article, Version: version}
	if version == nil {
		empty := document.Empty()
		v.Summary = document.ExtractPreview(empty)
		v.HTML = document.Render(empty)
		return v
	}
	r := s.rendered(ctx, version)
	v.Summary, v.HTML = r.Summary, r.HTML
	return v
}

// rendered returns the projection of a version, cached by version id.
// Versions are immutable apart from status, so entries never go stale.
func (s *readService) rendered(ctx context.Context, version *models.ArticleVersion) renderedBody {
	key := fmt.Sprintf("article_version:%d:rendered", version.ID)

	var r renderedBody
	err := s.cache.Get(ctx, key, &r)
	if err == nil {
		return r
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}

	parsed := document.Parse(version.Content)
	if parsed.Fallback {
		s.log.Warn().Err(parsed.Cause).Uint("version_id", version.ID).Msg("Stored body is malformed, rendering fallback")
	}
	r = renderedBody{
		Summary: document.ExtractPreview(parsed.Document),
		HTML:    document.Render(parsed.Document),
	}
	if err := s.cache.Set(ctx, key, r, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return r
}
