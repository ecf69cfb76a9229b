package services

import (
	"context"
	"errors"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/rs/zerolog"
	"gopkg.in/go-playground/validator.v9"
	"gorm.io/gorm"

	"editorial-cms/document"
	"editorial-cms/draft"
	"editorial-cms/events"
	"editorial-cms/helper"
	"editorial-cms/models"
	"editorial-cms/repositories"
)

// ArticleService is the content store behind the drafting workflow plus
// the read operations of the CMS.
type ArticleService interface {
	draft.ContentStore
	GetArticle(ctx context.Context, id uint, actor models.Actor, isPublic bool) (*models.Article, error)
	GetArticles(ctx context.Context, params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error)
	DeleteArticle(ctx context.Context, id uint, actor models.Actor) error
	GetArticleVersions(ctx context.Context, articleID uint, actor models.Actor) ([]models.ArticleVersion, error)
	GetArticleVersion(ctx context.Context, articleID, versionID uint, actor models.Actor) (*models.ArticleVersion, error)
	RecordView(ctx context.Context, id uint) error
}

// articleInput holds the snapshot fields checked by the validator.
type articleInput struct {
	Title     string               `json:"title" validate:"required,max=255"`
	Thumbnail string               `json:"thumbnail" validate:"omitempty,url,max=2048"`
	Tags      []string             `json:"tags" validate:"max=20,dive,max=100"`
	Status    models.ArticleStatus `json:"status" validate:"oneof=draft published"`
}

type articleService struct {
	articleRepo  repositories.ArticleRepository
	versionRepo  repositories.ArticleVersionRepository
	tagRepo      repositories.TagRepository
	categoryRepo repositories.CategoryRepository
	publisher    events.Publisher
	validate     *validator.Validate
	trans        ut.Translator
	log          zerolog.Logger
}

func NewArticleService(
	articleRepo repositories.ArticleRepository,
	versionRepo repositories.ArticleVersionRepository,
	tagRepo repositories.TagRepository,
	categoryRepo repositories.CategoryRepository,
	publisher events.Publisher,
	log zerolog.Logger,
) ArticleService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	validate, trans := helper.NewValidator("validate")
	return &articleService{
		articleRepo:  articleRepo,
		versionRepo:  versionRepo,
		tagRepo:      tagRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
		validate:     validate,
		trans:        trans,
		log:          log.With().Str("component", "article_service").Logger(),
	}
}

// prepared is a validated snapshot ready to be written.
type prepared struct {
	snapshot draft.Snapshot
	body     string
	doc      document.Document
	tags     []string
}

// prepare validates s and canonicalises its body and tags.
func (s *articleService) prepare(ctx context.Context, snap draft.Snapshot) (*prepared, error) {
	p := &prepared{snapshot: snap, tags: models.NormalizeTags(snap.Tags)}
	p.snapshot.Title = strings.TrimSpace(snap.Title)
	p.snapshot.Thumbnail = strings.TrimSpace(snap.Thumbnail)

	verr := validateInput(s.validate, s.trans, articleInput{
		Title:     p.snapshot.Title,
		Thumbnail: p.snapshot.Thumbnail,
		Tags:      p.tags,
		Status:    snap.Status,
	})

	body, doc, ok := canonicalBody(snap.Body)
	if !ok {
		verr.Add("body", "body is not a valid document")
	}
	p.body, p.doc = body, doc

	if snap.CategoryID != nil {
		exists, err := s.categoryRepo.Exists(ctx, *snap.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			verr.Add("category_id", "category_id does not exist")
		}
	}

	if !verr.Empty() {
		return nil, verr
	}
	return p, nil
}

func validateInput(validate *validator.Validate, trans ut.Translator, in articleInput) *models.ErrorValidation {
	verr := &models.ErrorValidation{}
	err := validate.Struct(in)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for field, msgs := range helper.FieldErrors(verrs, trans) {
			for _, m := range msgs {
				verr.Add(field, m)
			}
		}
	}
	return verr
}

// canonicalBody returns the stored form of a serialized body. A blank body
// is the empty document; anything else must decode strictly.
func canonicalBody(raw string) (string, document.Document, bool) {
	if strings.TrimSpace(raw) == "" {
		return document.EmptySerialized, document.Empty(), true
	}
	doc, err := document.Decode(raw)
	if err != nil {
		return "", document.Document{}, false
	}
	return document.Serialize(doc), doc, true
}

func newVersion(articleID uint, number int, p *prepared, tags []models.Tag) *models.ArticleVersion {
	v := &models.ArticleVersion{
		ArticleID:     articleID,
		VersionNumber: number,
		Title:         p.snapshot.Title,
		Content:       p.body,
		Thumbnail:     p.snapshot.Thumbnail,
		Status:        p.snapshot.Status,
		Tags:          tags,
	}
	if p.snapshot.CategoryID != nil {
		id := *p.snapshot.CategoryID
		v.CategoryID = &id
	}
	if v.Status == models.StatusPublished {
		now := time.Now()
		v.PublishedAt = &now
	}
	return v
}

func (s *articleService) Create(ctx context.Context, authorID uint, snap draft.Snapshot) (uint, error) {
	p, err := s.prepare(ctx, snap)
	if err != nil {
		return 0, err
	}

	var article *models.Article
	var version *models.ArticleVersion
	err = s.articleRepo.Transaction(ctx, func(tx *gorm.DB) error {
		articles := s.articleRepo.WithTx(tx)

		tags, err := s.tagRepo.WithTx(tx).FirstOrCreate(ctx, p.tags)
		if err != nil {
			return err
		}

		article = &models.Article{AuthorID: authorID, Title: p.snapshot.Title}
		if err := articles.Create(ctx, article); err != nil {
			return err
		}

		version = newVersion(article.ID, 1, p, tags)
		if err := articles.CreateVersion(ctx, version); err != nil {
			return err
		}

		article.LatestVersionID = &version.ID
		if version.Status == models.StatusPublished {
			article.PublishedVersionID = &version.ID
		}
		return articles.Update(ctx, article)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Uint("article_id", article.ID).
		Uint("version_id", version.ID).
		Str("status", string(version.Status)).
		Msg("Article created")

	s.afterWrite(ctx, article, version, p.doc, events.ActionPublished)
	return article.ID, nil
}

func (s *articleService) Update(ctx context.Context, articleID uint, snap draft.Snapshot) error {
	p, err := s.prepare(ctx, snap)
	if err != nil {
		return err
	}

	var article *models.Article
	var version *models.ArticleVersion
	wasPublished := false
	err = s.articleRepo.Transaction(ctx, func(tx *gorm.DB) error {
		articles := s.articleRepo.WithTx(tx)

		var err error
		article, err = articles.GetByID(ctx, articleID)
		if err != nil {
			return err
		}
		wasPublished = article.PublishedVersionID != nil

		number, err := articles.NextVersionNumber(ctx, articleID)
		if err != nil {
			return err
		}

		tags, err := s.tagRepo.WithTx(tx).FirstOrCreate(ctx, p.tags)
		if err != nil {
			return err
		}

		version = newVersion(articleID, number, p, tags)
		if err := articles.CreateVersion(ctx, version); err != nil {
			return err
		}

		// Publishing replaces the live version; saving a draft leaves it.
		if version.Status == models.StatusPublished {
			if prev := article.PublishedVersionID; prev != nil && *prev != version.ID {
				if err := articles.UpdateVersionStatus(ctx, *prev, models.StatusArchivedVersion); err != nil {
					return err
				}
			}
			article.PublishedVersionID = &version.ID
		}
		article.LatestVersionID = &version.ID
		article.Title = p.snapshot.Title
		return articles.Update(ctx, article)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Uint("article_id", articleID).
		Uint("version_id", version.ID).
		Int("version_number", version.VersionNumber).
		Str("status", string(version.Status)).
		Msg("Article updated")

	action := events.ActionPublished
	if wasPublished {
		action = events.ActionUpdated
	}
	s.afterWrite(ctx, article, version, p.doc, action)
	return nil
}

// afterWrite refreshes tag counts and announces publications. Failures
// are logged; the write has already committed.
func (s *articleService) afterWrite(ctx context.Context, article *models.Article, version *models.ArticleVersion, doc document.Document, action string) {
	s.updateTagUsageCounts(ctx)

	if version.Status != models.StatusPublished {
		return
	}
	err := s.publisher.Publish(ctx, events.ArticleEvent{
		Action:    action,
		ArticleID: article.ID,
		VersionID: version.ID,
		Title:     version.Title,
		Summary:   document.ExtractPreview(doc),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Uint("article_id", article.ID).Msg("Failed to publish article event")
	}
}

func (s *articleService) Fetch(ctx context.Context, articleID uint) (*models.Article, error) {
	return s.articleRepo.GetByID(ctx, articleID)
}

func (s *articleService) GetArticle(ctx context.Context, id uint, actor models.Actor, isPublic bool) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if isPublic {
		if article.PublishedVersion == nil || article.PublishedVersion.Status != models.StatusPublished {
			return nil, &models.ErrorNotFound{Resource: "article", ID: id}
		}
		return article, nil
	}

	if !actor.CanManage(article.AuthorID) {
		return nil, &models.ErrorForbidden{Message: "not allowed to view this article"}
	}
	return article, nil
}

func (s *articleService) GetArticles(ctx context.Context, params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error) {
	return s.articleRepo.GetList(ctx, params, isPublic)
}

func (s *articleService) DeleteArticle(ctx context.Context, id uint, actor models.Actor) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(article.AuthorID) {
		return &models.ErrorForbidden{Message: "not allowed to delete this article"}
	}

	err = s.articleRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.versionRepo.WithTx(tx).DeleteVersionsByArticleID(ctx, id); err != nil {
			return err
		}
		return s.articleRepo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info().Uint("article_id", id).Uint("deleted_by", actor.UserID).Msg("Article deleted")
	s.updateTagUsageCounts(ctx)
	return nil
}

func (s *articleService) GetArticleVersions(ctx context.Context, articleID uint, actor models.Actor) ([]models.ArticleVersion, error) {
	if _, err := s.GetArticle(ctx, articleID, actor, false); err != nil {
		return nil, err
	}
	return s.articleRepo.GetVersions(ctx, articleID)
}

func (s *articleService) GetArticleVersion(ctx context.Context, articleID, versionID uint, actor models.Actor) (*models.ArticleVersion, error) {
	if _, err := s.GetArticle(ctx, articleID, actor, false); err != nil {
		return nil, err
	}
	return s.articleRepo.GetVersion(ctx, articleID, versionID)
}

func (s *articleService) RecordView(ctx context.Context, id uint) error {
	return s.articleRepo.IncrementViewCount(ctx, id)
}

func (s *articleService) updateTagUsageCounts(ctx context.Context) {
	counts, err := s.articleRepo.CountArticlesByTag(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to count tag usage")
		return
	}
	if err := s.tagRepo.SetUsageCounts(ctx, counts); err != nil {
		s.log.Warn().Err(err).Msg("Failed to update tag usage counts")
	}
}
