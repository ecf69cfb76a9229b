package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"editorial-cms/cache"
	"editorial-cms/document"
	"editorial-cms/models"
)

type fakeReader struct {
	articles map[uint]*models.Article
	views    map[uint]int
}

func (f *fakeReader) GetArticle(_ context.Context, id uint, actor models.Actor, isPublic bool) (*models.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, &models.ErrorNotFound{Resource: "article", ID: id}
	}
	if isPublic && a.PublishedVersion == nil {
		return nil, &models.ErrorNotFound{Resource: "article", ID: id}
	}
	if !isPublic && !actor.CanManage(a.AuthorID) {
		return nil, &models.ErrorForbidden{Message: "no"}
	}
	cp := *a
	return &cp, nil
}

func (f *fakeReader) GetArticles(_ context.Context, _ models.ArticleListParams, _ bool) ([]models.Article, int64, error) {
	var out []models.Article
	for _, id := range []uint{1, 2} {
		if a, ok := f.articles[id]; ok {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReader) RecordView(_ context.Context, id uint) error {
	f.views[id]++
	return nil
}

const storedBody = `{"ops":[{"insert":"Stored "},{"insert":"body","attributes":{"italic":true}}]}`

func newFakeReader() *fakeReader {
	published := &models.ArticleVersion{ID: 10, Content: storedBody, Status: models.StatusPublished}
	latest := &models.ArticleVersion{ID: 11, Content: "{corrupt", Status: models.StatusDraft}
	return &fakeReader{
		articles: map[uint]*models.Article{
			1: {ID: 1, AuthorID: 5, PublishedVersion: published, LatestVersion: latest},
			2: {ID: 2, AuthorID: 5, LatestVersion: latest},
		},
		views: map[uint]int{},
	}
}

func TestReadService_PublicArticle(t *testing.T) {
	reader := newFakeReader()
	mem := cache.NewMemory(time.Minute, time.Minute)
	svc := NewReadService(reader, mem, time.Minute, zerolog.Nop())

	view, err := svc.PublicArticle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Stored body", view.Summary)
	assert.Equal(t, "<p>Stored <em>body</em></p>", view.HTML)
	assert.Equal(t, 1, reader.views[1])
	assert.Equal(t, 1, view.Article.ViewCount)

	var cached renderedBody
	require.NoError(t, mem.Get(context.Background(), "article_version:10:rendered", &cached))
	assert.Equal(t, view.HTML, cached.HTML)
}

func TestReadService_ServesFromCache(t *testing.T) {
	reader := newFakeReader()
	mem := cache.NewMemory(time.Minute, time.Minute)
	require.NoError(t, mem.Set(context.Background(), "article_version:10:rendered", renderedBody{Summary: "cached", HTML: "<p>cached</p>"}, time.Minute))
	svc := NewReadService(reader, mem, time.Minute, zerolog.Nop())

	view, err := svc.PublicArticle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "cached", view.Summary)
}

func TestReadService_UnpublishedIsNotFound(t *testing.T) {
	svc := NewReadService(newFakeReader(), cache.NewMemory(time.Minute, time.Minute), time.Minute, zerolog.Nop())

	_, err := svc.PublicArticle(context.Background(), 2)
	var notFound *models.ErrorNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestReadService_ArticleViewUsesLatestAndFallsBack(t *testing.T) {
	svc := NewReadService(newFakeReader(), cache.NewMemory(time.Minute, time.Minute), time.Minute, zerolog.Nop())

	view, err := svc.ArticleView(context.Background(), 1, models.Actor{UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, uint(11), view.Version.ID)
	assert.Equal(t, document.FallbackPreview, view.Summary)
	assert.Equal(t, "<p></p>", view.HTML)

	_, err = svc.ArticleView(context.Background(), 1, models.Actor{UserID: 6, Role: models.RoleWriter})
	var forbidden *models.ErrorForbidden
	assert.ErrorAs(t, err, &forbidden)
}

func TestReadService_PublicArticles(t *testing.T) {
	svc := NewReadService(newFakeReader(), cache.NewMemory(time.Minute, time.Minute), time.Minute, zerolog.Nop())

	views, total, err := svc.PublicArticles(context.Background(), models.ArticleListParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, views, 2)
	assert.Equal(t, "Stored body", views[0].Summary)
	assert.Empty(t, views[0].HTML)
	assert.Equal(t, document.FallbackPreview, views[1].Summary)
}

func TestReadService_RenderBody(t *testing.T) {
	svc := NewReadService(newFakeReader(), cache.NewMemory(time.Minute, time.Minute), time.Minute, zerolog.Nop())

	out := svc.RenderBody(storedBody)
	assert.False(t, out.Fallback)
	assert.Equal(t, "<p>Stored <em>body</em></p>", out.HTML)

	out = svc.RenderBody("[]")
	assert.True(t, out.Fallback)
	assert.Equal(t, document.FallbackPreview, out.Summary)
}
