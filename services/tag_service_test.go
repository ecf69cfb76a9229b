package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"editorial-cms/models"
	"editorial-cms/repositories"
)

type memoryTags struct {
	tags []models.Tag
}

func (m *memoryTags) WithTx(*gorm.DB) repositories.TagRepository { return m }

func (m *memoryTags) Create(_ context.Context, tag *models.Tag) error {
	tag.ID = uint(len(m.tags) + 1)
	m.tags = append(m.tags, *tag)
	return nil
}

func (m *memoryTags) FirstOrCreate(context.Context, []string) ([]models.Tag, error) { return nil, nil }

func (m *memoryTags) GetByName(_ context.Context, name string) (*models.Tag, error) {
	for i := range m.tags {
		if m.tags[i].Name == name {
			return &m.tags[i], nil
		}
	}
	return nil, &models.ErrorNotFound{Resource: "tag"}
}

func (m *memoryTags) GetByID(_ context.Context, id uint) (*models.Tag, error) {
	for i := range m.tags {
		if m.tags[i].ID == id {
			return &m.tags[i], nil
		}
	}
	return nil, &models.ErrorNotFound{Resource: "tag", ID: id}
}

func (m *memoryTags) GetAll(context.Context) ([]models.Tag, error) { return m.tags, nil }

func (m *memoryTags) SetUsageCounts(context.Context, map[uint]int) error { return nil }

func TestTagService_CreateTag(t *testing.T) {
	svc := NewTagService(&memoryTags{})
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, models.CreateTagRequest{Name: "  GoLang "})
	require.NoError(t, err)
	assert.Equal(t, "golang", tag.Name)

	_, err = svc.CreateTag(ctx, models.CreateTagRequest{Name: "golang"})
	var conflict *models.ErrorConflict
	assert.ErrorAs(t, err, &conflict)

	_, err = svc.CreateTag(ctx, models.CreateTagRequest{Name: "   "})
	var invalid *models.ErrorValidation
	assert.ErrorAs(t, err, &invalid)

	got, err := svc.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "golang", got.Name)

	_, err = svc.GetTag(ctx, 42)
	var notFound *models.ErrorNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestCategoryService_CreateCategory(t *testing.T) {
	svc := NewCategoryService(&fakeCategories{ids: map[uint]bool{}})

	category, err := svc.CreateCategory(context.Background(), models.CreateCategoryRequest{Name: " News ", Slug: " NEWS "})
	require.NoError(t, err)
	assert.Equal(t, "News", category.Name)
	assert.Equal(t, "news", category.Slug)
}
