package repositories

import (
	"context"
	"errors"

	"editorial-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	WithTx(tx *gorm.DB) TagRepository
	Create(ctx context.Context, tag *models.Tag) error
	FirstOrCreate(ctx context.Context, names []string) ([]models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetAll(ctx context.Context) ([]models.Tag, error)
	SetUsageCounts(ctx context.Context, counts map[uint]int) error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

// FirstOrCreate returns the tags named by names, creating missing ones.
// The result follows the order of names.
func (r *tagRepository) FirstOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	db := r.db.WithContext(ctx)

	rows := make([]models.Tag, 0, len(names))
	for _, name := range names {
		rows = append(rows, models.Tag{Name: name})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var found []models.Tag
	if err := db.Where("name IN ?", names).Find(&found).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]models.Tag, len(found))
	for _, t := range found {
		byName[t.Name] = t
	}

	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if t, ok := byName[name]; ok {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.ErrorNotFound{Resource: "tag"}
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).First(&tag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.ErrorNotFound{Resource: "tag", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("usage_count desc, name asc").Find(&tags).Error
	return tags, err
}

// SetUsageCounts writes counts; tags missing from counts are set to zero.
func (r *tagRepository) SetUsageCounts(ctx context.Context, counts map[uint]int) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Tag{}).Where("1 = 1").Update("usage_count", 0).Error; err != nil {
		return err
	}
	for id, count := range counts {
		if err := db.Model(&models.Tag{}).Where("id = ?", id).Update("usage_count", count).Error; err != nil {
			return err
		}
	}
	return nil
}
