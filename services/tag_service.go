package services

import (
	"context"
	"errors"

	"editorial-cms/models"
	"editorial-cms/repositories"
)

type TagService interface {
	CreateTag(ctx context.Context, req models.CreateTagRequest) (*models.Tag, error)
	GetTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
}

type tagService struct {
	tagRepo repositories.TagRepository
}

func NewTagService(tagRepo repositories.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

func (s *tagService) CreateTag(ctx context.Context, req models.CreateTagRequest) (*models.Tag, error) {
	names := models.NormalizeTags([]string{req.Name})
	if len(names) == 0 {
		return nil, models.NewValidationError("name", "name is a required field")
	}
	name := names[0]

	_, err := s.tagRepo.GetByName(ctx, name)
	if err == nil {
		return nil, &models.ErrorConflict{Message: "tag already exists"}
	}
	var notFound *models.ErrorNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

func (s *tagService) GetTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}

func (s *tagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.tagRepo.GetByID(ctx, id)
}
