package services

import (
	"context"
	"errors"
	"strings"

	"editorial-cms/models"
	"editorial-cms/repositories"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	_, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err == nil {
		return nil, &models.ErrorConflict{Message: "category already exists"}
	}
	var notFound *models.ErrorNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}

	category := &models.Category{Name: strings.TrimSpace(req.Name), Slug: slug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

func (s *categoryService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}
