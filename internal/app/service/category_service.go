package service

import (
	"errors"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"gorm.io/gorm"
)

var ErrCategoryNameExists = errors.New("category name already exists")

type CategoryService interface {
	ListCategories() ([]model.Category, error)
	GetCategory(categoryID uint) (*model.Category, error)
	CreateCategory(name, description string, isPharmacy bool) (*model.Category, error)
	UpdateCategory(categoryID uint, name, description string, isPharmacy bool) (*model.Category, error)
	DeleteCategory(categoryID uint) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *categoryService) GetCategory(categoryID uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) CreateCategory(name, description string, isPharmacy bool) (*model.Category, error) {
	if _, err := s.categoryRepo.FindByName(name); err == nil {
		return nil, ErrCategoryNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &model.Category{
		Name:        name,
		Description: description,
		IsPharmacy:  isPharmacy,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(categoryID uint, name, description string, isPharmacy bool) (*model.Category, error) {
	category, err := s.GetCategory(categoryID)
	if err != nil {
		return nil, err
	}

	if name != category.Name {
		if _, err := s.categoryRepo.FindByName(name); err == nil {
			return nil, ErrCategoryNameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	category.Name = name
	category.Description = description
	category.IsPharmacy = isPharmacy
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(categoryID uint) error {
	if _, err := s.GetCategory(categoryID); err != nil {
		return err
	}
	return s.categoryRepo.Delete(categoryID)
}
