package service

import (
	"context"

	"github.com/segal-ziv/smartbill/internal/cache"
	"github.com/segal-ziv/smartbill/internal/domain/category"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

// CategoryService manages the user's expense categories.
type CategoryService interface {
	Create(ctx context.Context, cat *category.Category) error
	Get(ctx context.Context, id string) (*category.Category, error)
	List(ctx context.Context) ([]*category.Category, error)
	Update(ctx context.Context, cat *category.Category) error
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	ServiceParams
}

func NewCategoryService(params ServiceParams) CategoryService {
	return &categoryService{ServiceParams: params}
}

func (s *categoryService) Create(ctx context.Context, cat *category.Category) error {
	if cat == nil {
		return ierr.NewError("category is required").
			Mark(ierr.ErrValidation)
	}
	if cat.ID == "" {
		cat.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CATEGORY)
	}
	cat.BaseModel = types.GetDefaultBaseModel(ctx)

	if err := cat.Validate(); err != nil {
		return err
	}
	if err := s.CategoryRepo.Create(ctx, cat); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

func (s *categoryService) Get(ctx context.Context, id string) (*category.Category, error) {
	return s.CategoryRepo.Get(ctx, id)
}

func (s *categoryService) List(ctx context.Context) ([]*category.Category, error) {
	return s.CategoryRepo.List(ctx)
}

func (s *categoryService) Update(ctx context.Context, cat *category.Category) error {
	if cat == nil || cat.ID == "" {
		return ierr.NewError("category id is required").
			Mark(ierr.ErrValidation)
	}
	if err := cat.Validate(); err != nil {
		return err
	}
	if err := s.CategoryRepo.Update(ctx, cat); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if err := s.CategoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

func (s *categoryService) invalidateList(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	key := cache.GenerateKey(cache.PrefixCategory, types.GetOwnerID(ctx), "list")
	s.Cache.Delete(ctx, key)
}
