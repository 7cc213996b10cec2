package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/models"
	"github.com/mpetrov/storefront/internal/repo"
	"github.com/mpetrov/storefront/internal/transport"
)

type ReviewService struct {
	Repo *repo.ReviewRepo
}

func (s *ReviewService) List(ctx context.Context, activeOnly bool) ([]models.Review, error) {
	return s.Repo.List(ctx, activeOnly)
}

func (s *ReviewService) Create(ctx context.Context, req transport.ReviewRequest) (*models.Review, error) {
	if err := validateReview(req); err != nil {
		return nil, err
	}

	review := &models.Review{
		Author:       req.Author,
		Content:      req.Content,
		Rating:       req.Rating,
		IsActive:     true,
		DisplayOrder: req.DisplayOrder,
	}
	if req.IsActive != nil {
		review.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		review.IsFeatured = *req.IsFeatured
	}

	if err := s.Repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, id uint, req transport.ReviewRequest) (*models.Review, error) {
	if err := validateReview(req); err != nil {
		return nil, err
	}

	review, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	review.Author = req.Author
	review.Content = req.Content
	review.Rating = req.Rating
	review.DisplayOrder = req.DisplayOrder
	if req.IsActive != nil {
		review.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		review.IsFeatured = *req.IsFeatured
	}

	if err := s.Repo.Save(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id uint) error {
	return s.Repo.Delete(ctx, id)
}

func validateReview(req transport.ReviewRequest) error {
	if strings.TrimSpace(req.Author) == "" {
		return fmt.Errorf("%w: author required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content required", domain.ErrValidation)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	return nil
}
