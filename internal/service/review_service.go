package service

import (
	"context"
	"fmt"
	"storefront/internal/entity"
	"storefront/internal/repository"
	"time"
)

type ReviewService struct {
	db          repository.DBTX
	reviewRepo  *repository.ReviewRepository
	productRepo *repository.ProductRepository
	tagRepo     *repository.TagRepository
}

func NewReviewService(db repository.DBTX, reviewRepo *repository.ReviewRepository, productRepo *repository.ProductRepository, tagRepo *repository.TagRepository) *ReviewService {
	return &ReviewService{db: db, reviewRepo: reviewRepo, productRepo: productRepo, tagRepo: tagRepo}
}

func (s *ReviewService) GetReviews(ctx context.Context, productID int) ([]*entity.Review, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetReviews(ctx, productID)
}

func (s *ReviewService) CreateReview(ctx context.Context, review *entity.Review) (*entity.Review, error) {
	if err := s.requireProduct(ctx, review.ProductID); err != nil {
		return nil, err
	}

	review.Date = time.Now().UTC().Truncate(24 * time.Hour)
	if err := s.reviewRepo.CreateReview(ctx, review); err != nil {
		logger.Error().Err(err).Msgf("Error creating review for product %d", review.ProductID)
		return nil, err
	}
	return review, nil
}

// GetTags returns the tags attached to a product.
func (s *ReviewService) GetTags(ctx context.Context, productID int) ([]*entity.TaggedItem, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.tagRepo.GetTagsFor(ctx, entity.ContentTypeProduct, productID)
}

func (s *ReviewService) requireProduct(ctx context.Context, productID int) error {
	exists, err := s.productRepo.Exists(ctx, s.db, productID)
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return ErrProductNotFound
	}
	return nil
}
