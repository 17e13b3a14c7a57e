package service

import (
	"context"
	"database/sql"
	"errors"
	"storefront/internal/entity"
	"storefront/internal/repository"
)

type CollectionService struct {
	collectionRepo *repository.CollectionRepository
}

func NewCollectionService(collectionRepo *repository.CollectionRepository) *CollectionService {
	return &CollectionService{collectionRepo: collectionRepo}
}

func (s *CollectionService) GetCollections(ctx context.Context) ([]*entity.Collection, error) {
	return s.collectionRepo.GetCollections(ctx)
}

func (s *CollectionService) GetCollection(ctx context.Context, id int) (*entity.Collection, error) {
	collection, err := s.collectionRepo.GetCollectionByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCollectionNotFound
	}
	return collection, err
}

func (s *CollectionService) CreateCollection(ctx context.Context, collection *entity.Collection) (*entity.Collection, error) {
	if err := s.collectionRepo.CreateCollection(ctx, collection); err != nil {
		logger.Error().Err(err).Msg("Error creating collection")
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) UpdateCollection(ctx context.Context, collection *entity.Collection) (*entity.Collection, error) {
	err := s.collectionRepo.UpdateCollection(ctx, collection)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetCollection(ctx, collection.ID)
}

// DeleteCollection refuses to delete a collection that still holds products.
func (s *CollectionService) DeleteCollection(ctx context.Context, id int) error {
	collection, err := s.GetCollection(ctx, id)
	if err != nil {
		return err
	}
	if collection.ProductsCount > 0 {
		return ErrCollectionNotEmpty
	}

	err = s.collectionRepo.DeleteCollection(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCollectionNotFound
	}
	return err
}
