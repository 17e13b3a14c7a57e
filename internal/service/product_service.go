package service

import (
	"context"
	"database/sql"
	"errors"
	"storefront/internal/entity"
	"storefront/internal/repository"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ProductCacher is a read-through cache for single products. Get returns
// (nil, nil) on a miss.
type ProductCacher interface {
	Get(ctx context.Context, id int) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id int) error
}

type ProductPage struct {
	Count   int               `json:"count"`
	Results []*entity.Product `json:"results"`
}

type ProductService struct {
	productRepo *repository.ProductRepository
	cache       ProductCacher
}

// NewProductService creates a new instance of ProductService. cache may be nil.
func NewProductService(productRepo *repository.ProductRepository, cache ProductCacher) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cache:       cache,
	}
}

// GetProducts returns one page of products, optionally within a collection.
func (p *ProductService) GetProducts(ctx context.Context, collectionID, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	count, err := p.productRepo.CountProducts(ctx, collectionID)
	if err != nil {
		logger.Error().Err(err).Msg("Error counting products")
		return nil, err
	}

	products, err := p.productRepo.GetProducts(ctx, collectionID, pageSize, (page-1)*pageSize)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}
	for _, product := range products {
		product.WithTax()
	}

	return &ProductPage{Count: count, Results: products}, nil
}

// GetProduct reads through the cache. Cache failures fall back to the database.
func (p *ProductService) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, id)
		if err != nil {
			logger.Error().Err(err).Msgf("Error getting product %d from cache", id)
		}
		if cached != nil {
			return cached, nil
		}
	}

	product, err := p.productRepo.GetProductByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting product by ID %d", id)
		return nil, err
	}
	product.WithTax()

	if p.cache != nil {
		if err := p.cache.Set(ctx, product); err != nil {
			logger.Error().Err(err).Msgf("Error setting product %d in cache", id)
		}
	}
	return product, nil
}

func (p *ProductService) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	product.LastUpdate = time.Now().UTC().Truncate(time.Second)
	created, err := p.productRepo.CreateProduct(ctx, product)
	if repository.IsForeignKeyViolation(err) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}
	return created.WithTax(), nil
}

// UpdateProduct overwrites the product. Existing order items keep their own prices.
func (p *ProductService) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	product.LastUpdate = time.Now().UTC().Truncate(time.Second)
	updated, err := p.productRepo.UpdateProduct(ctx, product)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if repository.IsForeignKeyViolation(err) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating product %d", product.ID)
		return nil, err
	}

	p.evict(ctx, product.ID)
	return updated.WithTax(), nil
}

// DeleteProduct refuses to delete products that appear on an order.
func (p *ProductService) DeleteProduct(ctx context.Context, id int) error {
	used, err := p.productRepo.HasOrderItems(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ErrProductInUse
	}

	err = p.productRepo.DeleteProduct(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error deleting product %d", id)
		return err
	}

	p.evict(ctx, id)
	return nil
}

func (p *ProductService) evict(ctx context.Context, id int) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Delete(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting product %d from cache", id)
	}
}
