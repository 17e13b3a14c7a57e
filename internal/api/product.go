package api

import (
	"context"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"storefront/internal/entity"
	"storefront/internal/service"
	"strconv"
)

type ProductService interface {
	GetProducts(ctx context.Context, collectionID, page, pageSize int) (*service.ProductPage, error)
	GetProduct(ctx context.Context, id int) (*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id int) error
}

type ReviewService interface {
	GetReviews(ctx context.Context, productID int) ([]*entity.Review, error)
	CreateReview(ctx context.Context, review *entity.Review) (*entity.Review, error)
	GetTags(ctx context.Context, productID int) ([]*entity.TaggedItem, error)
}

type ProductHandler struct {
	productService ProductService
	reviewService  ReviewService
}

// NewProductHandler creates a new instance of ProductHandler
func NewProductHandler(productService ProductService, reviewService ReviewService) *ProductHandler {
	return &ProductHandler{productService: productService, reviewService: reviewService}
}

type productRequest struct {
	Title        string          `json:"title" validate:"required,max=255"`
	Slug         string          `json:"slug" validate:"required,max=255"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Inventory    int             `json:"inventory" validate:"gte=0"`
	CollectionID int             `json:"collection" validate:"required,gt=0"`
}

func (r productRequest) toEntity() *entity.Product {
	return &entity.Product{
		Title:        r.Title,
		Slug:         r.Slug,
		Description:  r.Description,
		UnitPrice:    r.UnitPrice,
		Inventory:    r.Inventory,
		CollectionID: r.CollectionID,
	}
}

// unit_price is stored as DECIMAL(6,2).
func (r productRequest) checkPrice() bool {
	return r.UnitPrice.GreaterThanOrEqual(decimal.NewFromInt(1)) &&
		r.UnitPrice.LessThanOrEqual(decimal.RequireFromString("9999.99"))
}

// GetProducts lists products --> /products?collection_id=&page=&page_size=
func (h *ProductHandler) GetProducts(c echo.Context) error {
	collectionID, _ := strconv.Atoi(c.QueryParam("collection_id"))
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	products, err := h.productService.GetProducts(c.Request().Context(), collectionID, page, pageSize)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, products)
}

// GetProduct gets a product --> /products/:id
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	product, err := h.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, product)
}

// CreateProduct creates a product --> POST /products
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}
	if !req.checkPrice() {
		return c.JSON(400, map[string]string{"error": "unit_price must be between 1 and 9999.99"})
	}

	product, err := h.productService.CreateProduct(c.Request().Context(), req.toEntity())
	if err != nil {
		return errorJSON(c, err, service.ErrCollectionNotFound)
	}
	return c.JSON(201, product)
}

// UpdateProduct replaces a product --> PUT /products/:id
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}
	if !req.checkPrice() {
		return c.JSON(400, map[string]string{"error": "unit_price must be between 1 and 9999.99"})
	}

	product := req.toEntity()
	product.ID = id
	updated, err := h.productService.UpdateProduct(c.Request().Context(), product)
	if err != nil {
		return errorJSON(c, err, service.ErrCollectionNotFound)
	}
	return c.JSON(200, updated)
}

// DeleteProduct deletes a product that is not on any order --> DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	if err := h.productService.DeleteProduct(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(204)
}

// GetReviews lists a product's reviews --> /products/:id/reviews
func (h *ProductHandler) GetReviews(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	reviews, err := h.reviewService.GetReviews(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, reviews)
}

// CreateReview adds a review --> POST /products/:id/reviews
func (h *ProductHandler) CreateReview(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	req := struct {
		Name        string `json:"name" validate:"required,max=255"`
		Description string `json:"description" validate:"required"`
	}{}
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	review, err := h.reviewService.CreateReview(c.Request().Context(), &entity.Review{
		ProductID:   id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, review)
}

// GetTags lists the tags of a product --> /products/:id/tags
func (h *ProductHandler) GetTags(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	tags, err := h.reviewService.GetTags(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, tags)
}
