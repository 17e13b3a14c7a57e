package api

import (
	"context"
	"github.com/labstack/echo/v4"
	"storefront/internal/entity"
)

type CollectionService interface {
	GetCollections(ctx context.Context) ([]*entity.Collection, error)
	GetCollection(ctx context.Context, id int) (*entity.Collection, error)
	CreateCollection(ctx context.Context, collection *entity.Collection) (*entity.Collection, error)
	UpdateCollection(ctx context.Context, collection *entity.Collection) (*entity.Collection, error)
	DeleteCollection(ctx context.Context, id int) error
}

type CollectionHandler struct {
	collectionService CollectionService
}

// NewCollectionHandler creates a new instance of CollectionHandler
func NewCollectionHandler(collectionService CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

type collectionRequest struct {
	Title             string `json:"title" validate:"required,max=255"`
	FeaturedProductID *int   `json:"featured_product"`
}

func (h *CollectionHandler) GetCollections(c echo.Context) error {
	collections, err := h.collectionService.GetCollections(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, collections)
}

func (h *CollectionHandler) GetCollection(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid collection ID"})
	}

	collection, err := h.collectionService.GetCollection(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, collection)
}

func (h *CollectionHandler) CreateCollection(c echo.Context) error {
	var req collectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	collection, err := h.collectionService.CreateCollection(c.Request().Context(), &entity.Collection{
		Title:             req.Title,
		FeaturedProductID: req.FeaturedProductID,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, collection)
}

func (h *CollectionHandler) UpdateCollection(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid collection ID"})
	}

	var req collectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	collection, err := h.collectionService.UpdateCollection(c.Request().Context(), &entity.Collection{
		ID:                id,
		Title:             req.Title,
		FeaturedProductID: req.FeaturedProductID,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, collection)
}

// DeleteCollection answers 405 while the collection still holds products.
func (h *CollectionHandler) DeleteCollection(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid collection ID"})
	}

	if err := h.collectionService.DeleteCollection(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(204)
}
