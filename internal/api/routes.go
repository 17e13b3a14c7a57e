package api

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"storefront/internal/service"
	"time"
)

type Handlers struct {
	Products    *ProductHandler
	Collections *CollectionHandler
	Carts       *CartHandler
	Customers   *CustomerHandler
	Orders      *OrderHandler
}

// JWTMiddleware verifies HS256 bearer tokens and stores them under "user".
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(401, map[string]string{"error": "Unauthorized"})
		},
	})
}

// RegisterRoutes mounts every endpoint on e. auth guards the routes that need
// an identity.
func RegisterRoutes(e *echo.Echo, h Handlers, auth echo.MiddlewareFunc) {
	// Catalog
	e.GET("/products", h.Products.GetProducts)
	e.GET("/products/:id", h.Products.GetProduct)
	e.POST("/products", h.Products.CreateProduct, auth, StaffOnly)
	e.PUT("/products/:id", h.Products.UpdateProduct, auth, StaffOnly)
	e.DELETE("/products/:id", h.Products.DeleteProduct, auth, StaffOnly)
	e.GET("/products/:id/reviews", h.Products.GetReviews)
	e.POST("/products/:id/reviews", h.Products.CreateReview)
	e.GET("/products/:id/tags", h.Products.GetTags)

	e.GET("/collections", h.Collections.GetCollections)
	e.GET("/collections/:id", h.Collections.GetCollection)
	e.POST("/collections", h.Collections.CreateCollection, auth, StaffOnly)
	e.PUT("/collections/:id", h.Collections.UpdateCollection, auth, StaffOnly)
	e.DELETE("/collections/:id", h.Collections.DeleteCollection, auth, StaffOnly)

	// Carts are anonymous
	e.POST("/carts", h.Carts.CreateCart)
	e.GET("/carts/:id", h.Carts.GetCart)
	e.DELETE("/carts/:id", h.Carts.DeleteCart)
	e.GET("/carts/:id/items", h.Carts.GetItems)
	e.POST("/carts/:id/items", h.Carts.AddItem)
	e.GET("/carts/:id/items/:item_id", h.Carts.GetItem)
	e.PATCH("/carts/:id/items/:item_id", h.Carts.UpdateItem)
	e.DELETE("/carts/:id/items/:item_id", h.Carts.DeleteItem)

	// Auth and customers
	e.POST("/auth/users", h.Customers.Register)
	e.POST("/auth/jwt/create", h.Customers.Login)

	customers := e.Group("/customers", auth)
	customers.GET("", h.Customers.GetCustomers, StaffOnly)
	customers.GET("/me", h.Customers.GetMe)
	customers.PUT("/me", h.Customers.UpdateMe)

	// Orders
	orders := e.Group("/orders", auth)
	orders.POST("", h.Orders.CreateOrder)
	orders.GET("", h.Orders.GetOrders)
	orders.GET("/:id", h.Orders.GetOrder)
	orders.PATCH("/:id", h.Orders.UpdateOrder, StaffOnly)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "storefront",
			"time":    time.Now().Format(time.RFC3339),
		})
	})
}
