package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/commercekit/shop-platform/internal/usecase"
)

// ProductHandler exposes catalog endpoints. Reads are public; mutations are
// restricted to administrators by the gate middleware.
type ProductHandler struct {
	products *usecase.ProductService
}

func NewProductHandler(products *usecase.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterRoutes binds catalog endpoints.
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.List)
	r.GET("/search", h.List)
	r.GET("/:id", h.Get)
	r.POST("", h.Create)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

var productErrors = ErrorMap{
	{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
}

// List returns the catalog, optionally filtered by the query parameter.
func (h *ProductHandler) List(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))

	products, err := h.products.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list products"))
		return
	}

	c.JSON(http.StatusOK, newProductListResponse(products))
}

// Get returns a single product by ID.
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		productErrors.Respond(c, err, http.StatusInternalServerError, "failed to load product")
		return
	}

	c.JSON(http.StatusOK, newProductResponse(product))
}

// Create adds a product to the catalog.
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	product, err := h.products.Create(c.Request.Context(), req.Name, req.Description, req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to create product"))
		return
	}

	c.JSON(http.StatusCreated, newProductResponse(product))
}

// Update replaces the mutable attributes of an existing product.
func (h *ProductHandler) Update(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), req.Name, req.Description, req.Category)
	if err != nil {
		productErrors.Respond(c, err, http.StatusInternalServerError, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, newProductResponse(product))
}

// Delete removes a product from the catalog.
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		productErrors.Respond(c, err, http.StatusInternalServerError, "failed to delete product")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "product deleted"})
}
