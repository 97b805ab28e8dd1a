package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commercekit/shop-platform/internal/transport/http/middleware"
	"github.com/commercekit/shop-platform/internal/usecase"
)

// OrderHandler exposes CRUD endpoints for orders. Access control runs in the
// gate middleware before any of these handlers execute; the handlers only
// deal with payloads and persistence outcomes.
type OrderHandler struct {
	orders *usecase.OrderService
}

func NewOrderHandler(orders *usecase.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// RegisterRoutes binds order endpoints.
func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/user/:username", h.ListByUsername)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

var orderErrors = ErrorMap{
	{Err: usecase.ErrOrderNotFound, Status: http.StatusNotFound, Message: "order not found"},
	{Err: usecase.ErrNoProducts, Status: http.StatusBadRequest, Message: "order must contain at least one product"},
	{Err: usecase.ErrUnknownProduct, Status: http.StatusBadRequest, Message: "order references an unknown product"},
}

// Create places a new order owned by the authenticated caller.
func (h *OrderHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid or missing credentials"))
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid order payload"))
		return
	}

	order, err := h.orders.Create(c.Request.Context(), principal, req.ProductIDs, middleware.BearerFromRequest(c))
	if err != nil {
		orderErrors.Respond(c, err, http.StatusInternalServerError, "failed to create order")
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// List returns every order visible to the caller: admins see all orders,
// everyone else only their own.
func (h *OrderHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid or missing credentials"))
		return
	}

	orders, err := h.orders.List(c.Request.Context(), principal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list orders"))
		return
	}

	c.JSON(http.StatusOK, newOrderListResponse(orders))
}

// ListByUsername returns the order history of a specific user.
func (h *OrderHandler) ListByUsername(c *gin.Context) {
	orders, err := h.orders.ListByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list orders"))
		return
	}

	c.JSON(http.StatusOK, newOrderListResponse(orders))
}

// Get returns a single order by ID.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		orderErrors.Respond(c, err, http.StatusInternalServerError, "failed to load order")
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

// Update replaces the line items of an existing order. Ownership never
// changes on update.
func (h *OrderHandler) Update(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid order payload"))
		return
	}

	order, err := h.orders.Update(c.Request.Context(), c.Param("id"), req.ProductIDs, middleware.BearerFromRequest(c))
	if err != nil {
		orderErrors.Respond(c, err, http.StatusInternalServerError, "failed to update order")
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

// Delete removes an order.
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		orderErrors.Respond(c, err, http.StatusInternalServerError, "failed to delete order")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "order deleted"})
}
