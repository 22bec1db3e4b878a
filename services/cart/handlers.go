package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CartUseCaseInterface define a interface para o use case
type CartUseCaseInterface interface {
	GetCart(ctx context.Context, owner Owner) (CartView, error)
	AddItem(ctx context.Context, owner Owner, productID string, quantity int) (CartView, error)
	UpdateItem(ctx context.Context, owner Owner, itemID string, quantity int) (CartView, error)
	RemoveItem(ctx context.Context, owner Owner, itemID string) (CartView, error)
	ClearCart(ctx context.Context, owner Owner) (CartView, error)
	ValidateStock(ctx context.Context, owner Owner) (StockReport, error)
	MergeCarts(ctx context.Context, sessionOwner, userOwner Owner) (CartView, error)
	Checkout(ctx context.Context, owner Owner) (*Order, error)
}

// AddItemRequest representa a requisição para adicionar um item
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateItemRequest representa a requisição para atualizar a quantidade;
// zero remove a linha
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}

// MergeRequest representa a requisição de merge no login
type MergeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// CartHandler contém os handlers HTTP
type CartHandler struct {
	useCase CartUseCaseInterface
	tracer  trace.Tracer
}

// NewCartHandler cria uma nova instância de CartHandler
func NewCartHandler(useCase CartUseCaseInterface, tracer trace.Tracer) *CartHandler {
	return &CartHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// ownerFromRequest extrai a referência de dono fornecida pelo provedor de
// identidade: usuário autenticado tem precedência sobre sessão anônima
func ownerFromRequest(c *gin.Context) Owner {
	if userID := c.GetHeader("X-User-ID"); userID != "" {
		return UserOwner(userID)
	}
	if sessionID := c.GetHeader("X-Session-ID"); sessionID != "" {
		return GuestOwner(sessionID)
	}
	return Owner{}
}

// statusFromError mapeia os erros de domínio para status HTTP
func statusFromError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStockConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GetCart retorna a visão atual do carrinho
func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_cart")
	defer span.End()

	view, err := h.useCase.GetCart(ctx, ownerFromRequest(c))
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.String("cart_id", view.CartID))
	c.JSON(http.StatusOK, view)
}

// AddItem adiciona um produto ao carrinho
func (h *CartHandler) AddItem(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "add_item")
	defer span.End()

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("product_id", req.ProductID),
		attribute.Int("quantity", req.Quantity),
	)

	view, err := h.useCase.AddItem(ctx, ownerFromRequest(c), req.ProductID, req.Quantity)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateItem sobrescreve a quantidade de uma linha
func (h *CartHandler) UpdateItem(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "update_item")
	defer span.End()

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itemID := c.Param("id")
	span.SetAttributes(
		attribute.String("item_id", itemID),
		attribute.Int("quantity", req.Quantity),
	)

	view, err := h.useCase.UpdateItem(ctx, ownerFromRequest(c), itemID, req.Quantity)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// RemoveItem remove uma linha do carrinho
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "remove_item")
	defer span.End()

	itemID := c.Param("id")
	span.SetAttributes(attribute.String("item_id", itemID))

	view, err := h.useCase.RemoveItem(ctx, ownerFromRequest(c), itemID)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearCart remove todas as linhas do carrinho
func (h *CartHandler) ClearCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "clear_cart")
	defer span.End()

	view, err := h.useCase.ClearCart(ctx, ownerFromRequest(c))
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// ValidateCart reconfere o carrinho inteiro contra o estoque atual
func (h *CartHandler) ValidateCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "validate_cart")
	defer span.End()

	report, err := h.useCase.ValidateStock(ctx, ownerFromRequest(c))
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("is_valid", report.IsValid))
	c.JSON(http.StatusOK, report)
}

// MergeCarts dobra o carrinho da sessão anônima no carrinho do usuário logado
func (h *CartHandler) MergeCarts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "merge_carts")
	defer span.End()

	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetHeader("X-User-ID")
	span.SetAttributes(attribute.String("user_id", userID))

	view, err := h.useCase.MergeCarts(ctx, GuestOwner(req.SessionID), UserOwner(userID))
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// Checkout converte o carrinho do usuário em um pedido
func (h *CartHandler) Checkout(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "checkout")
	defer span.End()

	order, err := h.useCase.Checkout(ctx, ownerFromRequest(c))
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("order_id", order.ID),
		attribute.Float64("total", order.Total),
	)

	c.JSON(http.StatusOK, gin.H{
		"order_id": order.ID,
		"total":    order.Total,
		"message":  "Order created successfully",
	})
}

// HealthCheck verifica a saúde do serviço
func (h *CartHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cart-service",
	})
}
