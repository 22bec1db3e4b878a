package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CatalogUseCaseInterface define a interface para o use case
type CatalogUseCaseInterface interface {
	ListProducts(ctx context.Context, onlyActive bool) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	CreateProduct(ctx context.Context, name string, price float64, stock int) (*Product, error)
	UpdateProduct(ctx context.Context, productID, name string, price float64, stock int) (*Product, error)
	SetProductActive(ctx context.Context, productID string, active bool) error
	RestockProduct(ctx context.Context, productID string, amount int) (*Product, error)
}

// ProductRequest representa a requisição para criar/atualizar um produto
type ProductRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"gte=0"`
	Stock int     `json:"stock" binding:"gte=0"`
}

// RestockRequest representa a requisição para repor estoque
type RestockRequest struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

// CatalogHandler contém os handlers HTTP
type CatalogHandler struct {
	useCase CatalogUseCaseInterface
	tracer  trace.Tracer
}

// NewCatalogHandler cria uma nova instância de CatalogHandler
func NewCatalogHandler(useCase CatalogUseCaseInterface, tracer trace.Tracer) *CatalogHandler {
	return &CatalogHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ListProducts lista o catálogo; ?active=true filtra só os ativos
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	onlyActive := c.Query("active") == "true"
	products, err := h.useCase.ListProducts(ctx, onlyActive)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Int("count", len(products)))
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct retorna um produto pelo ID
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_product")
	defer span.End()

	productID := c.Param("id")
	span.SetAttributes(attribute.String("product_id", productID))

	product, err := h.useCase.GetProduct(ctx, productID)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct cria um produto novo
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_product")
	defer span.End()

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.useCase.CreateProduct(ctx, req.Name, req.Price, req.Stock)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.String("product_id", product.ID))
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct sobrescreve um produto existente
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "update_product")
	defer span.End()

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.useCase.UpdateProduct(ctx, c.Param("id"), req.Name, req.Price, req.Stock)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeactivateProduct tira o produto do catálogo sem apagar o registro
func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "deactivate_product")
	defer span.End()

	if err := h.useCase.SetProductActive(ctx, c.Param("id"), false); err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// RestockProduct repõe estoque de um produto
func (h *CatalogHandler) RestockProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "restock_product")
	defer span.End()

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.useCase.RestockProduct(ctx, c.Param("id"), req.Amount)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, product)
}

// HealthCheck verifica a saúde do serviço
func (h *CatalogHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "catalog-service",
	})
}
