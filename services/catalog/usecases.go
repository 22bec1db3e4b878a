package main

import (
	"context"
	"fmt"
	"log"
)

// CatalogUseCase contém a lógica de negócio do catálogo
type CatalogUseCase struct {
	repository Repository
}

// NewCatalogUseCase cria uma nova instância de CatalogUseCase
func NewCatalogUseCase(repository Repository) *CatalogUseCase {
	return &CatalogUseCase{
		repository: repository,
	}
}

// ListProducts lista o catálogo
func (uc *CatalogUseCase) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	products, err := uc.repository.ListProducts(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// GetProduct busca um produto pelo ID
func (uc *CatalogUseCase) GetProduct(ctx context.Context, productID string) (*Product, error) {
	product, err := uc.repository.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %s not found", ErrNotFound, productID)
	}
	return product, nil
}

// CreateProduct cria um produto novo, ativo e com o estoque inicial informado
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, name string, price float64, stock int) (*Product, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidRequest)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidRequest)
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidRequest)
	}

	product := NewProduct(name, price, stock)
	if err := uc.repository.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	log.Printf("✅ Product created: %s (%s)", product.Name, product.ID)
	return product, nil
}

// UpdateProduct sobrescreve nome, preço e estoque de um produto existente
func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, productID, name string, price float64, stock int) (*Product, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidRequest)
	}
	if price < 0 || stock < 0 {
		return nil, fmt.Errorf("%w: price and stock cannot be negative", ErrInvalidRequest)
	}

	updated, err := uc.repository.UpdateProduct(ctx, &Product{ID: productID, Name: name, Price: price, Stock: stock})
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: product %s not found", ErrNotFound, productID)
	}
	return uc.GetProduct(ctx, productID)
}

// SetProductActive liga ou desliga um produto
func (uc *CatalogUseCase) SetProductActive(ctx context.Context, productID string, active bool) error {
	updated, err := uc.repository.SetProductActive(ctx, productID, active)
	if err != nil {
		return fmt.Errorf("failed to change product state: %w", err)
	}
	if !updated {
		return fmt.Errorf("%w: product %s not found", ErrNotFound, productID)
	}

	log.Printf("ℹ️  Product %s active=%v", productID, active)
	return nil
}

// RestockProduct soma unidades ao estoque de um produto
func (uc *CatalogUseCase) RestockProduct(ctx context.Context, productID string, amount int) (*Product, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: restock amount must be positive", ErrInvalidRequest)
	}

	updated, err := uc.repository.RestockProduct(ctx, productID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to restock product: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: product %s not found", ErrNotFound, productID)
	}
	return uc.GetProduct(ctx, productID)
}
