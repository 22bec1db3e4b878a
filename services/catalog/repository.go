package main

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository define a interface para operações de banco de dados de produtos
type Repository interface {
	ListProducts(ctx context.Context, onlyActive bool) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) (bool, error)
	SetProductActive(ctx context.Context, productID string, active bool) (bool, error)
	RestockProduct(ctx context.Context, productID string, amount int) (bool, error)
}

// ProductRepository implementa Repository usando PostgreSQL
type ProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository cria uma nova instância de ProductRepository
func NewProductRepository(db *pgxpool.Pool) Repository {
	return &ProductRepository{
		db: db,
	}
}

// ListProducts lista o catálogo, opcionalmente só os produtos ativos
func (r *ProductRepository) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	query := `
		SELECT id, name, price, stock, active, created_at, updated_at
		FROM products
		ORDER BY created_at DESC`
	if onlyActive {
		query = `
		SELECT id, name, price, stock, active, created_at, updated_at
		FROM products
		WHERE active
		ORDER BY created_at DESC`
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct busca um produto pelo ID; retorna nil quando não existe
func (r *ProductRepository) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, price, stock, active, created_at, updated_at
		FROM products WHERE id = $1
	`, productID).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct cria um novo produto no catálogo
func (r *ProductRepository) CreateProduct(ctx context.Context, product *Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, price, stock, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, product.ID, product.Name, product.Price, product.Stock, product.Active, product.CreatedAt, product.UpdatedAt)
	return err
}

// UpdateProduct sobrescreve nome, preço e estoque; retorna false se o produto
// não existe
func (r *ProductRepository) UpdateProduct(ctx context.Context, product *Product) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $1, price = $2, stock = $3, updated_at = NOW()
		WHERE id = $4
	`, product.Name, product.Price, product.Stock, product.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetProductActive liga ou desliga o produto no catálogo
func (r *ProductRepository) SetProductActive(ctx context.Context, productID string, active bool) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET active = $1, updated_at = NOW() WHERE id = $2
	`, active, productID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RestockProduct soma amount ao estoque atual
func (r *ProductRepository) RestockProduct(ctx context.Context, productID string, amount int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2
	`, amount, productID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
