package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx interface para transações
type Tx interface {
	Commit() error
	Rollback() error
}

// CartRepository define a interface para operações de banco de dados de carrinhos.
// Métodos que aceitam tx executam dentro da transação quando ela é fornecida;
// com tx == nil executam direto no pool.
type CartRepository interface {
	BeginTx(ctx context.Context) (Tx, error)

	FindCartByOwner(ctx context.Context, tx Tx, owner Owner) (*Cart, error)
	// InsertCartIfAbsent insere com ON CONFLICT DO NOTHING; retorna false se o
	// índice único de dono já tinha um carrinho (corrida find-or-create)
	InsertCartIfAbsent(ctx context.Context, tx Tx, cart *Cart) (bool, error)
	GetCart(ctx context.Context, tx Tx, cartID string) (*Cart, error)
	DeleteCart(ctx context.Context, tx Tx, cartID string) error

	ListItems(ctx context.Context, tx Tx, cartID string) ([]CartItem, error)
	ListItemViews(ctx context.Context, cartID string) ([]CartItemView, error)
	GetItem(ctx context.Context, tx Tx, itemID string) (*CartItem, error)
	FindItemByProduct(ctx context.Context, tx Tx, cartID, productID string) (*CartItem, error)
	UpsertItem(ctx context.Context, tx Tx, item *CartItem) error
	SetItemQuantity(ctx context.Context, tx Tx, itemID string, quantity int) error
	DeleteItem(ctx context.Context, tx Tx, itemID string) error
	DeleteItems(ctx context.Context, tx Tx, cartID string) error
}

// ProductRepository define a interface de leitura/decremento do ledger de produtos
type ProductRepository interface {
	GetProduct(ctx context.Context, tx Tx, productID string) (*Product, error)
	// GetProductForUpdate obtém o produto com lock pessimista (FOR UPDATE)
	GetProductForUpdate(ctx context.Context, tx Tx, productID string) (*Product, error)
	// DecrementStock decrementa condicionado a stock >= quantity; retorna false
	// quando o estoque não cobre a quantidade (nenhuma linha afetada)
	DecrementStock(ctx context.Context, tx Tx, productID string, quantity int) (bool, error)
}

// OrderRepository persiste pedidos gerados pelo checkout
type OrderRepository interface {
	CreateOrder(ctx context.Context, tx Tx, order *Order, items []OrderItem) error
}

// PostgresTx implementa a interface Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(context.Background())
}

// querier é satisfeito por *pgxpool.Pool e pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresCartRepository implementa CartRepository, ProductRepository e
// OrderRepository usando PostgreSQL
type PostgresCartRepository struct {
	db *pgxpool.Pool
}

// NewCartRepository cria uma nova instância de PostgresCartRepository
func NewCartRepository(db *pgxpool.Pool) *PostgresCartRepository {
	return &PostgresCartRepository{
		db: db,
	}
}

// BeginTx inicia uma nova transação
func (r *PostgresCartRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PostgresTx{tx: tx}, nil
}

func (r *PostgresCartRepository) q(tx Tx) querier {
	if tx == nil {
		return r.db
	}
	return tx.(*PostgresTx).tx
}

// FindCartByOwner busca o carrinho do dono; retorna nil quando não existe
func (r *PostgresCartRepository) FindCartByOwner(ctx context.Context, tx Tx, owner Owner) (*Cart, error) {
	var (
		query string
		ref   string
	)
	if userID, ok := owner.UserID(); ok {
		query = `
		SELECT id, COALESCE(user_id, ''), COALESCE(session_id, ''), created_at, updated_at
		FROM carts WHERE user_id = $1`
		ref = userID
	} else if sessionID, ok := owner.SessionID(); ok {
		query = `
		SELECT id, COALESCE(user_id, ''), COALESCE(session_id, ''), created_at, updated_at
		FROM carts WHERE session_id = $1`
		ref = sessionID
	} else {
		return nil, fmt.Errorf("%w: owner reference is required", ErrInvalidRequest)
	}

	var cart Cart
	err := r.q(tx).QueryRow(ctx, query, ref).Scan(
		&cart.ID, &cart.UserID, &cart.SessionID, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// InsertCartIfAbsent insere o carrinho respeitando o índice único por dono
func (r *PostgresCartRepository) InsertCartIfAbsent(ctx context.Context, tx Tx, cart *Cart) (bool, error) {
	tag, err := r.q(tx).Exec(ctx, `
		INSERT INTO carts (id, user_id, session_id, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)
		ON CONFLICT DO NOTHING
	`, cart.ID, cart.UserID, cart.SessionID, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetCart busca um carrinho pelo ID; retorna nil quando não existe
func (r *PostgresCartRepository) GetCart(ctx context.Context, tx Tx, cartID string) (*Cart, error) {
	var cart Cart
	err := r.q(tx).QueryRow(ctx, `
		SELECT id, COALESCE(user_id, ''), COALESCE(session_id, ''), created_at, updated_at
		FROM carts WHERE id = $1
	`, cartID).Scan(&cart.ID, &cart.UserID, &cart.SessionID, &cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteCart remove o carrinho (as linhas caem via ON DELETE CASCADE)
func (r *PostgresCartRepository) DeleteCart(ctx context.Context, tx Tx, cartID string) error {
	_, err := r.q(tx).Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	return err
}

// ListItems lista as linhas cruas do carrinho, mais recentes primeiro
func (r *PostgresCartRepository) ListItems(ctx context.Context, tx Tx, cartID string) ([]CartItem, error) {
	rows, err := r.q(tx).Query(ctx, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at DESC
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListItemViews lista as linhas com os dados atuais do produto (join),
// mais recentes primeiro
func (r *PostgresCartRepository) ListItemViews(ctx context.Context, cartID string) ([]CartItemView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ci.id, ci.product_id, p.name, p.price, ci.quantity, p.stock, p.active
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at DESC
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []CartItemView
	for rows.Next() {
		var v CartItemView
		if err := rows.Scan(&v.ItemID, &v.ProductID, &v.ProductName, &v.UnitPrice, &v.Quantity, &v.Stock, &v.Active); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// GetItem busca uma linha pelo ID; retorna nil quando não existe
func (r *PostgresCartRepository) GetItem(ctx context.Context, tx Tx, itemID string) (*CartItem, error) {
	var item CartItem
	err := r.q(tx).QueryRow(ctx, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items WHERE id = $1
	`, itemID).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByProduct busca a linha de um produto no carrinho; nil quando não existe
func (r *PostgresCartRepository) FindItemByProduct(ctx context.Context, tx Tx, cartID, productID string) (*CartItem, error) {
	var item CartItem
	err := r.q(tx).QueryRow(ctx, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertItem insere a linha ou, se o produto já está no carrinho, sobrescreve a
// quantidade (o alvo já vem calculado pelo use case)
func (r *PostgresCartRepository) UpsertItem(ctx context.Context, tx Tx, item *CartItem) error {
	_, err := r.q(tx).Exec(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
	`, item.ID, item.CartID, item.ProductID, item.Quantity, item.CreatedAt, item.UpdatedAt)
	return err
}

// SetItemQuantity sobrescreve a quantidade de uma linha
func (r *PostgresCartRepository) SetItemQuantity(ctx context.Context, tx Tx, itemID string, quantity int) error {
	_, err := r.q(tx).Exec(ctx, `
		UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2
	`, quantity, itemID)
	return err
}

// DeleteItem remove uma linha do carrinho
func (r *PostgresCartRepository) DeleteItem(ctx context.Context, tx Tx, itemID string) error {
	_, err := r.q(tx).Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}

// DeleteItems remove todas as linhas do carrinho
func (r *PostgresCartRepository) DeleteItems(ctx context.Context, tx Tx, cartID string) error {
	_, err := r.q(tx).Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

// GetProduct busca um produto pelo ID; retorna nil quando não existe
func (r *PostgresCartRepository) GetProduct(ctx context.Context, tx Tx, productID string) (*Product, error) {
	var product Product
	err := r.q(tx).QueryRow(ctx, `
		SELECT id, name, price, stock, active, created_at, updated_at
		FROM products WHERE id = $1
	`, productID).Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.Active, &product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductForUpdate obtém o produto com lock pessimista (FOR UPDATE)
func (r *PostgresCartRepository) GetProductForUpdate(ctx context.Context, tx Tx, productID string) (*Product, error) {
	var product Product
	err := r.q(tx).QueryRow(ctx, `
		SELECT id, name, price, stock, active, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, productID).Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.Active, &product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product with lock: %w", err)
	}
	return &product, nil
}

// DecrementStock decrementa o estoque somente se ele cobre a quantidade
func (r *PostgresCartRepository) DecrementStock(ctx context.Context, tx Tx, productID string, quantity int) (bool, error) {
	tag, err := r.q(tx).Exec(ctx, `
		UPDATE products
		SET stock = stock - $2,
			updated_at = NOW()
		WHERE id = $1
			AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to decrease stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreateOrder cria o pedido com suas linhas dentro da transação do checkout
func (r *PostgresCartRepository) CreateOrder(ctx context.Context, tx Tx, order *Order, items []OrderItem) error {
	run := r.q(tx)
	_, err := run.Exec(ctx, `
		INSERT INTO orders (id, user_id, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, order.ID, order.UserID, order.Total, order.Status, order.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range items {
		_, err := run.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
	}
	return nil
}
