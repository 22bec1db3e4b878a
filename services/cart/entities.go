package main

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Erros de domínio do carrinho; handlers mapeiam cada um para um status HTTP
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidState   = errors.New("invalid state")
	ErrStockConflict  = errors.New("stock conflict")
)

type ownerKind int

const (
	ownerNone ownerKind = iota
	ownerUser
	ownerGuest
)

// Owner representa a identidade dona de um carrinho: usuário autenticado OU
// sessão anônima, nunca os dois. O zero value é inválido.
type Owner struct {
	kind ownerKind
	ref  string
}

// UserOwner cria um Owner autenticado
func UserOwner(userID string) Owner {
	return Owner{kind: ownerUser, ref: userID}
}

// GuestOwner cria um Owner anônimo (token de sessão)
func GuestOwner(sessionID string) Owner {
	return Owner{kind: ownerGuest, ref: sessionID}
}

func (o Owner) IsUser() bool  { return o.kind == ownerUser && o.ref != "" }
func (o Owner) IsGuest() bool { return o.kind == ownerGuest && o.ref != "" }

// IsValid retorna true se exatamente uma referência foi fornecida
func (o Owner) IsValid() bool { return o.IsUser() || o.IsGuest() }

// UserID retorna o id do usuário quando o Owner é autenticado
func (o Owner) UserID() (string, bool) {
	if !o.IsUser() {
		return "", false
	}
	return o.ref, true
}

// SessionID retorna o token de sessão quando o Owner é anônimo
func (o Owner) SessionID() (string, bool) {
	if !o.IsGuest() {
		return "", false
	}
	return o.ref, true
}

// Cart representa um carrinho persistido. Exatamente uma das colunas de dono
// (user_id, session_id) é não-nula; o banco reforça isso com uma constraint.
type Cart struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id,omitempty" db:"user_id"`
	SessionID string    `json:"session_id,omitempty" db:"session_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewCart cria uma nova instância de Cart para o Owner informado
func NewCart(owner Owner) *Cart {
	cart := &Cart{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if userID, ok := owner.UserID(); ok {
		cart.UserID = userID
	}
	if sessionID, ok := owner.SessionID(); ok {
		cart.SessionID = sessionID
	}
	return cart
}

// Owner reconstrói o Owner a partir das colunas persistidas
func (c *Cart) Owner() Owner {
	if c.UserID != "" {
		return UserOwner(c.UserID)
	}
	return GuestOwner(c.SessionID)
}

// CartItem representa uma linha do carrinho; único por (cart_id, product_id)
type CartItem struct {
	ID        string    `json:"id" db:"id"`
	CartID    string    `json:"cart_id" db:"cart_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewCartItem cria uma nova linha de carrinho
func NewCartItem(cartID, productID string, quantity int) *CartItem {
	return &CartItem{
		ID:        uuid.New().String(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Product é o registro do ledger de produtos (leitura + decremento de estoque)
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Order representa um pedido imutável gerado pelo checkout
type Order struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Total     float64   `json:"total" db:"total"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OrderItem congela produto, quantidade e preço unitário no momento da compra
type OrderItem struct {
	ID        string  `json:"id" db:"id"`
	OrderID   string  `json:"order_id" db:"order_id"`
	ProductID string  `json:"product_id" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitPrice float64 `json:"unit_price" db:"unit_price"`
}

const OrderStatusCompleted = "completed"

// NewOrder cria uma nova instância de Order
func NewOrder(userID string, total float64) *Order {
	return &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Total:     roundMoney(total),
		Status:    OrderStatusCompleted,
		CreatedAt: time.Now(),
	}
}

// CartItemView é uma linha do carrinho com os dados atuais do produto
type CartItemView struct {
	ItemID      string  `json:"item_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Stock       int     `json:"stock"`
	Active      bool    `json:"active"`
	LineTotal   float64 `json:"line_total"`
}

// CartSummary agrega os totais do carrinho
type CartSummary struct {
	TotalItems  int     `json:"total_items"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
	IsEmpty     bool    `json:"is_empty"`
}

// CartView é a resposta padrão de toda operação de carrinho
type CartView struct {
	CartID  string         `json:"cart_id"`
	Items   []CartItemView `json:"items"`
	Summary CartSummary    `json:"summary"`
}

// NewCartView monta a visão do carrinho e calcula o resumo
func NewCartView(cartID string, items []CartItemView) CartView {
	summary := CartSummary{ItemCount: len(items), IsEmpty: len(items) == 0}
	for i := range items {
		items[i].LineTotal = roundMoney(items[i].UnitPrice * float64(items[i].Quantity))
		summary.TotalItems += items[i].Quantity
		summary.TotalAmount += items[i].UnitPrice * float64(items[i].Quantity)
	}
	summary.TotalAmount = roundMoney(summary.TotalAmount)
	if items == nil {
		items = []CartItemView{}
	}
	return CartView{CartID: cartID, Items: items, Summary: summary}
}

// StockReport é o resultado da validação de estoque do carrinho inteiro
type StockReport struct {
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues"`
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
