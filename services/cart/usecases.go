package main

import (
	"context"
	"fmt"
	"log"
)

// CartUseCase contém a lógica de negócio do carrinho
type CartUseCase struct {
	carts        CartRepository
	products     ProductRepository
	orders       OrderRepository
	publisher    Publisher
	skipOversold bool
}

// NewCartUseCase cria uma nova instância de CartUseCase
func NewCartUseCase(
	carts CartRepository,
	products ProductRepository,
	orders OrderRepository,
	publisher Publisher,
	skipOversold bool,
) *CartUseCase {
	return &CartUseCase{
		carts:        carts,
		products:     products,
		orders:       orders,
		publisher:    publisher,
		skipOversold: skipOversold,
	}
}

// ResolveCart encontra o carrinho do dono, criando um se não existir.
// Idempotente sob retry: chamadas repetidas com o mesmo dono retornam sempre o
// mesmo carrinho. A corrida find-or-create é fechada pelo índice único de dono
// junto com INSERT ... ON CONFLICT DO NOTHING e releitura.
func (uc *CartUseCase) ResolveCart(ctx context.Context, owner Owner) (*Cart, error) {
	if !owner.IsValid() {
		return nil, fmt.Errorf("%w: either a user id or a session id must be provided", ErrInvalidRequest)
	}

	cart, err := uc.carts.FindCartByOwner(ctx, nil, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	cart = NewCart(owner)
	inserted, err := uc.carts.InsertCartIfAbsent(ctx, nil, cart)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if !inserted {
		// Outro request criou o carrinho entre o SELECT e o INSERT
		cart, err = uc.carts.FindCartByOwner(ctx, nil, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to reread cart after conflict: %w", err)
		}
		if cart == nil {
			return nil, fmt.Errorf("cart vanished after insert conflict")
		}
		return cart, nil
	}

	log.Printf("🛒 Cart created: %s", cart.ID)
	return cart, nil
}

// GetCart retorna a visão atual do carrinho do dono
func (uc *CartUseCase) GetCart(ctx context.Context, owner Owner) (CartView, error) {
	cart, err := uc.ResolveCart(ctx, owner)
	if err != nil {
		return CartView{}, err
	}
	return uc.cartView(ctx, cart.ID)
}

// AddItem adiciona quantity unidades de um produto ao carrinho do dono.
// A quantidade alvo é a linha existente (se houver) somada ao delta pedido.
func (uc *CartUseCase) AddItem(ctx context.Context, owner Owner, productID string, quantity int) (CartView, error) {
	if quantity <= 0 {
		return CartView{}, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidState, quantity)
	}

	cart, err := uc.ResolveCart(ctx, owner)
	if err != nil {
		return CartView{}, err
	}

	product, err := uc.products.GetProduct(ctx, nil, productID)
	if err != nil {
		return CartView{}, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return CartView{}, fmt.Errorf("%w: product %s not found", ErrNotFound, productID)
	}
	if !product.Active {
		return CartView{}, fmt.Errorf("%w: product %q is no longer active", ErrInvalidState, product.Name)
	}

	existing, err := uc.carts.FindItemByProduct(ctx, nil, cart.ID, productID)
	if err != nil {
		return CartView{}, fmt.Errorf("failed to load cart item: %w", err)
	}

	target := quantity
	if existing != nil {
		target += existing.Quantity
	}
	if target > product.Stock {
		return CartView{}, fmt.Errorf(
			"%w: cannot add %d of %q: %d requested in total, only %d in stock",
			ErrStockConflict, quantity, product.Name, target, product.Stock,
		)
	}

	item := NewCartItem(cart.ID, productID, target)
	if existing != nil {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	}
	if err := uc.carts.UpsertItem(ctx, nil, item); err != nil {
		return CartView{}, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	log.Printf("➡️ [ADD ITEM] Cart: %s | Product: %s | Quantity: %d -> %d", cart.ID, productID, quantity, target)
	return uc.cartView(ctx, cart.ID)
}

// UpdateItem sobrescreve a quantidade de uma linha; quantidade zero remove a
// linha, quantidade negativa é rejeitada
func (uc *CartUseCase) UpdateItem(ctx context.Context, owner Owner, itemID string, quantity int) (CartView, error) {
	if quantity < 0 {
		return CartView{}, fmt.Errorf("%w: quantity cannot be negative, got %d", ErrInvalidState, quantity)
	}

	cart, item, err := uc.ownedItem(ctx, owner, itemID)
	if err != nil {
		return CartView{}, err
	}

	if quantity == 0 {
		if err := uc.carts.DeleteItem(ctx, nil, item.ID); err != nil {
			return CartView{}, fmt.Errorf("failed to remove cart item: %w", err)
		}
		log.Printf("➡️ [UPDATE ITEM] Cart: %s | Item: %s removed (quantity 0)", cart.ID, item.ID)
		return uc.cartView(ctx, cart.ID)
	}

	product, err := uc.products.GetProduct(ctx, nil, item.ProductID)
	if err != nil {
		return CartView{}, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return CartView{}, fmt.Errorf("%w: product %s not found", ErrNotFound, item.ProductID)
	}
	if quantity > product.Stock {
		return CartView{}, fmt.Errorf(
			"%w: cannot set %q to %d, only %d in stock",
			ErrStockConflict, product.Name, quantity, product.Stock,
		)
	}

	if err := uc.carts.SetItemQuantity(ctx, nil, item.ID, quantity); err != nil {
		return CartView{}, fmt.Errorf("failed to update cart item: %w", err)
	}

	log.Printf("➡️ [UPDATE ITEM] Cart: %s | Item: %s | Quantity: %d", cart.ID, item.ID, quantity)
	return uc.cartView(ctx, cart.ID)
}

// RemoveItem remove uma linha do carrinho, checando a posse
func (uc *CartUseCase) RemoveItem(ctx context.Context, owner Owner, itemID string) (CartView, error) {
	cart, item, err := uc.ownedItem(ctx, owner, itemID)
	if err != nil {
		return CartView{}, err
	}

	if err := uc.carts.DeleteItem(ctx, nil, item.ID); err != nil {
		return CartView{}, fmt.Errorf("failed to remove cart item: %w", err)
	}

	log.Printf("➡️ [REMOVE ITEM] Cart: %s | Item: %s", cart.ID, item.ID)
	return uc.cartView(ctx, cart.ID)
}

// ClearCart remove todas as linhas do carrinho do dono. Se o dono ainda não tem
// carrinho, é um no-op, não um erro.
func (uc *CartUseCase) ClearCart(ctx context.Context, owner Owner) (CartView, error) {
	if !owner.IsValid() {
		return CartView{}, fmt.Errorf("%w: either a user id or a session id must be provided", ErrInvalidRequest)
	}

	cart, err := uc.carts.FindCartByOwner(ctx, nil, owner)
	if err != nil {
		return CartView{}, fmt.Errorf("failed to find cart: %w", err)
	}
	if cart == nil {
		return NewCartView("", nil), nil
	}

	if err := uc.carts.DeleteItems(ctx, nil, cart.ID); err != nil {
		return CartView{}, fmt.Errorf("failed to clear cart: %w", err)
	}

	log.Printf("➡️ [CLEAR CART] Cart: %s", cart.ID)
	return uc.cartView(ctx, cart.ID)
}

// ValidateStock reconfere cada linha do carrinho contra o estado atual do
// produto e acumula todos os problemas em uma única passada
func (uc *CartUseCase) ValidateStock(ctx context.Context, owner Owner) (StockReport, error) {
	cart, err := uc.ResolveCart(ctx, owner)
	if err != nil {
		return StockReport{}, err
	}
	return uc.validateCart(ctx, nil, cart.ID)
}

func (uc *CartUseCase) validateCart(ctx context.Context, tx Tx, cartID string) (StockReport, error) {
	items, err := uc.carts.ListItems(ctx, tx, cartID)
	if err != nil {
		return StockReport{}, fmt.Errorf("failed to list cart items: %w", err)
	}

	report := StockReport{IsValid: true, Issues: []string{}}
	for _, item := range items {
		product, err := uc.products.GetProduct(ctx, tx, item.ProductID)
		if err != nil {
			return StockReport{}, fmt.Errorf("failed to load product %s: %w", item.ProductID, err)
		}
		switch {
		case product == nil:
			report.Issues = append(report.Issues, fmt.Sprintf("product %s is no longer available", item.ProductID))
		case !product.Active:
			report.Issues = append(report.Issues, fmt.Sprintf("product %q is no longer active", product.Name))
		case product.Stock < item.Quantity:
			report.Issues = append(report.Issues, fmt.Sprintf(
				"insufficient stock for %q: available %d, in cart %d",
				product.Name, product.Stock, item.Quantity,
			))
		}
	}
	report.IsValid = len(report.Issues) == 0
	return report, nil
}

// ownedItem carrega a linha e garante que ela pertence ao carrinho do dono
func (uc *CartUseCase) ownedItem(ctx context.Context, owner Owner, itemID string) (*Cart, *CartItem, error) {
	cart, err := uc.ResolveCart(ctx, owner)
	if err != nil {
		return nil, nil, err
	}

	item, err := uc.carts.GetItem(ctx, nil, itemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cart item: %w", err)
	}
	if item == nil {
		return nil, nil, fmt.Errorf("%w: cart item %s not found", ErrNotFound, itemID)
	}
	if item.CartID != cart.ID {
		return nil, nil, fmt.Errorf("%w: cart item %s does not belong to this cart", ErrForbidden, itemID)
	}
	return cart, item, nil
}

func (uc *CartUseCase) cartView(ctx context.Context, cartID string) (CartView, error) {
	views, err := uc.carts.ListItemViews(ctx, cartID)
	if err != nil {
		return CartView{}, fmt.Errorf("failed to load cart view: %w", err)
	}
	return NewCartView(cartID, views), nil
}
