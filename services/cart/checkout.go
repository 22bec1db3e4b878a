package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	ordersCreatedCounter metric.Int64Counter
	cartsMergedCounter   metric.Int64Counter
)

// initCounters registra os contadores de negócio no meter global
func initCounters() error {
	meter := otel.Meter("cart-service")

	var err error
	ordersCreatedCounter, err = meter.Int64Counter("orders_created_total")
	if err != nil {
		return err
	}
	cartsMergedCounter, err = meter.Int64Counter("carts_merged_total")
	if err != nil {
		return err
	}
	return nil
}

// MergeCarts dobra o carrinho anônimo da sessão dentro do carrinho do usuário
// no login. Para produtos presentes nos dois, a quantidade final é
// max(userQty, sessionQty) - união, não soma. Linhas cuja quantidade final não
// cabe no estoque atual são puladas (skipOversold) ou derrubam o merge inteiro.
// Tudo executa em uma única transação, incluindo a remoção do carrinho da sessão.
func (uc *CartUseCase) MergeCarts(ctx context.Context, sessionOwner, userOwner Owner) (CartView, error) {
	if !userOwner.IsUser() {
		return CartView{}, fmt.Errorf("%w: an authenticated user is required to merge carts", ErrInvalidRequest)
	}
	if !sessionOwner.IsGuest() {
		return CartView{}, fmt.Errorf("%w: a session id is required to merge carts", ErrInvalidRequest)
	}

	log.Printf("➡️ [MERGE] Session owner -> user cart merge started")

	tx, err := uc.carts.BeginTx(ctx)
	if err != nil {
		return CartView{}, fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback()

	sessionCart, err := uc.carts.FindCartByOwner(ctx, tx, sessionOwner)
	if err != nil {
		return CartView{}, fmt.Errorf("failed to find session cart: %w", err)
	}

	var sessionItems []CartItem
	if sessionCart != nil {
		sessionItems, err = uc.carts.ListItems(ctx, tx, sessionCart.ID)
		if err != nil {
			return CartView{}, fmt.Errorf("failed to list session cart items: %w", err)
		}
	}

	// Sem carrinho de sessão (ou sem linhas): retorna o carrinho do usuário
	// como está, não é um erro
	if sessionCart == nil || len(sessionItems) == 0 {
		userCart, err := uc.ResolveCart(ctx, userOwner)
		if err != nil {
			return CartView{}, err
		}
		log.Printf("ℹ️  [MERGE] Nothing to merge for cart %s", userCart.ID)
		return uc.cartView(ctx, userCart.ID)
	}

	userCart, err := uc.resolveCartTx(ctx, tx, userOwner)
	if err != nil {
		return CartView{}, err
	}

	merged, skipped := 0, 0
	for _, sessionItem := range sessionItems {
		// Lock pessimista para que o estoque lido valha até o commit
		product, err := uc.products.GetProductForUpdate(ctx, tx, sessionItem.ProductID)
		if err != nil {
			return CartView{}, fmt.Errorf("failed to load product %s: %w", sessionItem.ProductID, err)
		}
		if product == nil {
			log.Printf("ℹ️  [MERGE] Skipping product %s: no longer available", sessionItem.ProductID)
			skipped++
			continue
		}

		userItem, err := uc.carts.FindItemByProduct(ctx, tx, userCart.ID, sessionItem.ProductID)
		if err != nil {
			return CartView{}, fmt.Errorf("failed to load user cart item: %w", err)
		}

		target := sessionItem.Quantity
		if userItem != nil && userItem.Quantity > target {
			target = userItem.Quantity
		}

		if product.Stock < target {
			if !uc.skipOversold {
				return CartView{}, fmt.Errorf(
					"%w: cannot merge %q: wanted %d, only %d in stock",
					ErrStockConflict, product.Name, target, product.Stock,
				)
			}
			log.Printf("ℹ️  [MERGE] Skipping %q: wanted %d, only %d in stock", product.Name, target, product.Stock)
			skipped++
			continue
		}

		if userItem != nil {
			if userItem.Quantity != target {
				if err := uc.carts.SetItemQuantity(ctx, tx, userItem.ID, target); err != nil {
					return CartView{}, fmt.Errorf("failed to merge cart item: %w", err)
				}
			}
		} else {
			item := NewCartItem(userCart.ID, sessionItem.ProductID, target)
			if err := uc.carts.UpsertItem(ctx, tx, item); err != nil {
				return CartView{}, fmt.Errorf("failed to copy cart item: %w", err)
			}
		}
		merged++
	}

	// O carrinho da sessão termina aqui; as linhas caem em cascata
	if err := uc.carts.DeleteCart(ctx, tx, sessionCart.ID); err != nil {
		return CartView{}, fmt.Errorf("failed to delete session cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return CartView{}, fmt.Errorf("failed to commit merge: %w", err)
	}

	if cartsMergedCounter != nil {
		cartsMergedCounter.Add(ctx, 1)
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishCartMerged(ctx, CartMergedEvent{
			UserCartID:    userCart.ID,
			SessionCartID: sessionCart.ID,
			MergedLines:   merged,
			SkippedLines:  skipped,
		}); err != nil {
			log.Printf("❌ Failed to publish cart.merged event: %v", err)
		}
	}

	log.Printf("✅ [MERGE] Cart %s merged into %s | merged: %d | skipped: %d",
		sessionCart.ID, userCart.ID, merged, skipped)
	return uc.cartView(ctx, userCart.ID)
}

// Checkout converte o carrinho validado do usuário em um pedido imutável,
// decrementando o estoque de cada linha, tudo ou nada. Qualquer falha desfaz a
// transação inteira: nenhum pedido, nenhum decremento, carrinho intacto.
func (uc *CartUseCase) Checkout(ctx context.Context, userOwner Owner) (*Order, error) {
	if !userOwner.IsUser() {
		return nil, fmt.Errorf("%w: an authenticated user is required to checkout", ErrInvalidRequest)
	}

	cart, err := uc.ResolveCart(ctx, userOwner)
	if err != nil {
		return nil, err
	}

	// Pré-checagens fora da transação: carrinho não vazio e validação limpa
	precheck, err := uc.carts.ListItems(ctx, nil, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	if len(precheck) == 0 {
		return nil, fmt.Errorf("%w: cannot checkout an empty cart", ErrInvalidState)
	}

	report, err := uc.validateCart(ctx, nil, cart.ID)
	if err != nil {
		return nil, err
	}
	if !report.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, strings.Join(report.Issues, "; "))
	}

	log.Printf("➡️ [CHECKOUT] Cart: %s | Lines: %d", cart.ID, len(precheck))

	tx, err := uc.carts.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer tx.Rollback()

	// Releitura dentro da transação; o estado pode ter mudado desde o pré-check
	items, err := uc.carts.ListItems(ctx, tx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cannot checkout an empty cart", ErrInvalidState)
	}

	userID, _ := userOwner.UserID()
	order := NewOrder(userID, 0)

	var total float64
	orderItems := make([]OrderItem, 0, len(items))
	for _, item := range items {
		product, err := uc.products.GetProductForUpdate(ctx, tx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", item.ProductID, err)
		}
		if product == nil {
			return nil, fmt.Errorf("%w: product %s is no longer available", ErrInvalidState, item.ProductID)
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: product %q is no longer active", ErrInvalidState, product.Name)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf(
				"%w: insufficient stock for %q: available %d, in cart %d",
				ErrInvalidState, product.Name, product.Stock, item.Quantity,
			)
		}

		ok, err := uc.products.DecrementStock(ctx, tx, product.ID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for %s: %w", product.ID, err)
		}
		if !ok {
			return nil, fmt.Errorf(
				"%w: insufficient stock for %q: available %d, in cart %d",
				ErrInvalidState, product.Name, product.Stock, item.Quantity,
			)
		}

		total += product.Price * float64(item.Quantity)
		orderItems = append(orderItems, OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}

	order.Total = roundMoney(total)
	if err := uc.orders.CreateOrder(ctx, tx, order, orderItems); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Carrinho convertido é terminal: some junto com as linhas
	if err := uc.carts.DeleteItems(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to empty cart: %w", err)
	}
	if err := uc.carts.DeleteCart(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to delete cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	if ordersCreatedCounter != nil {
		ordersCreatedCounter.Add(ctx, 1)
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID: order.ID,
			UserID:  order.UserID,
			Total:   order.Total,
			Items:   orderItems,
		}); err != nil {
			log.Printf("❌ Failed to publish order.created event: %v", err)
		}
	}

	log.Printf("✅ [CHECKOUT] Order %s created from cart %s | total: %.2f", order.ID, cart.ID, order.Total)
	return order, nil
}

// resolveCartTx é o find-or-create do dono dentro de uma transação já aberta
func (uc *CartUseCase) resolveCartTx(ctx context.Context, tx Tx, owner Owner) (*Cart, error) {
	cart, err := uc.carts.FindCartByOwner(ctx, tx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	cart = NewCart(owner)
	inserted, err := uc.carts.InsertCartIfAbsent(ctx, tx, cart)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if !inserted {
		cart, err = uc.carts.FindCartByOwner(ctx, tx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to reread cart after conflict: %w", err)
		}
		if cart == nil {
			return nil, fmt.Errorf("cart vanished after insert conflict")
		}
	}
	return cart, nil
}
