package main

import (
	"testing"
	"time"
)

func TestOwner(t *testing.T) {
	user := UserOwner("user-123")
	if !user.IsUser() || user.IsGuest() {
		t.Error("Expected a user owner")
	}
	if id, ok := user.UserID(); !ok || id != "user-123" {
		t.Errorf("Expected UserID user-123, got %s (%v)", id, ok)
	}
	if _, ok := user.SessionID(); ok {
		t.Error("A user owner must not expose a session id")
	}

	guest := GuestOwner("session-abc")
	if !guest.IsGuest() || guest.IsUser() {
		t.Error("Expected a guest owner")
	}
	if id, ok := guest.SessionID(); !ok || id != "session-abc" {
		t.Errorf("Expected SessionID session-abc, got %s (%v)", id, ok)
	}

	var zero Owner
	if zero.IsValid() {
		t.Error("The zero Owner must be invalid")
	}
	if UserOwner("").IsValid() {
		t.Error("An empty user id must be invalid")
	}
}

func TestNewCart(t *testing.T) {
	// Arrange & Act
	userCart := NewCart(UserOwner("user-456"))
	guestCart := NewCart(GuestOwner("session-789"))

	// Assert
	if userCart.ID == "" {
		t.Error("Expected a generated cart id")
	}
	if userCart.UserID != "user-456" || userCart.SessionID != "" {
		t.Errorf("Expected only the user reference set, got user=%q session=%q", userCart.UserID, userCart.SessionID)
	}
	if guestCart.SessionID != "session-789" || guestCart.UserID != "" {
		t.Errorf("Expected only the session reference set, got user=%q session=%q", guestCart.UserID, guestCart.SessionID)
	}
	if userCart.CreatedAt.IsZero() || userCart.UpdatedAt.IsZero() {
		t.Error("Expected CreatedAt and UpdatedAt to be set")
	}
	if !userCart.Owner().IsUser() || !guestCart.Owner().IsGuest() {
		t.Error("Owner() must rebuild the persisted discriminant")
	}
}

func TestNewCartItem(t *testing.T) {
	item := NewCartItem("cart-1", "product-1", 3)

	if item.ID == "" {
		t.Error("Expected a generated item id")
	}
	if item.CartID != "cart-1" || item.ProductID != "product-1" || item.Quantity != 3 {
		t.Errorf("Unexpected item: %+v", item)
	}

	now := time.Now()
	if item.CreatedAt.After(now) || item.CreatedAt.Before(now.Add(-time.Second)) {
		t.Error("CreatedAt is not within expected time range")
	}
}

func TestNewCartView_Summary(t *testing.T) {
	// Arrange: (qty 2, price 100.00) e (qty 3, price 50.00)
	items := []CartItemView{
		{ItemID: "i1", ProductID: "p1", UnitPrice: 100.00, Quantity: 2},
		{ItemID: "i2", ProductID: "p2", UnitPrice: 50.00, Quantity: 3},
	}

	// Act
	view := NewCartView("cart-1", items)

	// Assert
	if view.Summary.TotalItems != 5 {
		t.Errorf("Expected TotalItems 5, got %d", view.Summary.TotalItems)
	}
	if view.Summary.TotalAmount != 350.00 {
		t.Errorf("Expected TotalAmount 350.00, got %.2f", view.Summary.TotalAmount)
	}
	if view.Summary.ItemCount != 2 {
		t.Errorf("Expected ItemCount 2, got %d", view.Summary.ItemCount)
	}
	if view.Summary.IsEmpty {
		t.Error("Expected IsEmpty false")
	}
	if view.Items[0].LineTotal != 200.00 || view.Items[1].LineTotal != 150.00 {
		t.Errorf("Unexpected line totals: %.2f / %.2f", view.Items[0].LineTotal, view.Items[1].LineTotal)
	}
}

func TestNewCartView_Rounding(t *testing.T) {
	// 3 x 33.33 deve dar 99.99, arredondado em 2 casas
	view := NewCartView("cart-1", []CartItemView{
		{ItemID: "i1", ProductID: "p1", UnitPrice: 33.33, Quantity: 3},
	})

	if view.Summary.TotalAmount != 99.99 {
		t.Errorf("Expected TotalAmount 99.99, got %.2f", view.Summary.TotalAmount)
	}
}

func TestNewCartView_Empty(t *testing.T) {
	view := NewCartView("cart-1", nil)

	if !view.Summary.IsEmpty {
		t.Error("Expected IsEmpty true")
	}
	if view.Summary.TotalItems != 0 || view.Summary.TotalAmount != 0 || view.Summary.ItemCount != 0 {
		t.Errorf("Expected zeroed summary, got %+v", view.Summary)
	}
	if view.Items == nil {
		t.Error("Items must serialize as an empty list, not null")
	}
}

func TestNewOrder(t *testing.T) {
	order := NewOrder("user-1", 99.98999999)

	if order.ID == "" {
		t.Error("Expected a generated order id")
	}
	if order.UserID != "user-1" {
		t.Errorf("Expected UserID user-1, got %s", order.UserID)
	}
	if order.Total != 99.99 {
		t.Errorf("Expected rounded Total 99.99, got %v", order.Total)
	}
	if order.Status != OrderStatusCompleted {
		t.Errorf("Expected Status %s, got %s", OrderStatusCompleted, order.Status)
	}
	if order.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}
