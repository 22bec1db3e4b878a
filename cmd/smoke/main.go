package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Smoke test de ponta a ponta: cria um produto, enche um carrinho anônimo,
// faz o merge no login e fecha o pedido. Falha em qualquer passo derruba o
// processo com exit code 1.
func main() {
	catalogURL := getEnv("CATALOG_URL", "http://localhost:8081")
	cartURL := getEnv("CART_URL", "http://localhost:8080")

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	sessionID := uuid.New().String()
	userID := uuid.New().String()

	// 1. Produto novo no catálogo
	var product struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Stock int     `json:"stock"`
		Price float64 `json:"price"`
	}
	resp, err := client.R().
		SetBody(map[string]any{"name": fmt.Sprintf("Smoke Widget %s", sessionID[:8]), "price": 19.90, "stock": 10}).
		SetResult(&product).
		Post(catalogURL + "/api/products")
	must("create product", err, resp, 201)
	log.Printf("✅ Product %s created", product.ID)

	// 2. Item no carrinho anônimo
	resp, err = client.R().
		SetHeader("X-Session-ID", sessionID).
		SetBody(map[string]any{"product_id": product.ID, "quantity": 3}).
		Post(cartURL + "/api/cart/items")
	must("add item", err, resp, 200)
	log.Printf("✅ Added 3 units to the guest cart")

	// 3. Merge no login
	resp, err = client.R().
		SetHeader("X-User-ID", userID).
		SetBody(map[string]any{"session_id": sessionID}).
		Post(cartURL + "/api/cart/merge")
	must("merge carts", err, resp, 200)
	log.Printf("✅ Guest cart merged into user cart")

	// 4. Validação de estoque
	var report struct {
		IsValid bool     `json:"is_valid"`
		Issues  []string `json:"issues"`
	}
	resp, err = client.R().
		SetHeader("X-User-ID", userID).
		SetResult(&report).
		Get(cartURL + "/api/cart/validate")
	must("validate cart", err, resp, 200)
	if !report.IsValid {
		log.Fatalf("❌ Cart validation failed: %v", report.Issues)
	}
	log.Printf("✅ Cart is valid")

	// 5. Checkout
	var checkout struct {
		OrderID string  `json:"order_id"`
		Total   float64 `json:"total"`
	}
	resp, err = client.R().
		SetHeader("X-User-ID", userID).
		SetResult(&checkout).
		Post(cartURL + "/api/checkout")
	must("checkout", err, resp, 200)
	log.Printf("✅ Order %s created, total %.2f", checkout.OrderID, checkout.Total)

	if checkout.Total != 59.70 {
		log.Fatalf("❌ Expected total 59.70, got %.2f", checkout.Total)
	}

	// O carrinho convertido deve voltar vazio no próximo acesso
	var view struct {
		Summary struct {
			IsEmpty bool `json:"is_empty"`
		} `json:"summary"`
	}
	resp, err = client.R().
		SetHeader("X-User-ID", userID).
		SetResult(&view).
		Get(cartURL + "/api/cart")
	must("get cart after checkout", err, resp, 200)
	if !view.Summary.IsEmpty {
		log.Fatalf("❌ Expected an empty cart after checkout")
	}

	log.Printf("🚀 Smoke test passed")
}

func must(step string, err error, resp *resty.Response, wantStatus int) {
	if err != nil {
		log.Fatalf("❌ %s: %v", step, err)
	}
	if resp.StatusCode() != wantStatus {
		log.Fatalf("❌ %s: status %d, body %s", step, resp.StatusCode(), resp.String())
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
