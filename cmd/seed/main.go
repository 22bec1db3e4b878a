package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type seedProduct struct {
	name  string
	price float64
	stock int
}

var demoCatalog = []seedProduct{
	{"Mechanical Keyboard", 100.00, 25},
	{"Wireless Mouse", 25.00, 40},
	{"4K Monitor", 800.00, 10},
	{"USB-C Hub", 33.33, 30},
	{"Noise Cancelling Headset", 50.00, 15},
	{"HD Webcam", 60.00, 20},
}

func main() {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DATABASE_USER", "root"),
		getEnv("DATABASE_PASSWORD", "pass"),
		getEnv("DATABASE_HOST", "localhost"),
		getEnv("DATABASE_PORT", "5432"),
		getEnv("DATABASE_NAME", "shop_db"),
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to reach database: %v", err)
	}

	for _, p := range demoCatalog {
		_, err := db.Exec(`
			INSERT INTO products (id, name, price, stock, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, true, NOW(), NOW())
			ON CONFLICT (name) DO UPDATE
			SET price = EXCLUDED.price, stock = EXCLUDED.stock, active = true, updated_at = NOW()
		`, uuid.New().String(), p.name, p.price, p.stock)
		if err != nil {
			log.Fatalf("Failed to seed product %q: %v", p.name, err)
		}
		log.Printf("✅ Seeded %q: price %.2f, stock %d", p.name, p.price, p.stock)
	}

	log.Printf("🚀 Catalog seeded with %d products", len(demoCatalog))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
