package main

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewCartRepository(t *testing.T) {
	// Arrange
	var db *pgxpool.Pool

	// Act
	repo := NewCartRepository(db)

	// Assert: a mesma instância serve as três interfaces de repositório
	assert.NotNil(t, repo)
	var _ CartRepository = repo
	var _ ProductRepository = repo
	var _ OrderRepository = repo
}

func TestPostgresTxImplementsTx(t *testing.T) {
	var _ Tx = &PostgresTx{}
	assert.Implements(t, (*Tx)(nil), &PostgresTx{})
}
