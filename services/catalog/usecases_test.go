package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository para testes que não precisam de banco real
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	args := m.Called(ctx, onlyActive)
	if products, ok := args.Get(0).([]Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetProduct(ctx context.Context, productID string) (*Product, error) {
	args := m.Called(ctx, productID)
	if product, ok := args.Get(0).(*Product); ok {
		return product, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CreateProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) UpdateProduct(ctx context.Context, product *Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SetProductActive(ctx context.Context, productID string, active bool) (bool, error) {
	args := m.Called(ctx, productID, active)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) RestockProduct(ctx context.Context, productID string, amount int) (bool, error) {
	args := m.Called(ctx, productID, amount)
	return args.Bool(0), args.Error(1)
}

func TestCreateProduct(t *testing.T) {
	// Arrange
	repo := new(MockRepository)
	uc := NewCatalogUseCase(repo)
	ctx := context.Background()

	repo.On("CreateProduct", ctx, mock.MatchedBy(func(p *Product) bool {
		return p.Name == "Keyboard" && p.Price == 100.00 && p.Stock == 5 && p.Active
	})).Return(nil)

	// Act
	product, err := uc.CreateProduct(ctx, "Keyboard", 100.00, 5)

	// Assert
	assert.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.True(t, product.Active)
	repo.AssertExpectations(t)
}

func TestCreateProduct_Validation(t *testing.T) {
	repo := new(MockRepository)
	uc := NewCatalogUseCase(repo)
	ctx := context.Background()

	_, err := uc.CreateProduct(ctx, "", 10, 1)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = uc.CreateProduct(ctx, "Keyboard", -1, 1)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = uc.CreateProduct(ctx, "Keyboard", 10, -1)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	repo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestGetProduct_NotFound(t *testing.T) {
	// Arrange
	repo := new(MockRepository)
	uc := NewCatalogUseCase(repo)
	ctx := context.Background()

	repo.On("GetProduct", ctx, "missing").Return(nil, nil)

	// Act
	_, err := uc.GetProduct(ctx, "missing")

	// Assert
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetProductActive_NotFound(t *testing.T) {
	// Arrange
	repo := new(MockRepository)
	uc := NewCatalogUseCase(repo)
	ctx := context.Background()

	repo.On("SetProductActive", ctx, "missing", false).Return(false, nil)

	// Act
	err := uc.SetProductActive(ctx, "missing", false)

	// Assert
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestockProduct(t *testing.T) {
	// Arrange
	repo := new(MockRepository)
	uc := NewCatalogUseCase(repo)
	ctx := context.Background()
	restocked := &Product{ID: "p1", Name: "Mouse", Price: 25, Stock: 12, Active: true}

	repo.On("RestockProduct", ctx, "p1", 10).Return(true, nil)
	repo.On("GetProduct", ctx, "p1").Return(restocked, nil)

	// Act
	product, err := uc.RestockProduct(ctx, "p1", 10)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 12, product.Stock)

	// Amount não positivo é rejeitado antes de tocar o repositório
	_, err = uc.RestockProduct(ctx, "p1", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
