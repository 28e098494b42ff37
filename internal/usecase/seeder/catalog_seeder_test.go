package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductWriter is a mock implementation of ProductWriter
type MockProductWriter struct {
	mock.Mock
}

func (m *MockProductWriter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductWriter) SaveProduct(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func TestCatalogSeeder_Seed_ProductsMissing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductWriter)
	seeder := NewCatalogSeeder(mockRepo, zerolog.Nop())

	mockRepo.On("GetProduct", ctx, mock.Anything).Return(nil, domain.ErrNotFound)
	mockRepo.On("SaveProduct", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Validate() == nil
	})).Return(nil)

	created, err := seeder.Seed(ctx)

	require.NoError(t, err)
	assert.Equal(t, len(DemoProducts()), created)
	mockRepo.AssertNumberOfCalls(t, "SaveProduct", len(DemoProducts()))
}

func TestCatalogSeeder_Seed_ProductsExist(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductWriter)
	seeder := NewCatalogSeeder(mockRepo, zerolog.Nop())

	mockRepo.On("GetProduct", ctx, mock.Anything).Return(&domain.Product{}, nil)

	created, err := seeder.Seed(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, created)
	mockRepo.AssertNotCalled(t, "SaveProduct", mock.Anything, mock.Anything)
}

func TestCatalogSeeder_Seed_LookupFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductWriter)
	seeder := NewCatalogSeeder(mockRepo, zerolog.Nop())

	mockRepo.On("GetProduct", ctx, PRODUCT_BLUECHIP_EQUITY).Return(nil, errors.New("connection refused"))

	_, err := seeder.Seed(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	mockRepo.AssertNotCalled(t, "SaveProduct", mock.Anything, mock.Anything)
}

func TestCatalogSeeder_Seed_SaveFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductWriter)
	seeder := NewCatalogSeeder(mockRepo, zerolog.Nop())

	mockRepo.On("GetProduct", ctx, mock.Anything).Return(nil, domain.ErrNotFound)
	mockRepo.On("SaveProduct", ctx, mock.Anything).Return(errors.New("disk full"))

	created, err := seeder.Seed(ctx)

	require.Error(t, err)
	assert.Equal(t, 0, created)
}

func TestDemoProducts_AreValidAndUnique(t *testing.T) {
	seen := make(map[int64]bool)
	for _, p := range DemoProducts() {
		p := p
		assert.NoError(t, p.Validate(), p.Name)
		assert.False(t, seen[p.ID], "duplicate product ID %d", p.ID)
		seen[p.ID] = true
	}
}
