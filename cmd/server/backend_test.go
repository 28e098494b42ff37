package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/investfolio-backend/internal/adapter/lock"
	"github.com/simaogato/investfolio-backend/internal/config"
	"github.com/simaogato/investfolio-backend/internal/usecase/seeder"
)

func TestOpenBackend(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"memory", func(c *config.Config) { c.Store.Driver = config.StoreMemory }},
		{"sqlite", func(c *config.Config) {
			c.Store.Driver = config.StoreSQLite
			c.Store.SQLitePath = filepath.Join(t.TempDir(), "investfolio.db")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := config.NewDefaultConfig()
			tt.mutate(cfg)

			store, err := openBackend(ctx, cfg, zerolog.Nop())
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Migrate(ctx))

			created, err := seeder.NewCatalogSeeder(store.Products, zerolog.Nop()).Seed(ctx)
			require.NoError(t, err)
			assert.Equal(t, len(seeder.DemoProducts()), created)

			p, err := store.Products.GetProduct(ctx, seeder.PRODUCT_BLUECHIP_EQUITY)
			require.NoError(t, err)
			assert.Equal(t, "Bluechip Equity Fund", p.Name)
		})
	}
}

func TestOpenBackend_UnknownDriver(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Store.Driver = "mongo"

	_, err := openBackend(context.Background(), cfg, zerolog.Nop())

	assert.Error(t, err)
}

func TestOpenLocker_Memory(t *testing.T) {
	cfg := config.NewDefaultConfig()

	locker, closeLocker, err := openLocker(cfg, zerolog.Nop())

	require.NoError(t, err)
	assert.IsType(t, &lock.KeyedMutex{}, locker)
	assert.NoError(t, closeLocker())
}
