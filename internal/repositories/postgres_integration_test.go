//go:build integration

package repositories_test

import (
	"context"
	"testing"
	"time"

	"jammal/internal/config"
	"jammal/internal/database"
	"jammal/internal/models"
	"jammal/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("jammal"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(ctx, config.DatabaseConfig{Driver: "postgres", DSN: connStr}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestPostgres_SearchAndCustomerCascade(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	_, products := seedCatalog(t, db)

	productRepo := repositories.NewGORMProductRepository(db)
	min, max := decimal.NewFromInt(500), decimal.NewFromInt(1000)
	found, total, err := productRepo.Search(ctx, repositories.ProductQuery{
		CategorySlug: "attar",
		MinPrice:     &min,
		MaxPrice:     &max,
		SortBy:       "price",
		SortOrder:    "asc",
		Page:         repositories.Page{Page: 1, Limit: 12},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, found, 3)
	assert.True(t, decimal.NewFromInt(500).Equal(found[0].Price))

	users := repositories.NewGORMUserRepository(db)
	user := &models.User{ExternalID: "ext-aisha", Name: "Aisha", Email: "aisha@example.com", Role: models.RoleUser}
	require.NoError(t, users.Upsert(ctx, user))

	orders := repositories.NewGORMOrderRepository(db)
	order := &models.Order{
		UserID:  &user.ID,
		Total:   decimal.RequireFromString("1000.00"),
		Status:  models.OrderStatusPending,
		Address: models.ShippingAddress{City: "Hyderabad"}.Encode(),
		Items:   []models.OrderItem{{ProductID: products[1].ID, Quantity: 2, Price: decimal.NewFromInt(500)}},
	}
	require.NoError(t, orders.Create(ctx, order))

	summaries, count, err := users.ListCustomers(ctx, repositories.CustomerFilter{Search: "aisha", Page: repositories.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	assert.Equal(t, 1, summaries[0].OrderCount)
	assert.True(t, decimal.NewFromInt(1000).Equal(summaries[0].TotalSpent))

	stats, err := productRepo.SalesStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats[products[1].ID].TotalSold)

	require.NoError(t, users.Delete(ctx, user.ID))
	_, err = orders.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
