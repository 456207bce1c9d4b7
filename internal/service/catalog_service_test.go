package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository/memory"
	apperrors "github.com/chiefcousin/toybox/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestListProducts_Pages(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	svc := NewCatalogService(repos, zap.NewNop())
	for i := 0; i < 15; i++ {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: fmt.Sprintf("Toy %02d", i), Price: decimal.NewFromInt(int64(i + 1))})
		require.NoError(t, err)
	}

	first, err := svc.ListProducts(ctx, domain.ProductFilter{Sort: domain.ProductSortPriceAsc}, 1)
	require.NoError(t, err)
	assert.Len(t, first.Products, ProductPageSize)
	assert.Equal(t, 15, first.Total)
	assert.True(t, first.Products[0].Price.Equal(decimal.NewFromInt(1)))

	second, err := svc.ListProducts(ctx, domain.ProductFilter{Sort: domain.ProductSortPriceAsc}, 2)
	require.NoError(t, err)
	assert.Len(t, second.Products, 3)

	_, err = svc.ListProducts(ctx, domain.ProductFilter{Sort: "random"}, 1)
	validationMessage(t, err)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	svc := NewCatalogService(repos, zap.NewNop())
	brand := "ToyCo"
	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Kite", Price: decimal.NewFromInt(9), Brand: &brand})
	require.NoError(t, err)

	got, err := svc.Search(ctx, "toyco", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(ctx, "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateProduct_LinkedKeepsZohoFields(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	svc := NewCatalogService(repos, zap.NewNop())

	itemID := "abc123def456"
	linked := MapItemToProduct(zohoItem(itemID, "Wooden Train Set", "24.50"), "", fixedNow)
	_, err := repos.Product.UpsertFromZoho(ctx, linked)
	require.NoError(t, err)
	p, err := repos.Product.GetByZohoItemID(ctx, itemID)
	require.NoError(t, err)

	brand := "ToyCo"
	got, err := svc.UpdateProduct(ctx, p.ID, ProductInput{
		Name:       "Renamed locally",
		Price:      decimal.NewFromInt(1),
		Brand:      &brand,
		IsFeatured: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Wooden Train Set", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("24.5")))
	assert.Equal(t, &brand, got.Brand)
	assert.True(t, got.IsFeatured)
}

func TestDeleteProductIsSoft(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	svc := NewCatalogService(repos, zap.NewNop())
	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Kite", Slug: "kite", Price: decimal.NewFromInt(9)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))

	_, err = svc.GetBySlug(ctx, "kite")
	assert.True(t, apperrors.IsNotFound(err))
	got, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	svc := NewCatalogService(repos, zap.NewNop())
	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Kite", Price: decimal.NewFromInt(9)})
	require.NoError(t, err)
	require.NoError(t, svc.TrackView(ctx, p.ID))
	require.NoError(t, svc.TrackView(ctx, p.ID))
	assert.Error(t, svc.TrackView(ctx, uuid.Nil))

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 1, stats.ActiveProducts)
	assert.Equal(t, 0, stats.LinkedProducts)
	assert.Equal(t, 2, stats.ViewsLast30Days)
	assert.Equal(t, 0, stats.OrdersByStatus[domain.OrderStatusClicked])
}
