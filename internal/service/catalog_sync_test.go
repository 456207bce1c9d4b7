package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/lock"
	"github.com/chiefcousin/toybox/internal/metrics"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/internal/repository/memory"
	"github.com/chiefcousin/toybox/internal/zoho"
	apperrors "github.com/chiefcousin/toybox/pkg/errors"
)

func zohoItem(id, name, rate string) zoho.Item {
	return zoho.Item{
		ItemID:               id,
		Name:                 name,
		Rate:                 decimal.RequireFromString(rate),
		ActualAvailableStock: 5,
		Status:               "active",
	}
}

func newSyncService(t *testing.T, items *fakeItems) (*CatalogSyncService, *repository.Repositories, *metrics.Metrics) {
	t.Helper()
	repos := memory.NewRepositories()
	m := metrics.New()
	svc := NewCatalogSyncService(items, fakeConnection(true), repos, lock.NewLocal(), m, "", zap.NewNop())
	return svc, repos, m
}

func setting(t *testing.T, repos *repository.Repositories, key string) string {
	t.Helper()
	s, err := repos.Settings.Get(context.Background(), key)
	require.NoError(t, err)
	if s == nil {
		return ""
	}
	return s.Value
}

func TestSyncAll_PaginatesAndCreates(t *testing.T) {
	items := &fakeItems{pages: [][]zoho.Item{
		{zohoItem("1000000000001", "Wooden Train Set", "24.50"), zohoItem("1000000000002", "Kite", "9")},
		{zohoItem("1000000000003", "Puzzle", "12")},
	}}
	svc, repos, m := newSyncService(t, items)

	result, err := svc.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []int{1, 2}, items.listed)

	assert.Len(t, repos.Product.(*memory.ProductRepository).All(), 3)
	assert.Equal(t, "idle", setting(t, repos, domain.SettingZohoSyncStatus))
	assert.NotEmpty(t, setting(t, repos, domain.SettingZohoLastSyncAt))
	assert.Equal(t, float64(3), m.SyncItemCount("created"))
}

func TestSyncAll_SecondRunKeepsLocalFields(t *testing.T) {
	ctx := context.Background()
	items := &fakeItems{pages: [][]zoho.Item{
		{zohoItem("abc123def456", "Wooden Train Set", "24.50")},
	}}
	svc, repos, _ := newSyncService(t, items)

	_, err := svc.SyncAll(ctx)
	require.NoError(t, err)

	p, err := repos.Product.GetByZohoItemID(ctx, "abc123def456")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "wooden-train-set-def456", p.Slug)

	// staff curate the product locally
	brand, age := "ToyCo", "3-5 years"
	category := uuid.New()
	p.Slug = "train-set"
	p.Brand = &brand
	p.AgeRange = &age
	p.CategoryID = &category
	p.Tags = []string{"wooden"}
	p.IsFeatured = true
	require.NoError(t, repos.Product.Update(ctx, p))

	items.pages[0][0].Name = "Wooden Train Set Deluxe"
	items.pages[0][0].Rate = decimal.RequireFromString("29.00")

	result, err := svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	got, err := repos.Product.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wooden Train Set Deluxe", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(29)))
	assert.Equal(t, "train-set", got.Slug)
	assert.Equal(t, &brand, got.Brand)
	assert.Equal(t, &age, got.AgeRange)
	assert.Equal(t, &category, got.CategoryID)
	assert.Equal(t, []string{"wooden"}, got.Tags)
	assert.True(t, got.IsFeatured)
	assert.Len(t, repos.Product.(*memory.ProductRepository).All(), 1)
}

func TestSyncAll_FetchFailureRecordsError(t *testing.T) {
	items := &fakeItems{
		pages:    [][]zoho.Item{{zohoItem("1", "A", "1")}, {zohoItem("2", "B", "1")}},
		listErr:  errors.New("boom"),
		failPage: 2,
	}
	svc, repos, _ := newSyncService(t, items)

	result, err := svc.SyncAll(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "page 2")
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, "error", setting(t, repos, domain.SettingZohoSyncStatus))
	assert.Contains(t, setting(t, repos, domain.SettingZohoSyncError), "boom")
	assert.Empty(t, setting(t, repos, domain.SettingZohoLastSyncAt))
}

func TestSyncAll_ItemErrorsAreCollected(t *testing.T) {
	bad := zohoItem("", "No id", "1")
	items := &fakeItems{pages: [][]zoho.Item{{zohoItem("1", "A", "1"), bad}}}
	svc, repos, _ := newSyncService(t, items)

	result, err := svc.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Item : ")
	assert.Equal(t, "idle", setting(t, repos, domain.SettingZohoSyncStatus))
}

func TestSyncAll_RejectsConcurrentRun(t *testing.T) {
	locker := lock.NewLocal()
	repos := memory.NewRepositories()
	svc := NewCatalogSyncService(&fakeItems{}, fakeConnection(true), repos, locker, nil, "", zap.NewNop())

	release, ok, err := locker.TryLock(context.Background(), fullSyncLock, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	_, err = svc.SyncAll(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "sync already running", err.Error())
}

func TestSyncItem_CreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	items := &fakeItems{items: map[string]zoho.Item{
		"42": zohoItem("42", "Ball", "3"),
	}}
	svc, repos, _ := newSyncService(t, items)

	require.NoError(t, svc.SyncItem(ctx, "42"))

	items.items["42"] = zohoItem("42", "Ball", "4")
	require.NoError(t, svc.SyncItem(ctx, "42"))

	p, err := repos.Product.GetByZohoItemID(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(4)))
	assert.Len(t, repos.Product.(*memory.ProductRepository).All(), 1)

	// sync status bookkeeping belongs to full syncs only
	assert.Empty(t, setting(t, repos, domain.SettingZohoLastSyncAt))
}

func TestSyncItem_FetchError(t *testing.T) {
	svc, _, _ := newSyncService(t, &fakeItems{items: map[string]zoho.Item{}})

	err := svc.SyncItem(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestSyncItem_LaterEventWinsOverInFlightFetch(t *testing.T) {
	ctx := context.Background()
	items := &fakeItems{
		items: map[string]zoho.Item{"1000000000009": zohoItem("1000000000009", "Kite", "10")},
		block: make(chan struct{}),
	}
	svc, repos, _ := newSyncService(t, items)

	first := make(chan error, 1)
	go func() { first <- svc.SyncItem(ctx, "1000000000009") }()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&items.gets) == 1 }, time.Second, time.Millisecond)

	// the item changes in Zoho while the first fetch is still running
	items.mu.Lock()
	items.items["1000000000009"] = zohoItem("1000000000009", "Kite", "20")
	items.mu.Unlock()

	second := make(chan error, 1)
	go func() { second <- svc.SyncItem(ctx, "1000000000009") }()

	close(items.block)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	assert.Equal(t, int32(2), atomic.LoadInt32(&items.gets))
	p, err := repos.Product.GetByZohoItemID(ctx, "1000000000009")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "20", p.Price.String())
}

func TestDeactivateItem(t *testing.T) {
	ctx := context.Background()
	items := &fakeItems{items: map[string]zoho.Item{"7": zohoItem("7", "Yo-yo", "2")}}
	svc, repos, _ := newSyncService(t, items)
	require.NoError(t, svc.SyncItem(ctx, "7"))

	require.NoError(t, svc.DeactivateItem(ctx, "7"))
	require.NoError(t, svc.DeactivateItem(ctx, "unknown"))

	p, err := repos.Product.GetByZohoItemID(ctx, "7")
	require.NoError(t, err)
	assert.False(t, p.IsActive)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	items := &fakeItems{pages: [][]zoho.Item{{zohoItem("1", "A", "1")}}}
	svc, _, _ := newSyncService(t, items)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.Equal(t, domain.SyncStatusIdle, st.Status)
	assert.Nil(t, st.LastSyncAt)

	_, err = svc.SyncAll(ctx)
	require.NoError(t, err)

	st, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.NotNil(t, st.LastSyncAt)
}

func TestRunSyncLoop_SkipsWhenNotConnected(t *testing.T) {
	items := &fakeItems{pages: [][]zoho.Item{{zohoItem("1", "A", "1")}}}
	repos := memory.NewRepositories()
	svc := NewCatalogSyncService(items, fakeConnection(false), repos, nil, nil, "", zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	svc.RunSyncLoop(ctx, 10*time.Millisecond)

	assert.Empty(t, items.listed)
}

func TestHandleItemEvent(t *testing.T) {
	ctx := context.Background()
	items := &fakeItems{items: map[string]zoho.Item{"9": zohoItem("9", "Drum", "15")}}
	svc, repos, _ := newSyncService(t, items)

	payload := zoho.WebhookPayload{EventType: "item_created"}
	payload.Data.Item.ItemID = "9"
	ignored, err := HandleItemEvent(ctx, svc, payload, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, ignored)

	payload.EventType = "item_deleted"
	_, err = HandleItemEvent(ctx, svc, payload, zap.NewNop())
	require.NoError(t, err)
	p, err := repos.Product.GetByZohoItemID(ctx, "9")
	require.NoError(t, err)
	assert.False(t, p.IsActive)

	payload.EventType = "salesorder_created"
	ignored, err = HandleItemEvent(ctx, svc, payload, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, ignored)
}
