package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/lock"
	"github.com/chiefcousin/toybox/internal/metrics"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/internal/zoho"
	"github.com/chiefcousin/toybox/pkg/errors"
)

const (
	fullSyncLock = "zoho-catalog-sync"
	// a crashed sync frees the distributed lock after this long
	fullSyncLockTTL = 30 * time.Minute
)

// ItemSource reads items from Zoho Inventory
type ItemSource interface {
	ListItems(ctx context.Context, page, perPage int) (*zoho.ItemsResponse, error)
	GetItem(ctx context.Context, itemID string) (*zoho.Item, error)
}

// ConnectionChecker reports whether Zoho OAuth has been completed
type ConnectionChecker interface {
	IsConnected(ctx context.Context) bool
}

// SyncState is the catalog sync bookkeeping kept in store_settings
type SyncState struct {
	Connected  bool              `json:"connected"`
	Status     domain.SyncStatus `json:"sync_status"`
	Error      string            `json:"sync_error,omitempty"`
	LastSyncAt *time.Time        `json:"last_sync_at,omitempty"`
}

// CatalogSyncService pulls the Zoho item catalog into the products table
type CatalogSyncService struct {
	items          ItemSource
	connection     ConnectionChecker
	products       repository.ProductRepository
	settings       repository.SettingsRepository
	locker         lock.Locker
	metrics        *metrics.Metrics
	logger         *zap.Logger
	compareAtLabel string
	// itemLocks holds a *sync.Mutex per Zoho item id
	itemLocks      sync.Map
	now            func() time.Time
}

// NewCatalogSyncService creates a catalog sync service. A nil locker falls back to an in-process lock.
func NewCatalogSyncService(
	items ItemSource,
	connection ConnectionChecker,
	repos *repository.Repositories,
	locker lock.Locker,
	m *metrics.Metrics,
	compareAtLabel string,
	logger *zap.Logger,
) *CatalogSyncService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogSyncService{
		items:          items,
		connection:     connection,
		products:       repos.Product,
		settings:       repos.Settings,
		locker:         locker,
		metrics:        m,
		logger:         logger,
		compareAtLabel: compareAtLabel,
		now:            time.Now,
	}
}

// SyncAll fetches every Zoho item and upserts it. Item failures are collected in the
// result; a failure to page through Zoho marks the sync as errored and is reported
// in result.Errors rather than as an error. Only a held lock or a lock backend
// failure returns an error.
func (s *CatalogSyncService) SyncAll(ctx context.Context) (*domain.SyncResult, error) {
	release, ok, err := s.locker.TryLock(ctx, fullSyncLock, fullSyncLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return nil, &errors.ErrConflict{Message: "sync already running"}
	}
	defer release()

	result := &domain.SyncResult{Errors: []string{}}
	// bookkeeping must land even if the caller goes away mid-sync
	bg := context.WithoutCancel(ctx)

	start := s.now()
	s.setStatus(bg, domain.SyncStatusSyncing, "")
	s.logger.Info("Catalog sync: started")

	items, err := s.fetchAll(ctx)
	if err != nil {
		s.fail(bg, result, err)
		return result, nil
	}
	result.Total = len(items)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			s.fail(bg, result, fmt.Errorf("sync cancelled: %w", err))
			return result, nil
		}
		inserted, err := s.upsertItem(ctx, item)
		if err != nil {
			s.logger.Warn("Catalog sync: item failed", zap.String("zoho_item_id", item.ItemID), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("Item %s: %v", item.ItemID, err))
			continue
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.metrics.SyncItems("created", result.Created)
	s.metrics.SyncItems("updated", result.Updated)
	s.metrics.SyncItems("failed", len(result.Errors))

	if err := s.settings.SetMany(bg, map[string]string{
		domain.SettingZohoLastSyncAt: s.now().UTC().Format(time.RFC3339),
		domain.SettingZohoSyncStatus: string(domain.SyncStatusIdle),
		domain.SettingZohoSyncError:  "",
	}); err != nil {
		s.logger.Warn("Catalog sync: failed to store sync status", zap.Error(err))
	}
	s.metrics.SyncRun(string(domain.SyncStatusIdle))

	s.logger.Info("Catalog sync: finished",
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("took", s.now().Sub(start)),
	)
	return result, nil
}

func (s *CatalogSyncService) fail(ctx context.Context, result *domain.SyncResult, err error) {
	msg := err.Error()
	s.logger.Error("Catalog sync: failed", zap.Error(err))
	s.setStatus(ctx, domain.SyncStatusError, msg)
	s.metrics.SyncRun(string(domain.SyncStatusError))
	result.Errors = append(result.Errors, msg)
}

func (s *CatalogSyncService) fetchAll(ctx context.Context) ([]zoho.Item, error) {
	var all []zoho.Item
	for page := 1; ; page++ {
		resp, err := s.items.ListItems(ctx, page, zoho.DefaultPerPage)
		if err != nil {
			return nil, fmt.Errorf("zoho items fetch failed (page %d): %w", page, err)
		}
		all = append(all, resp.Items...)
		if !resp.HasMore() {
			return all, nil
		}
	}
}

func (s *CatalogSyncService) upsertItem(ctx context.Context, item zoho.Item) (bool, error) {
	p := MapItemToProduct(item, s.compareAtLabel, s.now())
	return s.products.UpsertFromZoho(ctx, p)
}

// SyncItem refreshes one product from Zoho. Calls for the same item run one after another,
// each with its own fetch, so the last event always writes the latest item.
func (s *CatalogSyncService) SyncItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return &errors.ErrValidation{Message: "item_id is required"}
	}
	mu := s.itemLock(itemID)
	mu.Lock()
	defer mu.Unlock()

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("could not fetch zoho item %s: %w", itemID, err)
	}
	inserted, err := s.upsertItem(ctx, *item)
	if err != nil {
		return err
	}
	s.logger.Info("Catalog sync: item synced", zap.String("zoho_item_id", itemID), zap.Bool("created", inserted))
	return nil
}

func (s *CatalogSyncService) itemLock(itemID string) *sync.Mutex {
	mu, _ := s.itemLocks.LoadOrStore(itemID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// DeactivateItem hides the product linked to a deleted Zoho item. Unknown items are ignored.
func (s *CatalogSyncService) DeactivateItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return &errors.ErrValidation{Message: "item_id is required"}
	}
	found, err := s.products.DeactivateByZohoItemID(ctx, itemID)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Debug("Catalog sync: deleted item has no product", zap.String("zoho_item_id", itemID))
		return nil
	}
	s.logger.Info("Catalog sync: product deactivated", zap.String("zoho_item_id", itemID))
	return nil
}

// Status reads the connection flag and sync bookkeeping
func (s *CatalogSyncService) Status(ctx context.Context) (*SyncState, error) {
	rows, err := s.settings.GetMany(ctx,
		domain.SettingZohoSyncStatus,
		domain.SettingZohoSyncError,
		domain.SettingZohoLastSyncAt,
	)
	if err != nil {
		return nil, err
	}

	st := &SyncState{
		Connected: s.connection.IsConnected(ctx),
		Status:    domain.SyncStatusIdle,
	}
	if v := rows[domain.SettingZohoSyncStatus]; v != nil && v.Value != "" {
		st.Status = domain.SyncStatus(v.Value)
	}
	if v := rows[domain.SettingZohoSyncError]; v != nil {
		st.Error = v.Value
	}
	if v := rows[domain.SettingZohoLastSyncAt]; v != nil && v.Value != "" {
		if t, err := time.Parse(time.RFC3339, v.Value); err == nil {
			st.LastSyncAt = &t
		}
	}
	return st, nil
}

func (s *CatalogSyncService) setStatus(ctx context.Context, status domain.SyncStatus, msg string) {
	err := s.settings.SetMany(ctx, map[string]string{
		domain.SettingZohoSyncStatus: string(status),
		domain.SettingZohoSyncError:  msg,
	})
	if err != nil {
		s.logger.Warn("Catalog sync: failed to store sync status", zap.String("status", string(status)), zap.Error(err))
	}
}

// RunSyncLoop runs a full sync now and then every interval until ctx is done.
// Runs are skipped while Zoho is not connected. Call from a goroutine.
func (s *CatalogSyncService) RunSyncLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.runScheduled(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *CatalogSyncService) runScheduled(ctx context.Context) {
	if !s.connection.IsConnected(ctx) {
		s.logger.Debug("Catalog sync skipped: Zoho is not connected")
		return
	}
	if _, err := s.SyncAll(ctx); err != nil {
		if errors.IsConflict(err) {
			s.logger.Debug("Catalog sync skipped: another sync is running")
			return
		}
		s.logger.Warn("Catalog sync: scheduled run failed", zap.Error(err))
	}
}
