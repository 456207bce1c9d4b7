package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
)

type settingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new store settings repository
func NewSettingsRepository(db *sql.DB, logger *zap.Logger) *settingsRepository {
	return &settingsRepository{
		db:     db,
		logger: logger,
	}
}

const upsertSettingQuery = `
	INSERT INTO store_settings (key, value, version, updated_at)
	VALUES ($1, $2, 1, $3)
	ON CONFLICT (key) DO UPDATE SET
		value = EXCLUDED.value,
		version = store_settings.version + 1,
		updated_at = EXCLUDED.updated_at
`

func (r *settingsRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	query := `
		SELECT key, value, version, updated_at
		FROM store_settings
		WHERE key = $1
	`

	var s domain.Setting
	err := r.db.QueryRowContext(ctx, query, key).Scan(&s.Key, &s.Value, &s.Version, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get setting", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) GetMany(ctx context.Context, keys ...string) (map[string]*domain.Setting, error) {
	out := make(map[string]*domain.Setting, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	query := `
		SELECT key, value, version, updated_at
		FROM store_settings
		WHERE key = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		r.logger.Error("Failed to get settings", zap.Strings("keys", keys), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Version, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out[s.Key] = &s
	}
	return out, rows.Err()
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, upsertSettingQuery, key, value, time.Now())
	if err != nil {
		r.logger.Error("Failed to set setting", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// SetMany writes all values in one transaction so readers never see a half-written token record
func (r *settingsRepository) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, upsertSettingQuery, k, values[k], now); err != nil {
			r.logger.Error("Failed to set setting", zap.String("key", k), zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

func (r *settingsRepository) CompareAndSet(ctx context.Context, key string, expectedVersion int64, value string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	now := time.Now()
	if expectedVersion == 0 {
		res, err = r.db.ExecContext(ctx, `
			INSERT INTO store_settings (key, value, version, updated_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (key) DO NOTHING
		`, key, value, now)
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE store_settings
			SET value = $3, version = version + 1, updated_at = $4
			WHERE key = $1 AND version = $2
		`, key, expectedVersion, value, now)
	}
	if err != nil {
		r.logger.Error("Failed to compare-and-set setting", zap.String("key", key), zap.Error(err))
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *settingsRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM store_settings WHERE key = ANY($1)`, pq.Array(keys))
	if err != nil {
		r.logger.Error("Failed to delete settings", zap.Strings("keys", keys), zap.Error(err))
		return err
	}
	return nil
}
