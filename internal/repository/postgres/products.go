package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/pkg/errors"
)

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

const productColumns = `id, name, slug, description, price, compare_at_price, sku, stock_quantity,
	category_id, brand, age_range, tags, is_featured, is_active, zoho_item_id,
	last_synced_from_zoho, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, extra ...any) (*domain.Product, error) {
	var p domain.Product
	var description, sku, brand, ageRange, zohoItemID sql.NullString
	var categoryID uuid.NullUUID
	var lastSynced sql.NullTime
	var tags pq.StringArray

	dest := []any{
		&p.ID, &p.Name, &p.Slug, &description, &p.Price, &p.CompareAtPrice, &sku, &p.StockQuantity,
		&categoryID, &brand, &ageRange, &tags, &p.IsFeatured, &p.IsActive, &zohoItemID,
		&lastSynced, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	p.Description = nullStringPtr(description)
	p.SKU = nullStringPtr(sku)
	p.Brand = nullStringPtr(brand)
	p.AgeRange = nullStringPtr(ageRange)
	p.ZohoItemID = nullStringPtr(zohoItemID)
	if categoryID.Valid {
		p.CategoryID = &categoryID.UUID
	}
	if lastSynced.Valid {
		p.LastSyncedFromZoho = &lastSynced.Time
	}
	p.Tags = []string(tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func (r *productRepository) UpsertFromZoho(ctx context.Context, p *domain.Product) (bool, error) {
	if p.ZohoItemID == nil || *p.ZohoItemID == "" {
		return false, &errors.ErrValidation{Message: "zoho item id is required"}
	}

	// Locally-owned columns are only written on insert; the update list is the Zoho-owned allow-list.
	query := `
		INSERT INTO products (
			id, name, slug, description, price, compare_at_price, sku, stock_quantity,
			tags, is_featured, is_active, zoho_item_id, last_synced_from_zoho, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '{}', false, $9, $10, $11, $12, $12)
		ON CONFLICT (zoho_item_id) WHERE zoho_item_id IS NOT NULL DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			compare_at_price = EXCLUDED.compare_at_price,
			sku = EXCLUDED.sku,
			stock_quantity = EXCLUDED.stock_quantity,
			is_active = EXCLUDED.is_active,
			last_synced_from_zoho = EXCLUDED.last_synced_from_zoho,
			updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0) AS inserted
	`

	now := time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	syncedAt := now
	if p.LastSyncedFromZoho != nil {
		syncedAt = *p.LastSyncedFromZoho
	}

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.CompareAtPrice, p.SKU, p.StockQuantity,
		p.IsActive, *p.ZohoItemID, syncedAt, now,
	).Scan(&p.ID, &inserted)
	if err != nil {
		r.logger.Error("Failed to upsert product from Zoho", zap.String("zoho_item_id", *p.ZohoItemID), zap.Error(err))
		return false, err
	}
	return inserted, nil
}

func (r *productRepository) GetByZohoItemID(ctx context.Context, itemID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE zoho_item_id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, itemID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get product by Zoho item ID", zap.String("zoho_item_id", itemID), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *productRepository) DeactivateByZohoItemID(ctx context.Context, itemID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = false, updated_at = $2 WHERE zoho_item_id = $1`,
		itemID, time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to deactivate product", zap.String("zoho_item_id", itemID), zap.Error(err))
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get product by ID", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
	}
	if err != nil {
		r.logger.Error("Failed to get product by slug", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *productRepository) Search(ctx context.Context, q string, limit int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true
			AND (name ILIKE $1 OR description ILIKE $1 OR brand ILIKE $1)
		ORDER BY name
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		r.logger.Error("Failed to search products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productRepository) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, int, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeInactive {
		where = append(where, "is_active = true")
	}
	if f.Query != "" {
		p := arg("%" + escapeLike(f.Query) + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR brand ILIKE %s)", p, p, p))
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = "+arg(*f.CategoryID))
	}
	if f.CategorySlug != "" {
		slug := arg(f.CategorySlug)
		where = append(where, fmt.Sprintf(
			"(NOT EXISTS (SELECT 1 FROM categories WHERE slug = %s) OR category_id = (SELECT id FROM categories WHERE slug = %s))",
			slug, slug))
	}
	if f.AgeRange != "" {
		where = append(where, "age_range = "+arg(f.AgeRange))
	}
	if f.Brand != "" {
		where = append(where, "brand ILIKE "+arg(escapeLike(f.Brand)))
	}
	if f.MinPrice != nil {
		where = append(where, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= "+arg(*f.MaxPrice))
	}
	if f.InStock {
		where = append(where, "stock_quantity > 0")
	}
	if f.Featured != nil {
		where = append(where, "is_featured = "+arg(*f.Featured))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}
	filterArgs := len(args)

	query := `SELECT ` + productColumns + `, COUNT(*) OVER() AS total_count FROM products` + whereSQL
	query += " ORDER BY " + productOrderBy(f.Sort)

	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.Product
	total := 0
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// past the last page the window count has no row to ride on
	if len(out) == 0 && f.Offset > 0 {
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+whereSQL, args[:filterArgs]...).Scan(&total)
		if err != nil {
			r.logger.Error("Failed to count products", zap.Error(err))
			return nil, 0, err
		}
	}
	return out, total, nil
}

func productOrderBy(s domain.ProductSort) string {
	switch s {
	case domain.ProductSortPriceAsc:
		return "price ASC, created_at DESC"
	case domain.ProductSortPriceDesc:
		return "price DESC, created_at DESC"
	case domain.ProductSortName:
		return "name ASC"
	default:
		return "created_at DESC"
	}
}

func (r *productRepository) ListLinked(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE zoho_item_id IS NOT NULL
		ORDER BY last_synced_from_zoho DESC NULLS LAST, name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list linked products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	now := time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Tags == nil {
		p.Tags = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.CompareAtPrice, p.SKU, p.StockQuantity,
		uuidPtrValue(p.CategoryID), p.Brand, p.AgeRange, pq.Array(p.Tags), p.IsFeatured, p.IsActive, p.ZohoItemID,
		p.LastSyncedFromZoho, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &errors.ErrConflict{Message: "a product with this slug already exists"}
		}
		r.logger.Error("Failed to create product", zap.Error(err))
		return err
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products SET
			name = $2, slug = $3, description = $4, price = $5, compare_at_price = $6, sku = $7,
			stock_quantity = $8, category_id = $9, brand = $10, age_range = $11, tags = $12,
			is_featured = $13, is_active = $14, updated_at = $15
		WHERE id = $1
	`

	p.UpdatedAt = time.Now()
	if p.Tags == nil {
		p.Tags = []string{}
	}
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.CompareAtPrice, p.SKU,
		p.StockQuantity, uuidPtrValue(p.CategoryID), p.Brand, p.AgeRange, pq.Array(p.Tags),
		p.IsFeatured, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &errors.ErrConflict{Message: "a product with this slug already exists"}
		}
		r.logger.Error("Failed to update product", zap.Error(err))
		return err
	}
	return requireRow(res, "product", p.ID.String())
}

func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = false, updated_at = $2 WHERE id = $1`,
		id, time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to soft delete product", zap.Error(err))
		return err
	}
	return requireRow(res, "product", id.String())
}

func (r *productRepository) Counts(ctx context.Context) (total, active, linked int, err error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(zoho_item_id)
		FROM products
	`
	err = r.db.QueryRowContext(ctx, query).Scan(&total, &active, &linked)
	if err != nil {
		r.logger.Error("Failed to count products", zap.Error(err))
	}
	return total, active, linked, err
}
