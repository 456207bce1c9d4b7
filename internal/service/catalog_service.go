package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/pkg/errors"
)

const (
	// ProductPageSize is the storefront listing page size
	ProductPageSize    = 12
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	dashboardViewsDays = 30
)

// ProductPage is one page of a storefront listing
type ProductPage struct {
	Products []*domain.Product
	Total    int
	Page     int
	PageSize int
}

// CatalogService serves the storefront catalog and admin product edits
type CatalogService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewCatalogService creates a catalog service
func NewCatalogService(repos *repository.Repositories, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repos: repos, logger: logger}
}

// Search matches active products by name, description or brand. An empty query returns nothing.
func (s *CatalogService) Search(ctx context.Context, q string, limit int) ([]*domain.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []*domain.Product{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.repos.Product.Search(ctx, q, limit)
}

// ListProducts returns a filtered page of products. page starts at 1.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter, page int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	switch filter.Sort {
	case "", domain.ProductSortNewest, domain.ProductSortPriceAsc, domain.ProductSortPriceDesc, domain.ProductSortName:
	default:
		return nil, &errors.ErrValidation{Message: "unknown sort: " + string(filter.Sort)}
	}
	filter.Limit = ProductPageSize
	filter.Offset = (page - 1) * ProductPageSize

	products, total, err := s.repos.Product.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Total: total, Page: page, PageSize: ProductPageSize}, nil
}

// GetBySlug returns an active product for the storefront
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := s.repos.Product.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
	}
	return p, nil
}

// GetByID returns any product, active or not
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.repos.Product.GetByID(ctx, id)
}

// TrackView records a storefront page view
func (s *CatalogService) TrackView(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return &errors.ErrValidation{Message: "Missing product_id"}
	}
	return s.repos.ProductView.Create(ctx, &domain.ProductView{ProductID: productID})
}

// CreateProduct adds a product that is not linked to Zoho
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = GenerateSlug(in.Name, uuid.NewString())
	}

	p := &domain.Product{
		Slug:     slug,
		IsActive: true,
	}
	applyZohoOwned(p, in)
	applyLocal(p, in)

	if err := s.repos.Product.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Product created", zap.String("product_id", p.ID.String()), zap.String("slug", p.Slug))
	return p, nil
}

// UpdateProduct edits a product. Fields owned by Zoho are only written for unlinked
// products; a linked product takes them from the next sync.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*domain.Product, error) {
	p, err := s.repos.Product.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.ZohoItemID == nil {
		if err := validateProductInput(in); err != nil {
			return nil, err
		}
		applyZohoOwned(p, in)
	}
	applyLocal(p, in)
	if slug := strings.TrimSpace(in.Slug); slug != "" {
		p.Slug = slug
	}

	if err := s.repos.Product.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Product updated", zap.String("product_id", id.String()), zap.Bool("linked", p.ZohoItemID != nil))
	return p, nil
}

// DeleteProduct hides a product; rows are kept so past orders still resolve
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repos.Product.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deactivated", zap.String("product_id", id.String()))
	return nil
}

// Dashboard gathers the admin dashboard counters
func (s *CatalogService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	total, active, linked, err := s.repos.Product.Counts(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repos.Order.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	views, err := s.repos.ProductView.CountSince(ctx, time.Now().AddDate(0, 0, -dashboardViewsDays))
	if err != nil {
		return nil, err
	}
	customers, err := s.repos.Customer.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.DashboardStats{
		TotalProducts:   total,
		ActiveProducts:  active,
		LinkedProducts:  linked,
		OrdersByStatus:  byStatus,
		ViewsLast30Days: views,
		Customers:       customers,
	}, nil
}

func validateProductInput(in ProductInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "required"
	}
	if in.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if in.CompareAtPrice != nil && in.CompareAtPrice.IsNegative() {
		fields["compare_at_price"] = "must not be negative"
	}
	if in.StockQuantity < 0 {
		fields["stock_quantity"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &errors.ErrValidation{Message: "invalid product", Fields: fields}
	}
	return nil
}

func applyZohoOwned(p *domain.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = trimOptional(in.Description)
	p.Price = in.Price
	p.CompareAtPrice = decimal.NullDecimal{}
	if in.CompareAtPrice != nil {
		p.CompareAtPrice = decimal.NewNullDecimal(*in.CompareAtPrice)
	}
	p.SKU = trimOptional(in.SKU)
	p.StockQuantity = in.StockQuantity
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func applyLocal(p *domain.Product, in ProductInput) {
	p.CategoryID = in.CategoryID
	p.Brand = trimOptional(in.Brand)
	p.AgeRange = trimOptional(in.AgeRange)
	p.Tags = in.Tags
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.IsFeatured = in.IsFeatured
}
