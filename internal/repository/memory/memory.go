// Package memory provides in-process implementations of the repository interfaces.
// They back service and handler tests and mirror the postgres semantics that matter
// for concurrency: unique Zoho item ids, versioned settings and the order push claim.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/pkg/errors"
)

// NewRepositories returns a fresh in-memory repository set
func NewRepositories() *repository.Repositories {
	products := NewProductRepository()
	return &repository.Repositories{
		Settings:       NewSettingsRepository(),
		Product:        products,
		Order:          NewOrderRepository(),
		IdempotencyKey: NewIdempotencyKeyRepository(),
		Customer:       NewCustomerRepository(),
		Staff:          NewStaffRepository(),
		ProductView:    NewProductViewRepository(),
	}
}

// SettingsRepository is an in-memory store_settings table
type SettingsRepository struct {
	mu   sync.Mutex
	rows map[string]*domain.Setting
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{rows: make(map[string]*domain.Setting)}
}

func (r *SettingsRepository) Get(_ context.Context, key string) (*domain.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[key]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SettingsRepository) GetMany(_ context.Context, keys ...string) (map[string]*domain.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*domain.Setting, len(keys))
	for _, k := range keys {
		if s, ok := r.rows[k]; ok {
			cp := *s
			out[k] = &cp
		}
	}
	return out, nil
}

func (r *SettingsRepository) set(key, value string) {
	if s, ok := r.rows[key]; ok {
		s.Value = value
		s.Version++
		s.UpdatedAt = time.Now()
		return
	}
	r.rows[key] = &domain.Setting{Key: key, Value: value, Version: 1, UpdatedAt: time.Now()}
}

func (r *SettingsRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set(key, value)
	return nil
}

func (r *SettingsRepository) SetMany(_ context.Context, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range values {
		r.set(k, v)
	}
	return nil
}

func (r *SettingsRepository) CompareAndSet(_ context.Context, key string, expectedVersion int64, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[key]
	switch {
	case expectedVersion == 0 && ok:
		return false, nil
	case expectedVersion != 0 && (!ok || s.Version != expectedVersion):
		return false, nil
	}
	r.set(key, value)
	return true, nil
}

func (r *SettingsRepository) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(r.rows, k)
	}
	return nil
}

// ProductRepository is an in-memory products table with a unique zoho_item_id index
type ProductRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.Product
	// categories maps category slug to id
	categories map[string]uuid.UUID
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		rows:       make(map[uuid.UUID]*domain.Product),
		categories: make(map[string]uuid.UUID),
	}
}

// AddCategory registers a category slug and returns its id
func (r *ProductRepository) AddCategory(slug string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.categories[slug] = id
	return id
}

func cloneProduct(p *domain.Product) *domain.Product {
	cp := *p
	cp.Tags = append([]string{}, p.Tags...)
	return &cp
}

func (r *ProductRepository) byItemID(itemID string) *domain.Product {
	for _, p := range r.rows {
		if p.ZohoItemID != nil && *p.ZohoItemID == itemID {
			return p
		}
	}
	return nil
}

func (r *ProductRepository) UpsertFromZoho(_ context.Context, p *domain.Product) (bool, error) {
	if p.ZohoItemID == nil || *p.ZohoItemID == "" {
		return false, &errors.ErrValidation{Message: "zoho item id is required"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing := r.byItemID(*p.ZohoItemID); existing != nil {
		existing.Name = p.Name
		existing.Description = p.Description
		existing.Price = p.Price
		existing.CompareAtPrice = p.CompareAtPrice
		existing.SKU = p.SKU
		existing.StockQuantity = p.StockQuantity
		existing.IsActive = p.IsActive
		existing.LastSyncedFromZoho = p.LastSyncedFromZoho
		existing.UpdatedAt = now
		p.ID = existing.ID
		return false, nil
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	row := cloneProduct(p)
	row.CategoryID = nil
	row.Brand = nil
	row.AgeRange = nil
	row.Tags = []string{}
	row.IsFeatured = false
	row.CreatedAt = now
	row.UpdatedAt = now
	r.rows[row.ID] = row
	return true, nil
}

func (r *ProductRepository) GetByZohoItemID(_ context.Context, itemID string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.byItemID(itemID); p != nil {
		return cloneProduct(p), nil
	}
	return nil, nil
}

func (r *ProductRepository) DeactivateByZohoItemID(_ context.Context, itemID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byItemID(itemID)
	if p == nil {
		return false, nil
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return cloneProduct(p), nil
}

func (r *ProductRepository) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
}

func matchesQuery(p *domain.Product, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	if p.Description != nil && strings.Contains(strings.ToLower(*p.Description), q) {
		return true
	}
	return p.Brand != nil && strings.Contains(strings.ToLower(*p.Brand), q)
}

func (r *ProductRepository) Search(ctx context.Context, q string, limit int) ([]*domain.Product, error) {
	out, _, err := r.List(ctx, domain.ProductFilter{Query: q, Sort: domain.ProductSortName, Limit: limit})
	return out, err
}

func (r *ProductRepository) List(_ context.Context, f domain.ProductFilter) ([]*domain.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slugCategory, slugKnown := r.categories[f.CategorySlug]

	var all []*domain.Product
	for _, p := range r.rows {
		switch {
		case !f.IncludeInactive && !p.IsActive:
			continue
		case f.Query != "" && !matchesQuery(p, f.Query):
			continue
		case f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID):
			continue
		case slugKnown && (p.CategoryID == nil || *p.CategoryID != slugCategory):
			continue
		case f.AgeRange != "" && (p.AgeRange == nil || *p.AgeRange != f.AgeRange):
			continue
		case f.Brand != "" && (p.Brand == nil || !strings.EqualFold(*p.Brand, f.Brand)):
			continue
		case f.InStock && p.StockQuantity <= 0:
			continue
		case f.MinPrice != nil && p.Price.LessThan(*f.MinPrice):
			continue
		case f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice):
			continue
		case f.Featured != nil && p.IsFeatured != *f.Featured:
			continue
		}
		all = append(all, cloneProduct(p))
	}

	sort.SliceStable(all, func(i, j int) bool {
		switch f.Sort {
		case domain.ProductSortPriceAsc:
			return all[i].Price.LessThan(all[j].Price)
		case domain.ProductSortPriceDesc:
			return all[i].Price.GreaterThan(all[j].Price)
		case domain.ProductSortName:
			return all[i].Name < all[j].Name
		default:
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
	})

	total := len(all)
	if f.Offset > 0 {
		if f.Offset >= len(all) {
			return nil, total, nil
		}
		all = all[f.Offset:]
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (r *ProductRepository) ListLinked(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.rows {
		if p.ZohoItemID != nil {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Slug == p.Slug {
			return &errors.ErrConflict{Message: "a product with this slug already exists"}
		}
	}
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
	r.rows[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[p.ID]
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: p.ID.String()}
	}
	for _, other := range r.rows {
		if other.ID != p.ID && other.Slug == p.Slug {
			return &errors.ErrConflict{Message: "a product with this slug already exists"}
		}
	}
	p.UpdatedAt = time.Now()
	row := cloneProduct(p)
	row.ZohoItemID = existing.ZohoItemID
	row.LastSyncedFromZoho = existing.LastSyncedFromZoho
	row.CreatedAt = existing.CreatedAt
	r.rows[p.ID] = row
	return nil
}

func (r *ProductRepository) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	return nil
}

func (r *ProductRepository) Counts(_ context.Context) (total, active, linked int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		total++
		if p.IsActive {
			active++
		}
		if p.ZohoItemID != nil {
			linked++
		}
	}
	return total, active, linked, nil
}

// All returns every stored product, for assertions in tests
func (r *ProductRepository) All() []*domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// OrderRepository is an in-memory orders table
type OrderRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{rows: make(map[uuid.UUID]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	return &cp
}

func (r *OrderRepository) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = domain.OrderStatusClicked
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
	r.rows[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) List(_ context.Context, f domain.OrderFilter) ([]*domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Order
	for _, o := range r.rows {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		all = append(all, cloneOrder(o))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if f.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (r *OrderRepository) UpdateStatusAndNotes(_ context.Context, id uuid.UUID, status domain.OrderStatus, adminNotes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	o.Status = status
	o.AdminNotes = adminNotes
	o.UpdatedAt = time.Now()
	return nil
}

func (r *OrderRepository) ClaimZohoSync(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok || o.ZohoSyncedAt != nil {
		return false, nil
	}
	o.ZohoSyncedAt = &at
	return true, nil
}

func (r *OrderRepository) ReleaseZohoSync(_ context.Context, id uuid.UUID, syncError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.rows[id]; ok {
		o.ZohoSyncedAt = nil
		o.ZohoSyncError = &syncError
	}
	return nil
}

func (r *OrderRepository) SetZohoSalesOrder(_ context.Context, id uuid.UUID, ref domain.SalesOrderRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.rows[id]; ok {
		o.ZohoSalesOrderID = &ref.ID
		o.ZohoSalesOrderNumber = &ref.Number
		o.ZohoSyncError = nil
	}
	return nil
}

func (r *OrderRepository) SetZohoSyncError(_ context.Context, id uuid.UUID, syncError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.rows[id]; ok {
		o.ZohoSyncError = &syncError
	}
	return nil
}

func (r *OrderRepository) CountByStatus(_ context.Context) (map[domain.OrderStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		out[s] = 0
	}
	for _, o := range r.rows {
		out[o.Status]++
	}
	return out, nil
}

// IdempotencyKeyRepository is an in-memory idempotency_keys table
type IdempotencyKeyRepository struct {
	mu   sync.Mutex
	rows map[string]*domain.IdempotencyKey
}

func NewIdempotencyKeyRepository() *IdempotencyKeyRepository {
	return &IdempotencyKeyRepository{rows: make(map[string]*domain.IdempotencyKey)}
}

func (r *IdempotencyKeyRepository) GetByKey(_ context.Context, key string) (*domain.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.rows[key]
	if !ok {
		return nil, nil
	}
	cp := *k
	return &cp, nil
}

func (r *IdempotencyKeyRepository) Create(_ context.Context, key *domain.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[key.Key]; ok {
		return &errors.ErrConflict{Message: "idempotency key already used"}
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}
	cp := *key
	r.rows[key.Key] = &cp
	return nil
}

// CustomerRepository is an in-memory customers table
type CustomerRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{rows: make(map[uuid.UUID]*domain.Customer)}
}

func (r *CustomerRepository) byPhone(phone string) *domain.Customer {
	for _, c := range r.rows {
		if c.Phone == phone {
			return c
		}
	}
	return nil
}

func (r *CustomerRepository) GetByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.byPhone(phone); c != nil {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *CustomerRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "customer", ID: id.String()}
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepository) SaveOTP(_ context.Context, phone, otpHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.byPhone(phone)
	if c == nil {
		now := time.Now()
		c = &domain.Customer{ID: uuid.New(), Phone: phone, CreatedAt: now}
		r.rows[c.ID] = c
	}
	c.OTPHash = &otpHash
	c.OTPExpiresAt = &expiresAt
	c.UpdatedAt = time.Now()
	return nil
}

func (r *CustomerRepository) MarkVerified(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "customer", ID: id.String()}
	}
	c.IsVerified = true
	c.OTPHash = nil
	c.OTPExpiresAt = nil
	c.UpdatedAt = time.Now()
	return nil
}

func (r *CustomerRepository) UpsertVerified(_ context.Context, phone, name string, address *string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	c := r.byPhone(phone)
	if c == nil {
		c = &domain.Customer{ID: uuid.New(), Phone: phone, CreatedAt: now}
		r.rows[c.ID] = c
	}
	c.Name = name
	if address != nil {
		c.Address = address
	}
	c.IsVerified = true
	c.OTPHash = nil
	c.OTPExpiresAt = nil
	c.UpdatedAt = now
	cp := *c
	return &cp, nil
}

func (r *CustomerRepository) UpdateProfile(_ context.Context, id uuid.UUID, name string, address *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "customer", ID: id.String()}
	}
	c.Name = name
	c.Address = address
	c.UpdatedAt = time.Now()
	return nil
}

func (r *CustomerRepository) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.rows {
		if c.IsVerified {
			n++
		}
	}
	return n, nil
}

func (r *CustomerRepository) List(_ context.Context) ([]*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Customer, 0, len(r.rows))
	for _, c := range r.rows {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// StaffRepository is an in-memory staff_users table
type StaffRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.StaffUser
}

func NewStaffRepository() *StaffRepository {
	return &StaffRepository{rows: make(map[uuid.UUID]*domain.StaffUser)}
}

func (r *StaffRepository) GetByEmail(_ context.Context, email string) (*domain.StaffUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *StaffRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.StaffUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "staff user", ID: id.String()}
	}
	cp := *u
	return &cp, nil
}

func (r *StaffRepository) List(_ context.Context) ([]*domain.StaffUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.StaffUser, 0, len(r.rows))
	for _, u := range r.rows {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *StaffRepository) Create(_ context.Context, u *domain.StaffUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.rows {
		if existing.Email == u.Email {
			return &errors.ErrConflict{Message: "a staff account with this email already exists"}
		}
	}
	now := time.Now()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := *u
	r.rows[u.ID] = &cp
	return nil
}

// ProductViewRepository is an in-memory product_views table
type ProductViewRepository struct {
	mu    sync.Mutex
	views []domain.ProductView
}

func NewProductViewRepository() *ProductViewRepository {
	return &ProductViewRepository{}
}

func (r *ProductViewRepository) Create(_ context.Context, view *domain.ProductView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if view.ID == uuid.Nil {
		view.ID = uuid.New()
	}
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now()
	}
	r.views = append(r.views, *view)
	return nil
}

func (r *ProductViewRepository) CountSince(_ context.Context, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.views {
		if !v.ViewedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

var (
	_ repository.SettingsRepository       = (*SettingsRepository)(nil)
	_ repository.ProductRepository        = (*ProductRepository)(nil)
	_ repository.OrderRepository          = (*OrderRepository)(nil)
	_ repository.IdempotencyKeyRepository = (*IdempotencyKeyRepository)(nil)
	_ repository.CustomerRepository       = (*CustomerRepository)(nil)
	_ repository.StaffRepository          = (*StaffRepository)(nil)
	_ repository.ProductViewRepository    = (*ProductViewRepository)(nil)
)
