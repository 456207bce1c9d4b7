package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/service"
)

func productResponses(products []*domain.Product) []service.ProductResponse {
	out := make([]service.ProductResponse, len(products))
	for i, p := range products {
		out[i] = service.ToProductResponse(p)
	}
	return out
}

// parseProductFilter reads the storefront listing filters from the query string
func parseProductFilter(c *gin.Context) (domain.ProductFilter, bool) {
	filter := domain.ProductFilter{
		Query:    c.Query("q"),
		AgeRange: c.Query("age_range"),
		Brand:    c.Query("brand"),
		Sort:     domain.ProductSort(c.Query("sort")),
	}
	// category is a slug; admin screens may still pass the id
	if v := c.Query("category"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.CategoryID = &id
		} else {
			filter.CategorySlug = v
		}
	}
	for param, dst := range map[string]**decimal.Decimal{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
	} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
			return filter, false
		}
		*dst = &d
	}
	if v := c.Query("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid in_stock"})
			return filter, false
		}
		filter.InStock = inStock
	}
	v := c.Query("is_featured")
	if v == "" {
		v = c.Query("featured")
	}
	if v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_featured"})
			return filter, false
		}
		filter.Featured = &featured
	}
	return filter, true
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func pageResponse(page *service.ProductPage) gin.H {
	totalPages := (page.Total + page.PageSize - 1) / page.PageSize
	return gin.H{
		"products":    productResponses(page.Products),
		"total":       page.Total,
		"page":        page.Page,
		"page_size":   page.PageSize,
		"total_pages": totalPages,
	}
}

// HandleSearchProducts handles GET /api/products?q=&limit=
func HandleSearchProducts(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil {
			limit = 0
		}
		products, err := catalog.Search(c.Request.Context(), c.Query("q"), limit)
		if err != nil {
			respondError(c, logger, "Product search failed", err)
			return
		}
		c.JSON(http.StatusOK, productResponses(products))
	}
}

// HandleListProducts handles GET /api/products/list
func HandleListProducts(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := parseProductFilter(c)
		if !ok {
			return
		}
		page, err := catalog.ListProducts(c.Request.Context(), filter, pageParam(c))
		if err != nil {
			respondError(c, logger, "Failed to list products", err)
			return
		}
		c.JSON(http.StatusOK, pageResponse(page))
	}
}

// HandleGetProduct handles GET /api/products/:slug
func HandleGetProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, logger, "Failed to get product", err)
			return
		}
		c.JSON(http.StatusOK, service.ToProductResponse(p))
	}
}

// HandleTrackView handles POST /api/track-view
func HandleTrackView(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ProductID uuid.UUID `json:"product_id"`
		}
		if !bindJSON(c, &body) {
			return
		}
		if err := catalog.TrackView(c.Request.Context(), body.ProductID); err != nil {
			respondError(c, logger, "Failed to track view", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// HandleAdminListProducts handles GET /api/admin/products, inactive products included
func HandleAdminListProducts(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := parseProductFilter(c)
		if !ok {
			return
		}
		filter.IncludeInactive = true
		page, err := catalog.ListProducts(c.Request.Context(), filter, pageParam(c))
		if err != nil {
			respondError(c, logger, "Failed to list products", err)
			return
		}
		c.JSON(http.StatusOK, pageResponse(page))
	}
}

// HandleCreateProduct handles POST /api/admin/products
func HandleCreateProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in service.ProductInput
		if !bindJSON(c, &in) {
			return
		}
		p, err := catalog.CreateProduct(c.Request.Context(), in)
		if err != nil {
			respondError(c, logger, "Failed to create product", err)
			return
		}
		c.JSON(http.StatusCreated, service.ToProductResponse(p))
	}
}

// HandleUpdateProduct handles PUT /api/admin/products/:id.
// Name, price, stock and the other Zoho-owned fields only change for unlinked products.
func HandleUpdateProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}
		var in service.ProductInput
		if !bindJSON(c, &in) {
			return
		}
		p, err := catalog.UpdateProduct(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, logger, "Failed to update product", err)
			return
		}
		c.JSON(http.StatusOK, service.ToProductResponse(p))
	}
}

// HandleDeleteProduct handles DELETE /api/admin/products/:id (soft delete)
func HandleDeleteProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}
		if err := catalog.DeleteProduct(c.Request.Context(), id); err != nil {
			respondError(c, logger, "Failed to delete product", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
