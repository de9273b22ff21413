package handlers

import (
	"jammal/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// CatalogHandler serves the public storefront reads.
type CatalogHandler struct {
	products   *services.ProductService
	categories *services.CategoryService
	logger     zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(products *services.ProductService, categories *services.CategoryService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		products:   products,
		categories: categories,
		logger:     logger.With().Str("handler", "catalog").Logger(),
	}
}

// RegisterRoutes registers the catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/search", h.HandleSearch)
	router.Get("/products/:slug", h.HandleGetProduct)
	router.Get("/categories", h.HandleListCategories)
}

// HandleSearch filters, sorts and pages the catalog.
func (h *CatalogHandler) HandleSearch(c *fiber.Ctx) error {
	params := services.SearchParams{
		Query:     c.Query("q"),
		Category:  c.Query("category"),
		SortBy:    c.Query("sortBy", "createdAt"),
		SortOrder: c.Query("sortOrder", "desc"),
	}

	var err error
	if params.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return respondError(c, h.logger, err)
	}
	if params.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return respondError(c, h.logger, err)
	}
	page, err := queryPage(c, services.DefaultSearchLimit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	params.Page, params.Limit = page.Page, page.Limit

	res, err := h.products.Search(c.UserContext(), params)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(res)
}

// HandleGetProduct returns a product by slug.
func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.products.GetProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleListCategories returns every category.
func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(categories)
}
