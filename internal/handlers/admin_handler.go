package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"jammal/internal/middleware"
	"jammal/internal/models"
	"jammal/internal/repositories"
	"jammal/internal/services"
	"jammal/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AdminServices are the services behind the back-office routes.
type AdminServices struct {
	Orders     *services.OrderService
	Products   *services.ProductService
	Categories *services.CategoryService
	Customers  *services.CustomerService
	Export     *services.ExportService
}

// AdminHandler handles the back-office routes. Every route requires an administrator.
type AdminHandler struct {
	svc      AdminServices
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc AdminServices, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

// RegisterRoutes registers the admin routes behind the Required and Admin guards.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, g Guards) {
	admin := router.Group("/admin", g.Required, g.Admin)

	admin.Get("/orders", h.HandleListOrders)

	admin.Get("/products", h.HandleListProducts)
	admin.Post("/products", h.HandleCreateProduct)
	admin.Get("/products/:id", h.HandleGetProduct)
	admin.Patch("/products/:id", h.HandleUpdateProduct)
	admin.Delete("/products/:id", h.HandleDeleteProduct)

	admin.Post("/categories", h.HandleCreateCategory)
	admin.Get("/categories/:id", h.HandleGetCategory)
	admin.Patch("/categories/:id", h.HandleUpdateCategory)
	admin.Delete("/categories/:id", h.HandleDeleteCategory)

	admin.Get("/customers", h.HandleListCustomers)
	admin.Get("/customers/:id", h.HandleGetCustomer)
	admin.Delete("/customers/:id", h.HandleDeleteCustomer)

	admin.Get("/export-data", h.HandleExport)
}

// HandleListOrders lists every order, optionally filtered by status.
func (h *AdminHandler) HandleListOrders(c *fiber.Ctx) error {
	page, err := queryPage(c, repositories.DefaultLimit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	res, err := h.svc.Orders.ListAllOrders(c.UserContext(), middleware.Identity(c), c.Query("status"), page)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(res)
}

// HandleListProducts lists products with their sales analytics.
func (h *AdminHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.svc.Products.ListWithAnalytics(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleGetProduct returns a product by id.
func (h *AdminHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.svc.Products.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product from a JSON body or a multipart form.
func (h *AdminHandler) HandleCreateProduct(c *fiber.Ctx) error {
	in, err := parseProductInput(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	product, err := h.svc.Products.CreateProduct(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product from a multipart form or a JSON body.
func (h *AdminHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	in, err := parseProductInput(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	product, err := h.svc.Products.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *AdminHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.svc.Products.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleCreateCategory creates a category.
func (h *AdminHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req services.CategoryInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	category, err := h.svc.Categories.CreateCategory(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleGetCategory returns a category by id.
func (h *AdminHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.svc.Categories.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(category)
}

// HandleUpdateCategory replaces a category.
func (h *AdminHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var req services.CategoryInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	category, err := h.svc.Categories.UpdateCategory(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(category)
}

// HandleDeleteCategory deletes an empty category.
func (h *AdminHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.svc.Categories.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleListCustomers lists customers with their order statistics.
func (h *AdminHandler) HandleListCustomers(c *fiber.Ctx) error {
	page, err := queryPage(c, repositories.DefaultLimit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	res, err := h.svc.Customers.ListCustomers(c.UserContext(), c.Query("search"), page)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(res)
}

// HandleGetCustomer returns a customer with their orders.
func (h *AdminHandler) HandleGetCustomer(c *fiber.Ctx) error {
	customer, err := h.svc.Customers.GetCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(customer)
}

// HandleDeleteCustomer deletes a customer and their orders.
func (h *AdminHandler) HandleDeleteCustomer(c *fiber.Ctx) error {
	if err := h.svc.Customers.DeleteCustomer(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleExport serves the full data export as a JSON attachment.
func (h *AdminHandler) HandleExport(c *fiber.Ctx) error {
	export, err := h.svc.Export.BuildExport(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename()))
	return c.JSON(export)
}

// productRequest is the JSON form of a product write.
type productRequest struct {
	Name           string                  `json:"name"`
	Slug           string                  `json:"slug"`
	Description    string                  `json:"description"`
	Price          *decimal.Decimal        `json:"price"`
	Discount       float64                 `json:"discount"`
	Stock          int                     `json:"stock"`
	CategoryID     string                  `json:"categoryId"`
	IsFeatured     bool                    `json:"isFeatured"`
	IsBestSeller   bool                    `json:"isBestSeller"`
	Images         []string                `json:"images"`
	ExistingImages []string                `json:"existingImages"`
	Variants       *models.ProductVariants `json:"variants"`
}

func parseProductInput(c *fiber.Ctx) (services.ProductInput, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return parseProductForm(c)
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return services.ProductInput{}, models.Validation("Invalid request body")
	}
	in := services.ProductInput{
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		Price:          req.Price,
		Discount:       req.Discount,
		Stock:          req.Stock,
		CategoryID:     req.CategoryID,
		IsFeatured:     req.IsFeatured,
		IsBestSeller:   req.IsBestSeller,
		ExistingImages: append(req.Images, req.ExistingImages...),
	}
	if req.Variants != nil {
		in.Sizes = req.Variants.Sizes
	}
	return in, nil
}

// parseProductForm reads the admin product form. Unparseable discount and
// stock fall back to zero; an unparseable price counts as missing.
func parseProductForm(c *fiber.Ctx) (services.ProductInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return services.ProductInput{}, models.Validation("Invalid form data")
	}
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	in := services.ProductInput{
		Name:         value("name"),
		Slug:         value("slug"),
		Description:  value("description"),
		CategoryID:   value("categoryId"),
		IsFeatured:   value("isFeatured") == "true",
		IsBestSeller: value("isBestSeller") == "true",
	}
	if p, err := decimal.NewFromString(value("price")); err == nil {
		in.Price = &p
	}
	if d, err := strconv.ParseFloat(value("discount"), 64); err == nil {
		in.Discount = d
	}
	if s, err := strconv.Atoi(value("stock")); err == nil {
		in.Stock = s
	}
	in.ExistingImages = parseStringArray(value("existingImages"))
	in.Sizes = parseStringArray(value("sizes"))

	for _, fh := range form.File["images"] {
		upload, err := readUpload(fh)
		if err != nil {
			return services.ProductInput{}, err
		}
		in.Uploads = append(in.Uploads, upload)
	}
	return in, nil
}

// parseStringArray decodes a JSON string array; anything else yields nil.
func parseStringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func readUpload(fh *multipart.FileHeader) (storage.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return storage.Upload{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return storage.Upload{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return storage.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
