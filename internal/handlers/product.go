package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/apierror"
	mw "storefront/internal/middleware/auth"
	"storefront/internal/models"
	"storefront/internal/mykafka"
	"storefront/internal/repo"
	"storefront/internal/util"
)

const maxImageSize = 1024 * 1024

type ProductHandler struct {
	Products  *repo.ProductRepo
	Producer  *mykafka.Producer
	UploadDir string
}

type createProductRequest struct {
	Name         string   `json:"name"         validate:"required,max=100"`
	Price        float64  `json:"price"        validate:"required,gte=0"`
	Description  string   `json:"description"  validate:"required,max=1000"`
	Image        string   `json:"image"`
	Category     string   `json:"category"     validate:"required,oneof=office kitchen bedroom"`
	Company      string   `json:"company"      validate:"required,oneof=ikea liddy marcos"`
	Colors       []string `json:"colors"`
	Featured     bool     `json:"featured"`
	FreeShipping bool     `json:"freeShipping"`
	Inventory    *int     `json:"inventory"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return apierror.BadRequest("Please provide valid product data!")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	identity, _ := mw.Identity(c)

	product := models.Product{
		Name:         req.Name,
		Price:        req.Price,
		Description:  req.Description,
		Image:        req.Image,
		Category:     req.Category,
		Company:      req.Company,
		Colors:       req.Colors,
		Featured:     req.Featured,
		FreeShipping: req.FreeShipping,
		Inventory:    15,
		UserID:       identity.UserID,
	}
	if product.Image == "" {
		product.Image = "/uploads/example.jpeg"
	}
	if len(product.Colors) == 0 {
		product.Colors = []string{"222"}
	}
	if req.Inventory != nil {
		product.Inventory = *req.Inventory
	}

	if err := h.Products.Create(c.Request().Context(), &product); err != nil {
		return err
	}

	publish(c, h.Producer, mykafka.TopicProductEvents, product.ID, map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})

	return c.JSON(http.StatusCreated, echo.Map{"product": product})
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	products, total, err := h.Products.List(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"count":    total,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func (h *ProductHandler) GetSingleProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.Products.FindByIDWithReviews(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Product not found!")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

type updateProductRequest struct {
	Name         *string  `json:"name"         validate:"omitempty,max=100"`
	Price        *float64 `json:"price"        validate:"omitempty,gte=0"`
	Description  *string  `json:"description"  validate:"omitempty,max=1000"`
	Image        *string  `json:"image"`
	Category     *string  `json:"category"     validate:"omitempty,oneof=office kitchen bedroom"`
	Company      *string  `json:"company"      validate:"omitempty,oneof=ikea liddy marcos"`
	Colors       []string `json:"colors"`
	Featured     *bool    `json:"featured"`
	FreeShipping *bool    `json:"freeShipping"`
	Inventory    *int     `json:"inventory"`
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return apierror.BadRequest("Please provide valid product data!")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.Products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Product not found!")
		}
		return err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Company != nil {
		product.Company = *req.Company
	}
	if req.Colors != nil {
		product.Colors = req.Colors
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.FreeShipping != nil {
		product.FreeShipping = *req.FreeShipping
	}
	if req.Inventory != nil {
		product.Inventory = *req.Inventory
	}

	if err := h.Products.Save(ctx, product); err != nil {
		return err
	}

	publish(c, h.Producer, mykafka.TopicProductEvents, product.ID, map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

// DeleteProduct removes the product together with its reviews.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if _, err := h.Products.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Product not found!")
		}
		return err
	}

	if err := h.Products.Delete(ctx, id); err != nil {
		return err
	}

	publish(c, h.Producer, mykafka.TopicProductEvents, id, map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"msg": "Product deleted successfully!"})
}

// UploadImage stores a product image on the local filesystem under the
// public uploads directory.
func (h *ProductHandler) UploadImage(c echo.Context) error {
	fileHeader, err := c.FormFile("myImage")
	if err != nil {
		return apierror.BadRequest("Error! No file uploaded!")
	}

	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image") {
		return apierror.BadRequest("Error! Please upload an image!")
	}
	if fileHeader.Size > maxImageSize {
		return apierror.BadRequest("Error! Size mustn't exceed 1 MB")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	name := filepath.Base(fileHeader.Filename)
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(h.UploadDir, name))
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"image": "/uploads/" + name})
}
