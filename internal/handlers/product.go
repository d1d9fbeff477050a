// internal/handlers/product.go
package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/i18n"
	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/services"
	"github.com/javajoker/machinery-catalog/internal/utils"
	"github.com/javajoker/machinery-catalog/internal/views"
)

const (
	dynamicFilterPrefix = "attr."
	defaultRelatedLimit = 4
	defaultFeatured     = 8
)

type ProductHandler struct {
	productService *services.ProductService
	exportService  *services.ExportService
}

func NewProductHandler(productService *services.ProductService, exportService *services.ExportService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		exportService:  exportService,
	}
}

type productBody struct {
	services.CreateProductRequest
	Images []services.ImageInput `json:"images"`
}

// updateProductBody leaves images untouched when the key is absent; an empty
// list removes all of them.
type updateProductBody struct {
	services.UpdateProductRequest
	Images *[]services.ImageInput `json:"images"`
}

type videoLinkRequest struct {
	Title string `json:"title" binding:"required"`
	URL   string `json:"url" binding:"required,url"`
}

// productListFromQuery builds the listing state from query parameters.
// Dynamic attribute filters use the attr.<field_name>=<value> form.
func productListFromQuery(c *gin.Context) *views.ProductList {
	params := utils.GetPaginationParams(c, utils.DefaultProductPageSize)
	list := views.NewProductList(params.Limit)

	filter := models.ProductFilter{
		CategoryID: queryUUID(c, "category_id"),
		Condition:  c.Query("condition"),
		PriceMin:   queryFloat(c, "price_min"),
		PriceMax:   queryFloat(c, "price_max"),
		Search:     params.Search,
		Active:     queryBool(c, "active"),
		Featured:   queryBool(c, "featured"),
	}
	if raw := c.Query("subcategory_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
				filter.SubcategoryIDs = append(filter.SubcategoryIDs, id)
			}
		}
	}
	list.SetFilter(filter)

	for key, values := range c.Request.URL.Query() {
		if strings.HasPrefix(key, dynamicFilterPrefix) && len(values) > 0 {
			list.SetDynamicFilter(strings.TrimPrefix(key, dynamicFilterPrefix), values[0])
		}
	}

	list.SetSort(params.Sort, params.Order)
	list.SetPage(params.Page)
	return list
}

func (h *ProductHandler) respondList(c *gin.Context, list *views.ProductList) {
	if err := list.Load(c.Request.Context(), h.productService); err != nil {
		respondError(c, err, "product")
		return
	}
	utils.PaginatedResponse(c, list.Result())
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	list := productListFromQuery(c)
	filter := list.Filter()
	active := true
	filter.Active = &active
	list.SetFilter(filter)
	list.SetPage(queryInt(c, "page", 1))
	h.respondList(c, list)
}

// GET /admin/products
func (h *ProductHandler) AdminGetProducts(c *gin.Context) {
	h.respondList(c, productListFromQuery(c))
}

// GET /products/featured
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	products, err := h.productService.GetFeaturedProducts(c.Request.Context(), queryInt(c, "limit", defaultFeatured))
	if err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, products)
}

// GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.productService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "product")
		return
	}
	if !product.Active {
		utils.NotFoundResponse(c, "product")
		return
	}
	utils.SuccessResponse(c, product)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, product)
}

// GET /products/:id/related
func (h *ProductHandler) GetRelatedProducts(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	products, err := h.productService.GetRelatedProducts(c.Request.Context(), id, queryInt(c, "limit", defaultRelatedLimit))
	if err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, products)
}

// GET /products/:id/attributes
func (h *ProductHandler) GetFormattedAttributes(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	product, err := h.productService.GetProduct(ctx, id)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	attrs, err := h.productService.FormattedAttributes(ctx, product)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, attrs)
}

// GET /admin/products/export
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	list := productListFromQuery(c)
	f, err := h.exportService.ExportProducts(c.Request.Context(), list.Filter())
	if err != nil {
		respondError(c, err, "product")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("productos-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(c.Writer); err != nil {
		logrus.WithError(err).Error("Failed to stream product export")
	}
}

// POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var body productBody
	if !bindJSON(c, &body) {
		return
	}

	images, err := services.DescriptorsFromInputs(body.Images)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidType), err.Error())
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &body.CreateProductRequest, images)
	if err != nil {
		respondErrorWith(c, err, "product", product)
		return
	}

	c.Set("resource_id", product.ID.String())
	utils.CreatedResponse(c, product)
}

// PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var body updateProductBody
	if !bindJSON(c, &body) {
		return
	}

	var images []services.AssetDescriptor
	if body.Images != nil {
		var err error
		images, err = services.DescriptorsFromInputs(*body.Images)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidType), err.Error())
			return
		}
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &body.UpdateProductRequest, images)
	if err != nil {
		respondErrorWith(c, err, "product", product)
		return
	}
	utils.SuccessResponse(c, product)
}

// DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyProductDeleted)})
}

// GET /admin/products/:id/images
func (h *ProductHandler) ListImages(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	images, err := h.productService.ListImages(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, images)
}

// DELETE /admin/products/:id/images/:imageId
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseUUIDParam(c, "imageId")
	if !ok {
		return
	}
	images, err := h.productService.DeleteImage(c.Request.Context(), id, imageID)
	if err != nil {
		respondError(c, err, "image")
		return
	}
	utils.SuccessResponse(c, images)
}

// POST /admin/products/:id/videos/upload
func (h *ProductHandler) UploadVideo(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payload, title, err := readUpload(c)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	product, err := h.productService.UploadVideo(c.Request.Context(), id, payload, title)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, product)
}

// POST /admin/products/:id/videos
func (h *ProductHandler) AddVideo(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req videoLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "video"), err.Error())
		return
	}

	product, err := h.productService.AddVideo(c.Request.Context(), id, models.Video{Title: req.Title, URL: req.URL})
	if err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, product)
}

// DELETE /admin/products/:id/videos/:index
func (h *ProductHandler) RemoveVideo(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "index"), nil)
		return
	}

	product, err := h.productService.RemoveVideo(c.Request.Context(), id, index)
	if err != nil {
		respondError(c, err, "video")
		return
	}
	utils.SuccessResponse(c, product)
}

// POST /admin/products/:id/pdf
func (h *ProductHandler) UploadPDF(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payload, _, err := readUpload(c)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	product, err := h.productService.UploadPDF(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, product)
}

// DELETE /admin/products/:id/pdf
func (h *ProductHandler) DeletePDF(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.DeletePDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	utils.SuccessResponse(c, product)
}
