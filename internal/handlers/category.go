// internal/handlers/category.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/machinery-catalog/internal/i18n"
	"github.com/javajoker/machinery-catalog/internal/services"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

type renameRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err, "category")
		return
	}
	utils.SuccessResponse(c, categories)
}

// GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.categoryService.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "category")
		return
	}
	utils.SuccessResponse(c, category)
}

// GET /categories/:id/fields
func (h *CategoryHandler) GetFields(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	fields, err := h.categoryService.Fields(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "category")
		return
	}
	utils.SuccessResponse(c, fields)
}

// GET /subcategories?category_id=
func (h *CategoryHandler) GetSubcategories(c *gin.Context) {
	subs, err := h.categoryService.ListSubcategories(c.Request.Context(), queryUUID(c, "category_id"))
	if err != nil {
		respondError(c, err, "subcategory")
		return
	}
	utils.SuccessResponse(c, subs)
}

// POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "category")
		return
	}
	c.Set("resource_id", category.ID.String())
	utils.CreatedResponse(c, category)
}

// PUT /admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "category")
		return
	}
	utils.SuccessResponse(c, category)
}

// DELETE /admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err, "category")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeySuccess)})
}

// POST /admin/subcategories
func (h *CategoryHandler) CreateSubcategory(c *gin.Context) {
	var req services.SubcategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.categoryService.CreateSubcategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "category")
		return
	}
	c.Set("resource_id", sub.ID.String())
	utils.CreatedResponse(c, sub)
}

// PUT /admin/subcategories/:id
func (h *CategoryHandler) UpdateSubcategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req renameRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.categoryService.UpdateSubcategory(c.Request.Context(), id, req.Name); err != nil {
		respondError(c, err, "subcategory")
		return
	}
	utils.SuccessResponse(c, gin.H{"id": id, "name": req.Name})
}

// DELETE /admin/subcategories/:id
func (h *CategoryHandler) DeleteSubcategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.DeleteSubcategory(c.Request.Context(), id); err != nil {
		respondError(c, err, "subcategory")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeySuccess)})
}

// POST /admin/categories/:id/fields
func (h *CategoryHandler) CreateField(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.FieldRequest
	if !bindJSON(c, &req) {
		return
	}
	field, err := h.categoryService.CreateField(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "category")
		return
	}
	utils.CreatedResponse(c, field)
}

// PUT /admin/fields/:id
func (h *CategoryHandler) UpdateField(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req services.FieldRequest
	if !bindJSON(c, &req) {
		return
	}
	field, err := h.categoryService.UpdateField(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "field")
		return
	}
	utils.SuccessResponse(c, field)
}

// DELETE /admin/fields/:id
func (h *CategoryHandler) DeleteField(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.DeleteField(c.Request.Context(), id); err != nil {
		respondError(c, err, "field")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeySuccess)})
}
