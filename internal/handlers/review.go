// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/machinery-catalog/internal/i18n"
	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/services"
	"github.com/javajoker/machinery-catalog/internal/utils"
	"github.com/javajoker/machinery-catalog/internal/views"
)

const defaultPublicReviews = 6

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

type reviewImage struct {
	DataURL  string `json:"data_url"`
	Filename string `json:"filename,omitempty"`
}

type reviewBody struct {
	services.CreateReviewRequest
	Image *reviewImage `json:"image,omitempty"`
}

type updateReviewBody struct {
	services.UpdateReviewRequest
	Image *reviewImage `json:"image,omitempty"`
}

func (img *reviewImage) payload() (*services.AssetPayload, error) {
	if img == nil || img.DataURL == "" {
		return nil, nil
	}
	return services.PayloadFromDataURL(img.DataURL, img.Filename)
}

// GET /admin/reviews
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	params := utils.GetPaginationParams(c, utils.DefaultReviewPageSize)

	list := views.NewReviewList(params.Limit)
	list.SetFilter(models.ReviewFilter{
		Search:   params.Search,
		Rating:   queryInt(c, "rating", 0),
		City:     c.Query("city"),
		Province: c.Query("province"),
		Active:   queryBool(c, "active"),
	})
	list.SetSort(params.Sort, params.Order)
	list.SetPage(params.Page)

	if err := list.Load(c.Request.Context(), h.reviewService); err != nil {
		respondError(c, err, "review")
		return
	}
	utils.PaginatedResponse(c, list.Result())
}

// GET /reviews
func (h *ReviewHandler) GetPublicReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetPublicReviews(c.Request.Context(), queryInt(c, "limit", defaultPublicReviews))
	if err != nil {
		respondError(c, err, "review")
		return
	}
	utils.SuccessResponse(c, reviews)
}

// GET /admin/reviews/stats
func (h *ReviewHandler) GetReviewStats(c *gin.Context) {
	stats, err := h.reviewService.GetReviewStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "review")
		return
	}
	utils.SuccessResponse(c, stats)
}

// GET /admin/reviews/cities
func (h *ReviewHandler) GetCities(c *gin.Context) {
	cities, err := h.reviewService.DistinctCities(c.Request.Context())
	if err != nil {
		respondError(c, err, "review")
		return
	}
	utils.SuccessResponse(c, cities)
}

// GET /admin/reviews/provinces
func (h *ReviewHandler) GetProvinces(c *gin.Context) {
	provinces, err := h.reviewService.DistinctProvinces(c.Request.Context())
	if err != nil {
		respondError(c, err, "review")
		return
	}
	utils.SuccessResponse(c, provinces)
}

// GET /admin/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	review, err := h.reviewService.GetReview(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "review")
		return
	}
	utils.SuccessResponse(c, review)
}

// POST /admin/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var body reviewBody
	if !bindJSON(c, &body) {
		return
	}
	image, err := body.Image.payload()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidType), err.Error())
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), &body.CreateReviewRequest, image)
	if err != nil {
		respondError(c, err, "review")
		return
	}

	c.Set("resource_id", review.ID.String())
	utils.CreatedResponse(c, review)
}

// PUT /admin/reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var body updateReviewBody
	if !bindJSON(c, &body) {
		return
	}
	image, err := body.Image.payload()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidType), err.Error())
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), id, &body.UpdateReviewRequest, image)
	if err != nil {
		respondError(c, err, "review")
		return
	}
	utils.SuccessResponse(c, review)
}

// DELETE /admin/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), id); err != nil {
		respondError(c, err, "review")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyReviewDeleted)})
}

// PATCH /admin/reviews/:id/toggle
func (h *ReviewHandler) ToggleReviewStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	review, err := h.reviewService.ToggleReviewStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "review")
		return
	}
	utils.SuccessResponse(c, review)
}
