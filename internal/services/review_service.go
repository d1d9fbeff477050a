// internal/services/review_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

const (
	defaultPublicReviews = 10
	maxNameAttempts      = 10
)

type ReviewService struct {
	reviews ReviewRepository
	storage ObjectStorage
	namer   *FileNamer
	comp    *compensator
	bucket  string
}

type CreateReviewRequest struct {
	Author   string `json:"author" validate:"required,min=2,max=120"`
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Comment  string `json:"comment" validate:"required,min=10"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	City     string `json:"city,omitempty" validate:"max=120"`
	Province string `json:"province,omitempty" validate:"max=120"`
	Active   *bool  `json:"active,omitempty"`
}

type UpdateReviewRequest struct {
	Author      *string `json:"author,omitempty" validate:"omitempty,min=2,max=120"`
	Title       *string `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Comment     *string `json:"comment,omitempty" validate:"omitempty,min=10"`
	Rating      *int    `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=120"`
	Province    *string `json:"province,omitempty" validate:"omitempty,max=120"`
	Active      *bool   `json:"active,omitempty"`
	RemoveImage bool    `json:"remove_image,omitempty"`
}

// RatingStats summarizes ratings: Average is rounded to one decimal and
// Distribution always holds the keys 1 to 5.
type RatingStats struct {
	Total        int         `json:"total"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

func NewReviewService(reviews ReviewRepository, storage ObjectStorage, issues IssueLog, bucket string, attempts int) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		storage: storage,
		namer:   NewFileNamer(),
		comp:    newCompensator(storage, issues, attempts),
		bucket:  bucket,
	}
}

func (s *ReviewService) CreateReview(ctx context.Context, req *CreateReviewRequest, image *AssetPayload) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}
	if err := validateReviewImage(image); err != nil {
		return nil, err
	}

	review := &models.Review{
		Author:   strings.TrimSpace(req.Author),
		Title:    strings.TrimSpace(req.Title),
		Comment:  strings.TrimSpace(req.Comment),
		Rating:   req.Rating,
		City:     strings.TrimSpace(req.City),
		Province: strings.TrimSpace(req.Province),
		Active:   req.Active == nil || *req.Active,
	}

	if image != nil {
		path, err := s.uploadImage(ctx, review.Author, review.Title, image)
		if err != nil {
			return nil, err
		}
		review.ImageStoragePath = path
		review.ImageURL = s.storage.PublicURL(s.bucket, path, true)
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if review.ImageStoragePath != "" {
			s.undoUpload(ctx, uuid.Nil, review.ImageStoragePath, err)
		}
		return nil, &errs.AssetError{Kind: errs.ErrRecordWriteFailed, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"review_id": review.ID,
		"rating":    review.Rating,
		"has_image": review.ImageStoragePath != "",
	}).Info("Review created")
	return review, nil
}

func validateReviewImage(image *AssetPayload) error {
	if image == nil {
		return nil
	}
	if err := ValidateAsset(models.AssetKindImage, image.MimeType, image.Size()); err != nil {
		return &errs.AssetError{Kind: errs.ErrValidationFailed, Filename: image.Filename, Err: err}
	}
	return nil
}

// uploadImage stores a review image without overwriting: a taken name gets a
// fresh collision suffix, up to maxNameAttempts tries.
func (s *ReviewService) uploadImage(ctx context.Context, author, title string, image *AssetPayload) (string, error) {
	base := s.namer.ReviewImageName(author, title, ExtensionForMime(image.MimeType))
	name := base

	var err error
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		var path string
		path, err = s.storage.Upload(ctx, s.bucket, name, image.Data, image.MimeType, false)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, errs.ErrObjectExists) {
			break
		}
		name = s.namer.WithCollisionSuffix(base)
	}
	return "", &errs.AssetError{Kind: errs.ErrUploadFailed, Filename: image.Filename, Err: err}
}

func (s *ReviewService) undoUpload(ctx context.Context, reviewID uuid.UUID, path string, cause error) {
	if err := s.comp.deleteObjects(ctx, s.bucket, path); err != nil {
		s.comp.report(ctx, &models.ReconciliationIssue{
			EntityType: "review",
			EntityID:   reviewID,
			Operation:  "undo_review_image_upload",
			Bucket:     s.bucket,
			Paths:      pq.StringArray{path},
			Error:      fmt.Sprintf("orphaned object after record write failure (%v): %v", cause, err),
		})
	}
}

// imagePath returns the stored object of a review, falling back to parsing the
// public URL for rows written before the path was stored.
func (s *ReviewService) imagePath(review *models.Review) string {
	if review.ImageStoragePath != "" {
		return review.ImageStoragePath
	}
	return PathFromPublicURL(s.bucket, review.ImageURL)
}

// UpdateReview applies a partial update. A new image is uploaded before the
// record changes and the previous one is deleted after, so the record never
// points at a missing object.
func (s *ReviewService) UpdateReview(ctx context.Context, id uuid.UUID, req *UpdateReviewRequest, image *AssetPayload) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidationFailed, err)
	}
	if err := validateReviewImage(image); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	author, title := review.Author, review.Title
	if req.Author != nil {
		author = strings.TrimSpace(*req.Author)
		updates["author"] = author
	}
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		updates["title"] = title
	}
	if req.Comment != nil {
		updates["comment"] = strings.TrimSpace(*req.Comment)
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.City != nil {
		updates["city"] = strings.TrimSpace(*req.City)
	}
	if req.Province != nil {
		updates["province"] = strings.TrimSpace(*req.Province)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	oldPath := s.imagePath(review)
	newPath := ""
	switch {
	case image != nil:
		newPath, err = s.uploadImage(ctx, author, title, image)
		if err != nil {
			return nil, err
		}
		updates["image_storage_path"] = newPath
		updates["image_url"] = s.storage.PublicURL(s.bucket, newPath, true)
	case req.RemoveImage:
		updates["image_storage_path"] = ""
		updates["image_url"] = ""
	}

	if len(updates) == 0 {
		return review, nil
	}

	if err := s.reviews.Update(ctx, id, updates); err != nil {
		if newPath != "" {
			s.undoUpload(ctx, id, newPath, err)
		}
		if errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		return nil, &errs.AssetError{Kind: errs.ErrRecordWriteFailed, Err: err}
	}

	if (image != nil || req.RemoveImage) && oldPath != "" && oldPath != newPath {
		deleteLogged(ctx, s.storage, s.bucket, []string{oldPath}, logrus.Fields{"review_id": id})
	}

	return s.reviews.GetByID(ctx, id)
}

func (s *ReviewService) DeleteReview(ctx context.Context, id uuid.UUID) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if path := s.imagePath(review); path != "" {
		deleteLogged(ctx, s.storage, s.bucket, []string{path}, logrus.Fields{"review_id": id})
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return &errs.RepositoryError{Op: "delete review", Err: err}
	}
	return nil
}

func (s *ReviewService) ToggleReviewStatus(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, id, map[string]interface{}{"active": !review.Active}); err != nil {
		return nil, err
	}
	review.Active = !review.Active
	return review, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

func (s *ReviewService) SearchReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error) {
	params := utils.NormalizePagination(utils.PaginationParams{
		Page:  filter.Page,
		Limit: filter.Limit,
		Sort:  filter.Sort,
		Order: filter.Order,
	}, utils.DefaultReviewPageSize)
	filter.Page, filter.Limit, filter.Sort, filter.Order = params.Page, params.Limit, params.Sort, params.Order
	filter.Search = strings.TrimSpace(filter.Search)

	if filter.Rating != 0 && (filter.Rating < 1 || filter.Rating > 5) {
		return nil, 0, errs.Validation("rating filter %d out of range", filter.Rating)
	}

	reviews, total, err := s.reviews.Search(ctx, filter)
	if err != nil {
		return nil, 0, &errs.RepositoryError{Op: "search reviews", Err: err}
	}
	return reviews, total, nil
}

// GetPublicReviews lists the newest active reviews.
func (s *ReviewService) GetPublicReviews(ctx context.Context, limit int) ([]models.Review, error) {
	if limit <= 0 || limit > utils.MaxPageSize {
		limit = defaultPublicReviews
	}
	reviews, err := s.reviews.ListActive(ctx, limit)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "list public reviews", Err: err}
	}
	return reviews, nil
}

func (s *ReviewService) GetReviewStats(ctx context.Context) (RatingStats, error) {
	ratings, err := s.reviews.Ratings(ctx)
	if err != nil {
		return RatingStats{}, &errs.RepositoryError{Op: "load ratings", Err: err}
	}
	return ComputeRatingStats(ratings), nil
}

// ComputeRatingStats aggregates ratings. Values outside 1..5 count toward the
// total and average but not the distribution.
func ComputeRatingStats(ratings []int) RatingStats {
	stats := RatingStats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	if len(ratings) == 0 {
		return stats
	}

	sum := 0
	for _, r := range ratings {
		sum += r
		if _, ok := stats.Distribution[r]; ok {
			stats.Distribution[r]++
		}
	}
	stats.Total = len(ratings)
	stats.Average = roundOneDecimal(float64(sum) / float64(len(ratings)))
	return stats
}

func (s *ReviewService) DistinctCities(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "city")
}

func (s *ReviewService) DistinctProvinces(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "province")
}

func (s *ReviewService) distinct(ctx context.Context, column string) ([]string, error) {
	values, err := s.reviews.DistinctValues(ctx, column)
	if err != nil {
		return nil, &errs.RepositoryError{Op: "distinct " + column, Err: err}
	}
	return values, nil
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
