// internal/services/slug_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/metrics"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

// Base used when a title has no characters that survive slug normalization.
const fallbackSlugBase = "producto"

type SlugService struct {
	products ProductRepository
	now      func() time.Time
}

func NewSlugService(products ProductRepository) *SlugService {
	return &SlugService{products: products, now: time.Now}
}

// GenerateUniqueSlug derives a slug from text that no other product (except
// excludeID) uses, appending -1, -2, ... on collision. If the lookup fails the
// slug gets a millisecond timestamp suffix instead and is returned together with
// errs.ErrSlugResolutionDegraded; the slug is still usable.
func (s *SlugService) GenerateUniqueSlug(ctx context.Context, text string, excludeID *uuid.UUID) (string, error) {
	base := utils.GenerateSlug(text)
	if base == "" {
		base = fallbackSlugBase
	}

	slug := base
	for counter := 1; ; counter++ {
		if err := ctx.Err(); err != nil {
			return s.degraded(base, err)
		}

		exists, err := s.products.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return s.degraded(base, err)
		}
		if !exists {
			return slug, nil
		}

		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (s *SlugService) degraded(base string, cause error) (string, error) {
	slug := fmt.Sprintf("%s-%d", base, s.now().UnixMilli())
	metrics.SlugFallbacksTotal.Inc()
	logrus.WithFields(logrus.Fields{
		"base": base,
		"slug": slug,
	}).WithError(cause).Warn("Slug uniqueness check failed, using timestamp suffix")
	return slug, fmt.Errorf("%w: %v", errs.ErrSlugResolutionDegraded, cause)
}
