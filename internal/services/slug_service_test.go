package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/models"
)

func newTestSlugService() (*SlugService, *memProductRepo) {
	repo := newMemProductRepo(newMemImageRepo())
	svc := NewSlugService(repo)
	svc.now = func() time.Time { return time.UnixMilli(1717171717171) }
	return svc, repo
}

func TestGenerateUniqueSlug_AppendsCounterOnCollision(t *testing.T) {
	svc, repo := newTestSlugService()
	ctx := context.Background()

	slug, err := svc.GenerateUniqueSlug(ctx, "Tractor Rojo", nil)
	require.NoError(t, err)
	assert.Equal(t, "tractor-rojo", slug)
	repo.seed(models.Product{Slug: slug})

	slug, err = svc.GenerateUniqueSlug(ctx, "Tractor Rojo", nil)
	require.NoError(t, err)
	assert.Equal(t, "tractor-rojo-1", slug)
	repo.seed(models.Product{Slug: slug})

	slug, err = svc.GenerateUniqueSlug(ctx, "Tractor  rojo!", nil)
	require.NoError(t, err)
	assert.Equal(t, "tractor-rojo-2", slug)
}

func TestGenerateUniqueSlug_ExcludesOwnProduct(t *testing.T) {
	svc, repo := newTestSlugService()
	own := repo.seed(models.Product{Slug: "excavadora-cat-320"})

	slug, err := svc.GenerateUniqueSlug(context.Background(), "Excavadora CAT 320", &own.ID)
	require.NoError(t, err)
	assert.Equal(t, "excavadora-cat-320", slug)

	other := uuid.New()
	slug, err = svc.GenerateUniqueSlug(context.Background(), "Excavadora CAT 320", &other)
	require.NoError(t, err)
	assert.Equal(t, "excavadora-cat-320-1", slug)
}

func TestGenerateUniqueSlug_EmptyTitleFallsBack(t *testing.T) {
	svc, _ := newTestSlugService()

	slug, err := svc.GenerateUniqueSlug(context.Background(), "¡¡!!", nil)
	require.NoError(t, err)
	assert.Equal(t, "producto", slug)
}

func TestGenerateUniqueSlug_LookupFailureDegrades(t *testing.T) {
	svc, repo := newTestSlugService()
	repo.slugErr = errors.New("connection reset")

	slug, err := svc.GenerateUniqueSlug(context.Background(), "Grúa Horquilla", nil)
	assert.Equal(t, "grua-horquilla-1717171717171", slug)
	assert.ErrorIs(t, err, errs.ErrSlugResolutionDegraded)
}

func TestGenerateUniqueSlug_CancelledContextDegrades(t *testing.T) {
	svc, repo := newTestSlugService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slug, err := svc.GenerateUniqueSlug(ctx, "Retroexcavadora", nil)
	assert.Equal(t, "retroexcavadora-1717171717171", slug)
	assert.ErrorIs(t, err, errs.ErrSlugResolutionDegraded)
	assert.Equal(t, 0, repo.slugQueries)
}
