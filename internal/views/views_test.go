package views

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/machinery-catalog/internal/models"
)

type stubProducts struct {
	items []models.Product
	total int64
	err   error
	seen  models.ProductFilter
}

func (s *stubProducts) SearchProducts(_ context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	s.seen = f
	return s.items, s.total, s.err
}

type stubReviews struct {
	items []models.Review
	total int64
	err   error
}

func (s *stubReviews) SearchReviews(_ context.Context, _ models.ReviewFilter) ([]models.Review, int64, error) {
	return s.items, s.total, s.err
}

func product(categoryID uuid.UUID, images ...models.ProductImage) models.Product {
	p := models.Product{CategoryID: categoryID, Images: images}
	p.ID = uuid.New()
	return p
}

func TestProductListFilterAndSortResetPage(t *testing.T) {
	list := NewProductList(0)
	assert.Equal(t, 12, list.PageSize())

	list.SetPage(3)
	list.SetFilter(models.ProductFilter{Condition: "usado", Page: 7, Limit: 50})
	assert.Equal(t, 1, list.Page())
	assert.Equal(t, 12, list.PageSize())
	assert.Equal(t, "usado", list.Filter().Condition)

	list.SetPage(2)
	list.SetSort("price", "asc")
	assert.Equal(t, 1, list.Page())
	assert.Equal(t, "price", list.Filter().Sort)

	list.SetPage(4)
	list.SetDynamicFilter("potencia_hp", "120")
	assert.Equal(t, 1, list.Page())
	assert.Equal(t, map[string]string{"potencia_hp": "120"}, list.Filter().Dynamic)
	list.SetDynamicFilter("potencia_hp", "")
	assert.Empty(t, list.Filter().Dynamic)

	list.SetPage(0)
	assert.Equal(t, 1, list.Page())
}

func TestProductListProjections(t *testing.T) {
	tractors, cranes := uuid.New(), uuid.New()
	img := models.ProductImage{Principal: true, Position: 1}
	a, b, c := product(tractors, img), product(tractors), product(cranes)
	src := &stubProducts{items: []models.Product{a, b, c}, total: 25}

	list := NewProductList(12)
	list.SetPage(2)
	require.NoError(t, list.Load(context.Background(), src))
	assert.Equal(t, 2, src.seen.Page)

	assert.Equal(t, 3, list.TotalPages())
	got, ok := list.ByID(b.ID)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
	_, ok = list.ByID(uuid.New())
	assert.False(t, ok)

	assert.Len(t, list.ByCategory(tractors), 2)
	assert.Len(t, list.ByCategory(cranes), 1)
	assert.Equal(t, []models.ProductImage{img}, list.ImagesOf(a.ID))
	assert.Nil(t, list.ImagesOf(uuid.New()))

	result := list.Result()
	assert.Equal(t, int64(25), result.Total)
	assert.Equal(t, 3, result.TotalPages)
	assert.False(t, list.Loading())
}

func TestProductListKeepsPageOnError(t *testing.T) {
	list := NewProductList(12)
	first := product(uuid.New())
	require.NoError(t, list.Load(context.Background(), &stubProducts{items: []models.Product{first}, total: 1}))

	boom := errors.New("db down")
	assert.ErrorIs(t, list.Load(context.Background(), &stubProducts{err: boom}), boom)
	assert.ErrorIs(t, list.Err(), boom)
	assert.Len(t, list.Items(), 1)
	_, ok := list.ByID(first.ID)
	assert.True(t, ok)
}

func TestReviewListProjections(t *testing.T) {
	var items []models.Review
	for i, rating := range []int{5, 5, 4, 3, 1} {
		r := models.Review{Rating: rating, City: "Medellín"}
		if i%2 == 1 {
			r.City = "Cali"
		}
		r.ID = uuid.New()
		items = append(items, r)
	}

	list := NewReviewList(0)
	list.SetPage(2)
	list.SetFilter(models.ReviewFilter{City: "Cali"})
	assert.Equal(t, 1, list.Page())
	require.NoError(t, list.Load(context.Background(), &stubReviews{items: items, total: 21}))

	assert.Equal(t, 3, list.TotalPages())
	assert.Len(t, list.ByRating(5), 2)
	assert.Len(t, list.ByCity("cali"), 2)
	assert.Equal(t, 3.6, list.AverageRating())
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 1, 4: 1, 5: 2}, list.RatingDistribution())

	r, ok := list.ByID(items[2].ID)
	require.True(t, ok)
	assert.Equal(t, 4, r.Rating)

	empty := NewReviewList(10)
	assert.Equal(t, 0.0, empty.AverageRating())
	assert.Equal(t, 0, empty.TotalPages())
}
