// internal/views/review_list.go
package views

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

type ReviewSearcher interface {
	SearchReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error)
}

// ReviewList mirrors ProductList for reviews and adds rating projections over
// the loaded page.
type ReviewList struct {
	filter  models.ReviewFilter
	items   []models.Review
	index   map[uuid.UUID]int
	total   int64
	loading bool
	err     error
}

func NewReviewList(pageSize int) *ReviewList {
	if pageSize <= 0 {
		pageSize = utils.DefaultReviewPageSize
	}
	return &ReviewList{
		filter: models.ReviewFilter{Page: 1, Limit: pageSize, Sort: "created_at", Order: "desc"},
		index:  map[uuid.UUID]int{},
	}
}

func (l *ReviewList) SetFilter(f models.ReviewFilter) {
	f.Page, f.Limit, f.Sort, f.Order = 1, l.filter.Limit, l.filter.Sort, l.filter.Order
	l.filter = f
}

func (l *ReviewList) SetSort(field, order string) {
	l.filter.Sort, l.filter.Order = field, order
	l.filter.Page = 1
}

func (l *ReviewList) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	l.filter.Page = page
}

func (l *ReviewList) SetPageSize(size int) {
	if size > 0 {
		l.filter.Limit = size
		l.filter.Page = 1
	}
}

func (l *ReviewList) Filter() models.ReviewFilter { return l.filter }
func (l *ReviewList) Page() int                   { return l.filter.Page }
func (l *ReviewList) Items() []models.Review      { return l.items }
func (l *ReviewList) Total() int64                { return l.total }
func (l *ReviewList) Loading() bool               { return l.loading }
func (l *ReviewList) Err() error                  { return l.err }

func (l *ReviewList) TotalPages() int {
	return utils.TotalPages(l.total, l.filter.Limit)
}

func (l *ReviewList) Load(ctx context.Context, src ReviewSearcher) error {
	l.loading = true
	defer func() { l.loading = false }()

	items, total, err := src.SearchReviews(ctx, l.filter)
	if err != nil {
		l.err = err
		return err
	}

	l.err = nil
	l.items, l.total = items, total
	l.index = make(map[uuid.UUID]int, len(items))
	for i := range items {
		l.index[items[i].ID] = i
	}
	return nil
}

func (l *ReviewList) ByID(id uuid.UUID) (*models.Review, bool) {
	i, ok := l.index[id]
	if !ok {
		return nil, false
	}
	return &l.items[i], true
}

func (l *ReviewList) ByRating(rating int) []models.Review {
	var out []models.Review
	for _, r := range l.items {
		if r.Rating == rating {
			out = append(out, r)
		}
	}
	return out
}

func (l *ReviewList) ByCity(city string) []models.Review {
	var out []models.Review
	for _, r := range l.items {
		if strings.EqualFold(r.City, city) {
			out = append(out, r)
		}
	}
	return out
}

// AverageRating is the mean rating of the loaded page rounded to one decimal.
func (l *ReviewList) AverageRating() float64 {
	if len(l.items) == 0 {
		return 0
	}
	sum := 0
	for _, r := range l.items {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(l.items))*10) / 10
}

// RatingDistribution counts the loaded reviews per rating; every rating from 1
// to 5 is present.
func (l *ReviewList) RatingDistribution() map[int]int {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range l.items {
		if r.Rating >= 1 && r.Rating <= 5 {
			dist[r.Rating]++
		}
	}
	return dist
}

func (l *ReviewList) Result() utils.PaginationResult {
	return utils.PaginationResult{
		Page:       l.filter.Page,
		Limit:      l.filter.Limit,
		Total:      l.total,
		TotalPages: l.TotalPages(),
		Data:       l.items,
	}
}
