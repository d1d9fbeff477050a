// internal/views/product_list.go
package views

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

type ProductSearcher interface {
	SearchProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
}

// ProductList is the state of one product listing: the query that produced it
// and the page of records it holds. Changing a filter or the sort order moves
// the list back to the first page.
type ProductList struct {
	filter  models.ProductFilter
	items   []models.Product
	index   map[uuid.UUID]int
	total   int64
	loading bool
	err     error
}

func NewProductList(pageSize int) *ProductList {
	if pageSize <= 0 {
		pageSize = utils.DefaultProductPageSize
	}
	return &ProductList{
		filter: models.ProductFilter{Page: 1, Limit: pageSize, Sort: "created_at", Order: "desc"},
		index:  map[uuid.UUID]int{},
	}
}

// SetFilter replaces every criterion while keeping the page size and sort order.
func (l *ProductList) SetFilter(f models.ProductFilter) {
	f.Page, f.Limit, f.Sort, f.Order = 1, l.filter.Limit, l.filter.Sort, l.filter.Order
	l.filter = f
}

func (l *ProductList) SetDynamicFilter(key, value string) {
	if l.filter.Dynamic == nil {
		l.filter.Dynamic = map[string]string{}
	}
	if value == "" {
		delete(l.filter.Dynamic, key)
	} else {
		l.filter.Dynamic[key] = value
	}
	l.filter.Page = 1
}

func (l *ProductList) SetSort(field, order string) {
	l.filter.Sort, l.filter.Order = field, order
	l.filter.Page = 1
}

func (l *ProductList) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	l.filter.Page = page
}

func (l *ProductList) SetPageSize(size int) {
	if size > 0 {
		l.filter.Limit = size
		l.filter.Page = 1
	}
}

func (l *ProductList) Filter() models.ProductFilter { return l.filter }
func (l *ProductList) Page() int                    { return l.filter.Page }
func (l *ProductList) PageSize() int                { return l.filter.Limit }
func (l *ProductList) Items() []models.Product      { return l.items }
func (l *ProductList) Total() int64                 { return l.total }
func (l *ProductList) Loading() bool                { return l.loading }
func (l *ProductList) Err() error                   { return l.err }

func (l *ProductList) TotalPages() int {
	return utils.TotalPages(l.total, l.filter.Limit)
}

// Load runs the current query. On failure the previous page stays in place and
// the error is kept in Err.
func (l *ProductList) Load(ctx context.Context, src ProductSearcher) error {
	l.loading = true
	defer func() { l.loading = false }()

	items, total, err := src.SearchProducts(ctx, l.filter)
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

func (l *ProductList) ByID(id uuid.UUID) (*models.Product, bool) {
	i, ok := l.index[id]
	if !ok {
		return nil, false
	}
	return &l.items[i], true
}

func (l *ProductList) ByCategory(categoryID uuid.UUID) []models.Product {
	var out []models.Product
	for _, p := range l.items {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

func (l *ProductList) ImagesOf(id uuid.UUID) []models.ProductImage {
	if p, ok := l.ByID(id); ok {
		return p.Images
	}
	return nil
}

// Result is the paginated envelope returned by list endpoints.
func (l *ProductList) Result() utils.PaginationResult {
	return utils.PaginationResult{
		Page:       l.filter.Page,
		Limit:      l.filter.Limit,
		Total:      l.total,
		TotalPages: l.TotalPages(),
		Data:       l.items,
	}
}
