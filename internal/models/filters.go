// internal/models/filters.go
package models

import "github.com/google/uuid"

// ProductFilter selects a page of products. Nil pointers and empty values
// leave the corresponding criterion out.
type ProductFilter struct {
	CategoryID     *uuid.UUID
	SubcategoryIDs []uuid.UUID
	Condition      string
	PriceMin       *float64
	PriceMax       *float64
	Search         string
	Dynamic        map[string]string
	Active         *bool
	Featured       *bool
	Sort           string
	Order          string
	Page           int
	Limit          int
}

type ReviewFilter struct {
	Search   string
	Rating   int
	City     string
	Province string
	Active   *bool
	Sort     string
	Order    string
	Page     int
	Limit    int
}

// Sort fields accepted from callers; anything else falls back to created_at.
var (
	ProductSortFields = []string{"created_at", "updated_at", "title", "price", "brand", "condition"}
	ReviewSortFields  = []string{"created_at", "rating", "author", "city", "province"}
)
