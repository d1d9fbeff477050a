// internal/models/category.go
package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name      string `json:"name" gorm:"size:120;not null"`
	Icon      string `json:"icon" gorm:"size:50"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`

	// Relationships
	Subcategories []Subcategory   `json:"subcategories,omitempty" gorm:"foreignKey:CategoryID"`
	Fields        []CategoryField `json:"fields,omitempty" gorm:"foreignKey:CategoryID"`
}

type Subcategory struct {
	BaseModel
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	Name       string    `json:"name" gorm:"size:120;not null"`
}

// CategoryField defines one dynamic attribute of the products in a category.
// FieldName is the key used in Product.DynamicAttributes.
type CategoryField struct {
	BaseModel
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	FieldName  string    `json:"field_name" gorm:"size:100;not null"`
	Label      string    `json:"label" gorm:"size:255;not null"`
	Type       FieldType `json:"type" gorm:"type:varchar(20);not null"`
	Required   bool      `json:"required" gorm:"default:false"`
	Position   int       `json:"orden" gorm:"column:orden;default:0"`
}
