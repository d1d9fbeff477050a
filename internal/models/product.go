// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Product struct {
	BaseModel
	CategoryID        uuid.UUID                  `json:"category_id" gorm:"type:uuid;not null;index"`
	SubcategoryID     *uuid.UUID                 `json:"subcategory_id" gorm:"type:uuid;index"`
	Title             string                     `json:"title" gorm:"size:255;not null"`
	Brand             string                     `json:"brand" gorm:"size:120"`
	Condition         string                     `json:"condition" gorm:"size:50;index"`
	Model             string                     `json:"model" gorm:"size:120"`
	ShortDescription  string                     `json:"short_description" gorm:"type:text"`
	Price             float64                    `json:"price" gorm:"type:decimal(15,2);not null;default:0;index"`
	DynamicAttributes JSONB                      `json:"dynamic_attributes" gorm:"type:jsonb"`
	Slug              string                     `json:"slug" gorm:"size:255;not null"`
	Videos            datatypes.JSONSlice[Video] `json:"videos" gorm:"type:jsonb"`
	PDFPath           *string                    `json:"pdf_path" gorm:"size:500"`
	PDFURL            string                     `json:"pdf_url,omitempty" gorm:"-"`
	Active            bool                       `json:"active" gorm:"default:true;index"`
	Featured          bool                       `json:"featured" gorm:"default:false;index"`

	// Relationships
	Category    *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Subcategory *Subcategory   `json:"subcategory,omitempty" gorm:"foreignKey:SubcategoryID"`
	Images      []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID"`
}

// ProductImage is one stored image of a product. Position is 1-based and
// contiguous per product; the image at position 1 is the principal one.
type ProductImage struct {
	BaseModel
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	StoragePath string    `json:"storage_path" gorm:"size:500;not null"`
	BucketName  string    `json:"bucket_name" gorm:"size:100;not null"`
	Filename    string    `json:"filename" gorm:"size:255;not null"`
	FileSize    int64     `json:"file_size"`
	MimeType    string    `json:"mime_type" gorm:"size:50"`
	Position    int       `json:"orden" gorm:"column:orden;not null;default:1"`
	Principal   bool      `json:"es_principal" gorm:"column:es_principal;default:false"`
	PublicURL   string    `json:"public_url,omitempty" gorm:"-"`
}

// Video is freeform metadata kept in the product's videos document.
type Video struct {
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	StoragePath string        `json:"storage_path,omitempty"`
	Provider    VideoProvider `json:"provider,omitempty"`
	MimeType    string        `json:"mime_type,omitempty"`
	FileSize    int64         `json:"file_size,omitempty"`
}

func (v Video) IsUploaded() bool {
	return v.StoragePath != ""
}

func (p *Product) PrincipalImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].Principal {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}
