// internal/models/review.go
package models

type Review struct {
	BaseModel
	Author           string `json:"author" gorm:"size:120;not null"`
	Title            string `json:"title" gorm:"size:255;not null"`
	Comment          string `json:"comment" gorm:"type:text;not null"`
	Rating           int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5;index"`
	City             string `json:"city" gorm:"size:120;index"`
	Province         string `json:"province" gorm:"size:120;index"`
	ImageURL         string `json:"image_url" gorm:"size:1000"`
	ImageStoragePath string `json:"image_storage_path" gorm:"size:500"`
	Active           bool   `json:"active" gorm:"default:true;index"`
}
