// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeCurrency FieldType = "currency"
	FieldTypeDate     FieldType = "date"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeImage    FieldType = "image"
	FieldTypeIframe   FieldType = "iframe"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeCurrency,
		FieldTypeDate, FieldTypeBoolean, FieldTypeImage, FieldTypeIframe:
		return true
	}
	return false
}

// IsAsset reports whether values of this type are managed as uploaded assets
// rather than stored in the dynamic attribute document.
func (t FieldType) IsAsset() bool {
	return t == FieldTypeImage || t == FieldTypeIframe
}

type AssetKind string

const (
	AssetKindImage AssetKind = "image"
	AssetKindVideo AssetKind = "video"
	AssetKindPDF   AssetKind = "pdf"
)

type VideoProvider string

const (
	VideoProviderUpload   VideoProvider = "upload"
	VideoProviderYouTube  VideoProvider = "youtube"
	VideoProviderVimeo    VideoProvider = "vimeo"
	VideoProviderExternal VideoProvider = "external"
)
