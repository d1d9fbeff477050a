// internal/models/issue.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ReconciliationIssue records a compensation that could not be completed, leaving
// storage objects or records that an operator has to clean up by hand.
type ReconciliationIssue struct {
	BaseModel
	EntityType string         `json:"entity_type" gorm:"size:50;not null;index"`
	EntityID   uuid.UUID      `json:"entity_id" gorm:"type:uuid;not null;index"`
	Operation  string         `json:"operation" gorm:"size:100;not null"`
	Bucket     string         `json:"bucket" gorm:"size:100"`
	Paths      pq.StringArray `json:"paths" gorm:"type:text[]"`
	RecordIDs  pq.StringArray `json:"record_ids" gorm:"type:text[]"`
	Error      string         `json:"error" gorm:"type:text;not null"`
	Details    JSONB          `json:"details" gorm:"type:jsonb"`
	Resolved   bool           `json:"resolved" gorm:"default:false;index"`
	ResolvedAt *time.Time     `json:"resolved_at"`
}
