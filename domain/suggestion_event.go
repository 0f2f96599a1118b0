package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SuggestionEvent is the persisted record of one served suggestion list,
// plus the feedback events clients report against it.
type SuggestionEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Feature     string    `gorm:"column:feature;not null" json:"feature"`
	CustomerID  uint64    `gorm:"column:customer_id" json:"customer_id"`
	Fingerprint string    `gorm:"column:fingerprint;type:text" json:"fingerprint"`
	EventType   string    `gorm:"column:event_type;not null" json:"event_type"` // served | impression | click | conversion
	ProductID   uint64    `gorm:"column:product_id" json:"product_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Context datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
	Items   datatypes.JSONMap `gorm:"column:items;type:jsonb" json:"items"`
}

func (SuggestionEvent) TableName() string {
	return "suggestion_events"
}
