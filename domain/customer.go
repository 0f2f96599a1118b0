package domain

import "time"

type Customer struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	CompanyName  string    `gorm:"column:company_name;type:text"`
	Tier         string    `gorm:"column:tier;type:text"`
	Industry     string    `gorm:"column:industry;type:text"`
	TypicalPrice float64   `gorm:"column:typical_price;type:numeric"` // rolling average order line price
	Preferences  string    `gorm:"column:preferences;type:text"`      // free-text buying preferences
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Customer) TableName() string {
	return "customers"
}
