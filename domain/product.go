package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     sku              TEXT,
//     product_name     TEXT,
//     product_category TEXT,
//     normal_price     NUMERIC,
//     sale_price       NUMERIC,
//     margin_pct       NUMERIC,
//     stock_qty        NUMERIC,
//     context_tag      TEXT,
//     tiers            TEXT,
//     industries       TEXT,
//     order_count      INT,
//     created_at       TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	SKU             string    `gorm:"column:sku;type:text"`
	ProductName     string    `gorm:"column:product_name;type:text"`
	ProductCategory string    `gorm:"column:product_category;type:text"`
	NormalPrice     float64   `gorm:"column:normal_price;type:numeric"`
	SalePrice       float64   `gorm:"column:sale_price;type:numeric"`
	MarginPct       float64   `gorm:"column:margin_pct;type:numeric"`
	StockQty        float64   `gorm:"column:stock_qty;type:numeric"`
	ContextTag      string    `gorm:"column:context_tag;type:text"`
	Tiers           string    `gorm:"column:tiers;type:text"`      // comma separated, empty = unrestricted
	Industries      string    `gorm:"column:industries;type:text"` // comma separated, empty = unrestricted
	OrderCount      int       `gorm:"column:order_count"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the sale price when set, else the normal price.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.NormalPrice
}
