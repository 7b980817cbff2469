package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry; per-center stock lives in Availability.
type Product struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name         string                `gorm:"column:name;not null"`
	SKU          string                `gorm:"column:sku;not null;uniqueIndex"`
	Category     string                `gorm:"column:category;not null"`
	Price        decimal.Decimal       `gorm:"column:price;type:numeric(14,2);not null"`
	IsActive     bool                  `gorm:"column:is_active;not null"`
	Availability []ProductAvailability `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductAvailability holds the stock counters of one product at one center.
// Only the inventory package mutates Stock and ReservedStock.
type ProductAvailability struct {
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	CenterID      uuid.UUID `gorm:"column:center_id;type:uuid;primaryKey"`
	Stock         int       `gorm:"column:stock;not null;check:chk_availability_stock,stock >= 0"`
	ReservedStock int       `gorm:"column:reserved_stock;not null;check:chk_availability_reserved,reserved_stock >= 0"`
	LastUpdated   time.Time `gorm:"column:last_updated;not null"`
}

func (ProductAvailability) TableName() string { return "product_availability" }
