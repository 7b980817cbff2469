package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

// OrderStatusHistory is an append-only audit row written for every status change.
type OrderStatusHistory struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	UpdatedBy uuid.UUID         `gorm:"column:updated_by;type:uuid;not null"`
	Notes     *string           `gorm:"column:notes"`
	ChangedAt time.Time         `gorm:"column:changed_at;not null"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
