package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

// User is a marketplace participant. Centers additionally track the number
// of non-terminal orders placed with them.
type User struct {
	ID                       uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Role                     enums.UserRole `gorm:"column:role;type:text;not null;index"`
	Name                     string         `gorm:"column:name;not null"`
	Email                    string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	District                 string         `gorm:"column:district"`
	Province                 string         `gorm:"column:province"`
	Location                 string         `gorm:"column:location"`
	IsActive                 bool           `gorm:"column:is_active;not null"`
	OperationalCurrentOrders int            `gorm:"column:operational_current_orders;not null;default:0;check:chk_users_current_orders,operational_current_orders >= 0"`
	CreatedAt                time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
