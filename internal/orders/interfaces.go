package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/idoblon/vendorrs-backend/internal/inventory"
	"github.com/idoblon/vendorrs-backend/internal/pricing"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
	"github.com/idoblon/vendorrs-backend/pkg/outbox"
	"github.com/idoblon/vendorrs-backend/pkg/pagination"
)

// Repository defines persistence operations for the order tables and the
// participant/catalog reads order creation depends on.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, error)
	CompareAndSwapStatus(ctx context.Context, swap StatusSwap) (bool, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	FindProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error)
}

// InventoryManager is the stock surface order workflows drive.
type InventoryManager interface {
	Reserve(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, lines []inventory.Line) error
	Commit(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, lines []inventory.Line) error
	Release(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, lines []inventory.Line) error
	Restock(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, lines []inventory.Line) error
	Finalize(ctx context.Context, tx *gorm.DB, centerID uuid.UUID) error
	DecrementCenterOrders(ctx context.Context, tx *gorm.DB, centerID uuid.UUID) error
}

type Pricer interface {
	Calculate(input pricing.Input) (pricing.Summary, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StatusSwap describes a compare-and-swap status write. Extra columns are
// applied only when the swap wins.
type StatusSwap struct {
	OrderID         uuid.UUID
	ExpectedStatus  enums.OrderStatus
	ExpectedVersion int
	NewStatus       enums.OrderStatus
	Extra           map[string]any
}

// ListFilters narrow order listings. Nil fields are not applied.
type ListFilters struct {
	VendorID        *uuid.UUID
	CenterID        *uuid.UUID
	Status          *enums.OrderStatus
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	IncludeInactive bool
}
