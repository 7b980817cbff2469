package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

// Window bounds the order creation time considered by a ranking. Nil ends
// are open.
type Window struct {
	From *time.Time
	To   *time.Time
}

// Store loads ranking inputs.
type Store interface {
	RevenueOrders(ctx context.Context, window Window) ([]OrderFact, error)
	Centers(ctx context.Context) ([]Center, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

type orderFactRow struct {
	ID               uuid.UUID
	CenterID         uuid.UUID
	TotalAmount      decimal.Decimal
	CommissionAmount decimal.Decimal
	Units            int
}

// RevenueOrders returns active orders in revenue bearing statuses with the
// unit count summed from their items.
func (s *gormStore) RevenueOrders(ctx context.Context, window Window) ([]OrderFact, error) {
	query := s.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.id, o.center_id, o.total_amount, o.commission_amount, COALESCE(SUM(oi.quantity), 0) AS units").
		Joins("LEFT JOIN order_items AS oi ON oi.order_id = o.id").
		Where("o.is_active = ?", true).
		Where("o.status IN ?", RevenueBearingStatuses)
	if window.From != nil {
		query = query.Where("o.created_at >= ?", window.From.UTC())
	}
	if window.To != nil {
		query = query.Where("o.created_at < ?", window.To.UTC())
	}

	var rows []orderFactRow
	err := query.
		Group("o.id, o.center_id, o.total_amount, o.commission_amount").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	facts := make([]OrderFact, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, OrderFact{
			OrderID:          row.ID,
			CenterID:         row.CenterID,
			TotalAmount:      row.TotalAmount,
			CommissionAmount: row.CommissionAmount,
			Units:            row.Units,
		})
	}
	return facts, nil
}

func (s *gormStore) Centers(ctx context.Context) ([]Center, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", enums.UserRoleCenter, true).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	centers := make([]Center, 0, len(users))
	for _, user := range users {
		centers = append(centers, Center{
			ID:       user.ID,
			Name:     user.Name,
			Location: user.Location,
			District: user.District,
		})
	}
	return centers, nil
}
