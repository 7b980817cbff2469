// Package inventory owns the stock counters of product_availability and the
// per-center open order counter. Every mutation is a single conditional
// UPDATE executed inside the caller's transaction.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/idoblon/vendorrs-backend/pkg/db"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
)

type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

type Manager struct {
	db  *gorm.DB
	now func() time.Time
}

func NewManager(conn *gorm.DB) *Manager {
	return &Manager{db: conn, now: time.Now}
}

// Reserve moves quantity from free stock into reserved stock for every line
// and counts the order against the center.
func (m *Manager) Reserve(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, lines []Line) error {
	merged, err := mergeLines(lines)
	if err != nil {
		return err
	}
	for _, line := range merged {
		res := m.availability(ctx, tx, line.ProductID, centerID).
			Where("stock - reserved_stock >= ?", line.Quantity).
			Updates(map[string]any{
				"reserved_stock": gorm.Expr("reserved_stock + ?", line.Quantity),
				"last_updated":   m.now().UTC(),
			})
		if res.Error != nil {
			return db.Translate(res.Error, "reserve stock")
		}
		if res.RowsAffected == 0 {
			return m.reservationFailure(ctx, tx, centerID, line)
		}
	}
	return m.IncrementCenterOrders(ctx, tx, centerID)
}

// Commit turns a reservation into a physical stock decrement.
func (m *Manager) Commit(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, lines []Line) error {
	merged, err := mergeLines(lines)
	if err != nil {
		return err
	}
	for _, line := range merged {
		res := m.availability(ctx, tx, line.ProductID, centerID).
			Where("reserved_stock >= ? AND stock >= ?", line.Quantity, line.Quantity).
			Updates(map[string]any{
				"stock":          gorm.Expr("stock - ?", line.Quantity),
				"reserved_stock": gorm.Expr("reserved_stock - ?", line.Quantity),
				"last_updated":   m.now().UTC(),
			})
		if res.Error != nil {
			return db.Translate(res.Error, "commit stock")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation no longer covers committed quantity").
				WithDetails(lineDetails(centerID, line))
		}
	}
	return nil
}

// Release returns reserved quantity to free stock and uncounts the order.
func (m *Manager) Release(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, lines []Line) error {
	merged, err := mergeLines(lines)
	if err != nil {
		return err
	}
	for _, line := range merged {
		res := m.availability(ctx, tx, line.ProductID, centerID).
			Where("reserved_stock >= ?", line.Quantity).
			Updates(map[string]any{
				"reserved_stock": gorm.Expr("reserved_stock - ?", line.Quantity),
				"last_updated":   m.now().UTC(),
			})
		if res.Error != nil {
			return db.Translate(res.Error, "release stock")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reserved stock lower than released quantity").
				WithDetails(lineDetails(centerID, line))
		}
	}
	return m.DecrementCenterOrders(ctx, tx, centerID)
}

// Restock puts committed quantity back on the shelf and uncounts the order.
func (m *Manager) Restock(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, lines []Line) error {
	merged, err := mergeLines(lines)
	if err != nil {
		return err
	}
	for _, line := range merged {
		res := m.availability(ctx, tx, line.ProductID, centerID).
			Updates(map[string]any{
				"stock":        gorm.Expr("stock + ?", line.Quantity),
				"last_updated": m.now().UTC(),
			})
		if res.Error != nil {
			return db.Translate(res.Error, "restock")
		}
		if res.RowsAffected == 0 {
			return notStocked(centerID, line.ProductID)
		}
	}
	return m.DecrementCenterOrders(ctx, tx, centerID)
}

// Finalize closes a delivered order; stock was already committed.
func (m *Manager) Finalize(ctx context.Context, tx *gorm.DB, centerID uuid.UUID) error {
	return m.DecrementCenterOrders(ctx, tx, centerID)
}

func (m *Manager) IncrementCenterOrders(ctx context.Context, tx *gorm.DB, centerID uuid.UUID) error {
	res := tx.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", centerID, enums.UserRoleCenter).
		Update("operational_current_orders", gorm.Expr("operational_current_orders + 1"))
	if res.Error != nil {
		return db.Translate(res.Error, "increment center orders")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "center not found")
	}
	return nil
}

// DecrementCenterOrders never drives the counter below zero; a counter that
// is already zero is left untouched.
func (m *Manager) DecrementCenterOrders(ctx context.Context, tx *gorm.DB, centerID uuid.UUID) error {
	res := tx.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND operational_current_orders > 0", centerID).
		Update("operational_current_orders", gorm.Expr("operational_current_orders - 1"))
	if res.Error != nil {
		return db.Translate(res.Error, "decrement center orders")
	}
	return nil
}

// Availability reads the current counters outside of any transaction.
func (m *Manager) Availability(ctx context.Context, productID, centerID uuid.UUID) (*models.ProductAvailability, error) {
	var row models.ProductAvailability
	err := m.db.WithContext(ctx).
		Where("product_id = ? AND center_id = ?", productID, centerID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notStocked(centerID, productID)
		}
		return nil, db.Translate(err, "load availability")
	}
	return &row, nil
}

func (m *Manager) availability(ctx context.Context, tx *gorm.DB, productID, centerID uuid.UUID) *gorm.DB {
	return tx.WithContext(ctx).
		Model(&models.ProductAvailability{}).
		Where("product_id = ? AND center_id = ?", productID, centerID)
}

func (m *Manager) reservationFailure(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, line Line) error {
	var row models.ProductAvailability
	err := tx.WithContext(ctx).
		Where("product_id = ? AND center_id = ?", line.ProductID, centerID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notStocked(centerID, line.ProductID)
		}
		return db.Translate(err, "load availability")
	}

	available := row.Stock - row.ReservedStock
	if available < 0 {
		available = 0
	}
	details := lineDetails(centerID, line)
	details["available"] = available
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", line.ProductID, line.Quantity, available)).
		WithDetails(details)
}

// mergeLines sums quantities per product and orders the result by product id
// so concurrent reservations touch rows in the same order.
func mergeLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	totals := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"productId": line.ProductID.String()})
		}
		totals[line.ProductID] += line.Quantity
	}

	merged := make([]Line, 0, len(totals))
	for productID, qty := range totals {
		merged = append(merged, Line{ProductID: productID, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ProductID.String() < merged[j].ProductID.String()
	})
	return merged, nil
}

func lineDetails(centerID uuid.UUID, line Line) map[string]any {
	return map[string]any{
		"productId": line.ProductID.String(),
		"centerId":  centerID.String(),
		"requested": line.Quantity,
	}
}

func notStocked(centerID, productID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "product not stocked at center").
		WithDetails(map[string]any{"productId": productID.String(), "centerId": centerID.String()})
}
