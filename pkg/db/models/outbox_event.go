package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

// OutboxEvent is an append-only event row written inside the business
// transaction and drained by the outbox publisher.
type OutboxEvent struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType      enums.OutboxEventType     `gorm:"column:event_type;type:text;not null"`
	AggregateType  enums.OutboxAggregateType `gorm:"column:aggregate_type;type:text;not null"`
	AggregateID    uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null;index"`
	Payload        json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt    *time.Time                `gorm:"column:published_at"`
	AttemptCount   int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError      *string                   `gorm:"column:last_error"`
	DeadLetteredAt *time.Time                `gorm:"column:dead_lettered_at"`
}
