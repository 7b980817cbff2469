package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/idoblon/vendorrs-backend/pkg/logger"
)

const slowQueryThreshold = 250 * time.Millisecond

// queryLogger forwards slow statements and driver failures to the service
// logger. Record-not-found is an expected outcome and stays quiet.
type queryLogger struct {
	logg *logger.Logger
}

func newQueryLogger(logg *logger.Logger) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return queryLogger{logg: logg}
}

func (q queryLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return q }

func (q queryLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	q.logg.Debug(ctx, fmt.Sprintf(msg, args...))
}

func (q queryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	q.logg.Warn(ctx, fmt.Sprintf(msg, args...))
}

func (q queryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	q.logg.Error(ctx, "gorm", fmt.Errorf(msg, args...))
}

func (q queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	if err == nil && elapsed < slowQueryThreshold {
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	statement, rows := fc()
	fields := q.logg.WithFields(ctx, map[string]any{
		"sql":         statement,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		q.logg.Error(fields, "db query failed", err)
		return
	}
	q.logg.Warn(fields, "slow db query")
}
