package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/idoblon/vendorrs-backend/pkg/config"
	"github.com/idoblon/vendorrs-backend/pkg/db"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/metrics"
	"github.com/idoblon/vendorrs-backend/pkg/redis"
)

const (
	sourceCache = "cache"
	sourceDB    = "db"
)

// Query selects the ranking size and creation window. K <= 0 means the
// configured default.
type Query struct {
	K      int
	Window Window
}

type Ranking struct {
	K           int                `json:"k"`
	From        *time.Time         `json:"from,omitempty"`
	To          *time.Time         `json:"to,omitempty"`
	Centers     []RevenueAggregate `json:"centers"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Cached      bool               `json:"cached"`
}

type Overview struct {
	TotalRevenue      decimal.Decimal    `json:"totalRevenue"`
	TotalCommission   decimal.Decimal    `json:"totalCommission"`
	OrderCount        int                `json:"orderCount"`
	TotalUnits        int                `json:"totalUnits"`
	AverageOrderValue decimal.Decimal    `json:"averageOrderValue"`
	ActiveCenters     int                `json:"activeCenters"`
	CentersWithOrders int                `json:"centersWithOrders"`
	TopCenters        []RevenueAggregate `json:"topCenters"`
	From              *time.Time         `json:"from,omitempty"`
	To                *time.Time         `json:"to,omitempty"`
	GeneratedAt       time.Time          `json:"generatedAt"`
	Cached            bool               `json:"cached"`
}

type Service interface {
	TopCenters(ctx context.Context, q Query) (*Ranking, error)
	Overview(ctx context.Context, q Query) (*Overview, error)
}

type ServiceParams struct {
	Store   Store
	Cache   redis.Cache
	Config  config.AnalyticsConfig
	Metrics *metrics.OrderMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	store   Store
	cache   redis.Cache
	cfg     config.AnalyticsConfig
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the analytics service. A nil cache disables caching.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, errors.New("analytics store required")
	}
	if params.Config.DefaultTopK <= 0 || params.Config.MaxTopK < params.Config.DefaultTopK {
		return nil, fmt.Errorf("invalid top k bounds default=%d max=%d", params.Config.DefaultTopK, params.Config.MaxTopK)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:   params.Store,
		cache:   params.Cache,
		cfg:     params.Config,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) TopCenters(ctx context.Context, q Query) (*Ranking, error) {
	k, err := s.resolveK(q)
	if err != nil {
		return nil, err
	}
	started := s.now()
	key := s.cacheKey("top", k, q.Window)

	var cached Ranking
	if s.readCache(ctx, key, &cached) {
		cached.Cached = true
		s.metrics.ObserveRanking(sourceCache, s.now().Sub(started))
		return &cached, nil
	}

	records, err := s.aggregate(ctx, q.Window)
	if err != nil {
		return nil, err
	}
	ranking := &Ranking{
		K:           k,
		From:        q.Window.From,
		To:          q.Window.To,
		Centers:     SelectTopK(records, k),
		GeneratedAt: s.now().UTC(),
	}
	s.writeCache(ctx, key, ranking)
	s.metrics.ObserveRanking(sourceDB, s.now().Sub(started))
	return ranking, nil
}

func (s *service) Overview(ctx context.Context, q Query) (*Overview, error) {
	k, err := s.resolveK(q)
	if err != nil {
		return nil, err
	}
	started := s.now()
	key := s.cacheKey("overview", k, q.Window)

	var cached Overview
	if s.readCache(ctx, key, &cached) {
		cached.Cached = true
		s.metrics.ObserveRanking(sourceCache, s.now().Sub(started))
		return &cached, nil
	}

	records, err := s.aggregate(ctx, q.Window)
	if err != nil {
		return nil, err
	}
	overview := &Overview{
		TotalRevenue:      decimal.Zero,
		TotalCommission:   decimal.Zero,
		AverageOrderValue: decimal.Zero,
		ActiveCenters:     len(records),
		TopCenters:        SelectTopK(records, k),
		From:              q.Window.From,
		To:                q.Window.To,
		GeneratedAt:       s.now().UTC(),
	}
	for _, record := range records {
		overview.TotalRevenue = overview.TotalRevenue.Add(record.TotalRevenue)
		overview.TotalCommission = overview.TotalCommission.Add(record.TotalCommission)
		overview.OrderCount += record.OrderCount
		overview.TotalUnits += record.TotalUnits
		if record.OrderCount > 0 {
			overview.CentersWithOrders++
		}
	}
	if overview.OrderCount > 0 {
		overview.AverageOrderValue = overview.TotalRevenue.Div(decimal.NewFromInt(int64(overview.OrderCount))).Round(2)
	}

	s.writeCache(ctx, key, overview)
	s.metrics.ObserveRanking(sourceDB, s.now().Sub(started))
	return overview, nil
}

func (s *service) resolveK(q Query) (int, error) {
	if q.Window.From != nil && q.Window.To != nil && !q.Window.From.Before(*q.Window.To) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	k := q.K
	if k <= 0 {
		k = s.cfg.DefaultTopK
	}
	if k > s.cfg.MaxTopK {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("k must be at most %d", s.cfg.MaxTopK)).
			WithDetails(map[string]any{"field": "k", "max": s.cfg.MaxTopK})
	}
	return k, nil
}

func (s *service) aggregate(ctx context.Context, window Window) ([]RevenueAggregate, error) {
	centers, err := s.store.Centers(ctx)
	if err != nil {
		return nil, db.Translate(err, "load centers")
	}
	orders, err := s.store.RevenueOrders(ctx, window)
	if err != nil {
		return nil, db.Translate(err, "load revenue orders")
	}
	return Aggregate(orders, centers), nil
}

func (s *service) cacheKey(view string, k int, window Window) string {
	if s.cache == nil {
		return ""
	}
	from, to := "-", "-"
	if window.From != nil {
		from = strconv.FormatInt(window.From.UTC().Unix(), 10)
	}
	if window.To != nil {
		to = strconv.FormatInt(window.To.UTC().Unix(), 10)
	}
	return s.cache.RankingKey(view, strconv.Itoa(k), from, to)
}

// readCache treats every cache failure as a miss.
func (s *service) readCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.warn(ctx, key, "ranking cache read failed", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.warn(ctx, key, "ranking cache entry unreadable", err)
		return false
	}
	return true
}

func (s *service) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		s.warn(ctx, key, "ranking cache encode failed", err)
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL); err != nil {
		s.warn(ctx, key, "ranking cache write failed", err)
	}
}

func (s *service) warn(ctx context.Context, key, msg string, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()})
	s.logg.Warn(logCtx, msg)
}
