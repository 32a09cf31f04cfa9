package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"smartsave/internal/entry/models"
	dErrors "smartsave/pkg/domain-errors"
)

// Period is the trailing window statistics are computed over.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

const (
	statsCacheTTL = time.Minute
	// Months covered by the trend, independent of the requested period.
	trendMonths = 6
)

// ParsePeriod maps the query value to a Period, defaulting to month.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "":
		return PeriodMonth, nil
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return Period(raw), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "period must be week, month, quarter or year")
}

// start returns the inclusive lower bound of the trailing window.
func (p Period) start(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodQuarter:
		return now.AddDate(0, -3, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// Stats is the assembled statistics response. It is the cached shape, so
// amounts are already coerced to numbers.
type Stats struct {
	Period       Period                     `json:"period"`
	General      models.GeneralStatsView    `json:"general"`
	ByCategory   []models.CategoryStatView  `json:"by_category"`
	MonthlyTrend []models.MonthlyBucketView `json:"monthly_trend"`
}

// Stats aggregates the user's entries over the trailing period window. The
// three queries run concurrently; results are cached briefly when a cache is
// configured and invalidated on any entry mutation.
func (s *Service) Stats(ctx context.Context, userID int64, period Period) (*Stats, error) {
	ctx, span := tracer.Start(ctx, "entry.Stats")
	defer span.End()

	key := statsCacheKey(userID, period)
	if cached := s.cachedStats(ctx, key); cached != nil {
		s.metrics.IncStatsCacheHits()
		return cached, nil
	}

	now := time.Now().UTC()
	since := period.start(now)
	trendSince := now.AddDate(0, -trendMonths, 0)

	var (
		general    *models.GeneralStats
		categories []*models.CategoryStat
		trend      []*models.MonthlyBucket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		general, err = s.entries.GeneralStats(gctx, userID, since)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.entries.CategoryStats(gctx, userID, since)
		return err
	})
	g.Go(func() error {
		var err error
		trend, err = s.entries.MonthlyTrend(gctx, userID, trendSince)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute statistics")
	}

	stats := &Stats{
		Period:       period,
		General:      general.View(),
		ByCategory:   make([]models.CategoryStatView, 0, len(categories)),
		MonthlyTrend: make([]models.MonthlyBucketView, 0, len(trend)),
	}
	for _, c := range categories {
		stats.ByCategory = append(stats.ByCategory, c.View())
	}
	for _, b := range trend {
		stats.MonthlyTrend = append(stats.MonthlyTrend, b.View())
	}

	s.storeStats(ctx, key, stats)
	return stats, nil
}

func statsCacheKey(userID int64, period Period) string {
	return fmt.Sprintf("stats:%d:%s", userID, period)
}

func (s *Service) cachedStats(ctx context.Context, key string) *Stats {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.WarnContext(ctx, "dropping malformed cached stats", "key", key, "error", err)
		return nil
	}
	return &stats
}

func (s *Service) storeStats(ctx context.Context, key string, stats *Stats) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, statsCacheTTL).Err(); err != nil {
		// Stats still get served; the cache is best effort.
		s.logger.WarnContext(ctx, "failed to cache stats", "key", key, "error", err)
	}
}

// invalidateStats drops all cached periods for the user after a write.
func (s *Service) invalidateStats(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, 4)
	for _, p := range []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear} {
		keys = append(keys, statsCacheKey(userID, p))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached stats", "user_id", userID, "error", err)
	}
}
