//go:build integration

package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	entrymodels "smartsave/internal/entry/models"
	"smartsave/internal/entry/service"
	goalservice "smartsave/internal/goal/service"
	"smartsave/internal/storage"
	"smartsave/pkg/testutil/containers"
)

// StatsCacheSuite runs the statistics path against a real Redis to cover
// the cache round trip and write invalidation.
type StatsCacheSuite struct {
	suite.Suite
	ctx     context.Context
	redis   *containers.RedisContainer
	mem     *storage.InMemory
	service *service.Service
	userID  int64
}

func TestStatsCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(StatsCacheSuite))
}

func (s *StatsCacheSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *StatsCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.mem = storage.NewInMemory()
	s.userID = 1

	goals := goalservice.New(s.mem.Goals(), logger, nil, nil)
	s.service = service.New(s.mem.Entries(), goals, s.redis.Client, logger, nil, nil)
}

func (s *StatsCacheSuite) addEntry(amount int64) {
	_, err := s.service.Create(s.ctx, s.userID, service.CreateParams{
		Amount: decimal.NewFromInt(amount),
	})
	s.Require().NoError(err)
}

func (s *StatsCacheSuite) TestStatsAreCachedPerPeriod() {
	s.addEntry(100)
	s.addEntry(50)

	stats, err := s.service.Stats(s.ctx, s.userID, service.PeriodMonth)
	s.Require().NoError(err)
	s.Equal(2, stats.General.TotalEntries)
	s.InDelta(150.0, stats.General.TotalAmount, 0.001)

	// The computed result must now live under the period-scoped key.
	raw, err := s.redis.Client.Get(s.ctx, "stats:1:month").Bytes()
	s.Require().NoError(err)
	s.Contains(string(raw), `"total_entries":2`)

	ttl, err := s.redis.Client.TTL(s.ctx, "stats:1:month").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)

	// A different period computes and caches independently.
	_, err = s.service.Stats(s.ctx, s.userID, service.PeriodYear)
	s.Require().NoError(err)
	s.Require().NoError(s.redis.Client.Get(s.ctx, "stats:1:year").Err())
}

func (s *StatsCacheSuite) TestCachedStatsServedUntilInvalidated() {
	s.addEntry(100)

	first, err := s.service.Stats(s.ctx, s.userID, service.PeriodMonth)
	s.Require().NoError(err)
	s.Equal(1, first.General.TotalEntries)

	// Writing behind the service leaves the cache stale, so the cached
	// snapshot is what gets served.
	err = s.mem.Entries().Create(s.ctx, &entrymodels.Entry{
		UserID:    s.userID,
		Amount:    decimal.NewFromInt(999),
		EntryDate: time.Now().UTC(),
	})
	s.Require().NoError(err)

	stale, err := s.service.Stats(s.ctx, s.userID, service.PeriodMonth)
	s.Require().NoError(err)
	s.Equal(1, stale.General.TotalEntries)

	// A write through the service drops every period key.
	s.addEntry(25)

	err = s.redis.Client.Get(s.ctx, "stats:1:month").Err()
	s.ErrorIs(err, redis.Nil)

	fresh, err := s.service.Stats(s.ctx, s.userID, service.PeriodMonth)
	s.Require().NoError(err)
	s.Equal(3, fresh.General.TotalEntries)
	s.InDelta(1124.0, fresh.General.TotalAmount, 0.001)
}

func (s *StatsCacheSuite) TestMalformedCacheEntryIsRecomputed() {
	s.addEntry(100)

	s.Require().NoError(s.redis.Client.Set(s.ctx, "stats:1:month", "{not json", time.Minute).Err())

	stats, err := s.service.Stats(s.ctx, s.userID, service.PeriodMonth)
	s.Require().NoError(err)
	s.Equal(1, stats.General.TotalEntries)
}
