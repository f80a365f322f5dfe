package metricssrv

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/linearflow/linearflow/pkg/errx"
	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/pkg/logx"
	"github.com/linearflow/linearflow/tracker/metrics"
	"github.com/linearflow/linearflow/tracker/record"
)

// DashboardSummary is the full set of dashboard figures for one user
type DashboardSummary struct {
	Total         int                  `json:"total"`
	Active        int                  `json:"active"`
	Interviewing  int                  `json:"interviewing"`
	Offers        int                  `json:"offers"`
	Rejected      int                  `json:"rejected"`
	RejectionRate int                  `json:"rejection_rate"`
	Distribution  []metrics.StageCount `json:"distribution"`
	Monthly       []metrics.MonthCount `json:"monthly"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// DashboardService folds a user's records into dashboard figures,
// caching the result in Redis until the next mutation invalidates it
type DashboardService struct {
	recordRepo   record.Repository
	cache        *redis.Client
	cacheTTL     time.Duration
	windowMonths int
}

// NewDashboardService creates the dashboard service. cache may be nil,
// in which case every request recomputes.
func NewDashboardService(recordRepo record.Repository, cache *redis.Client, cacheTTL time.Duration, windowMonths int) *DashboardService {
	if windowMonths <= 0 {
		windowMonths = 6
	}
	return &DashboardService{
		recordRepo:   recordRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		windowMonths: windowMonths,
	}
}

func cacheKey(owner kernel.UserID) string {
	return "metrics:dashboard:" + owner.String()
}

// GetDashboard returns the owner's dashboard, from cache when possible
func (s *DashboardService) GetDashboard(ctx context.Context, owner kernel.UserID) (*DashboardSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey(owner)).Result(); err == nil {
			var summary DashboardSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
			// Unreadable cache entries are dropped, not fatal
			s.cache.Del(ctx, cacheKey(owner))
		} else if err != redis.Nil {
			logx.Warnf("dashboard cache read failed for %s: %v", owner, err)
		}
	}

	records, err := s.recordRepo.ListAllByOwner(ctx, owner)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load records for dashboard", errx.TypeInternal)
	}

	summary := s.compute(records)

	if s.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey(owner), data, s.cacheTTL).Err(); err != nil {
				logx.Warnf("dashboard cache write failed for %s: %v", owner, err)
			}
		}
	}

	return summary, nil
}

// Invalidate drops the owner's cached dashboard after a mutation
func (s *DashboardService) Invalidate(ctx context.Context, owner kernel.UserID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(owner)).Err(); err != nil {
		logx.Warnf("dashboard cache invalidation failed for %s: %v", owner, err)
	}
}

func (s *DashboardService) compute(records []record.Record) *DashboardSummary {
	return &DashboardSummary{
		Total: metrics.CountTotal(records),
		Active: metrics.CountByStages(records,
			record.StageWishlist,
			record.StageApplied,
			record.StageRecruiterScreen,
			record.StageTechnicalInterview,
			record.StageFinalRound,
		),
		Interviewing: metrics.CountByStages(records,
			record.StageRecruiterScreen,
			record.StageTechnicalInterview,
			record.StageFinalRound,
		),
		Offers:        metrics.CountByStages(records, record.StageOffer),
		Rejected:      metrics.CountByStages(records, record.StageRejected),
		RejectionRate: metrics.RejectionRate(records),
		Distribution:  metrics.StatusDistribution(records),
		Monthly:       metrics.MonthlyApplicationCounts(records, s.windowMonths),
		GeneratedAt:   time.Now(),
	}
}
