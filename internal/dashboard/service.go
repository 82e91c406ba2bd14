package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/greenshield-crm/greenshield-crm/internal/jobcards"
	"github.com/greenshield-crm/greenshield-crm/internal/renewals"
)

const overviewCacheKey = "dashboard:overview"

// CountsPort reads the overview row counts.
type CountsPort interface {
	Counts(ctx context.Context) (Counts, error)
}

// JobCardStats exposes the job card portfolio aggregates.
type JobCardStats interface {
	Statistics(ctx context.Context) (jobcards.Statistics, error)
}

// RenewalSummary exposes the upcoming-renewal aggregates.
type RenewalSummary interface {
	UpcomingSummary(ctx context.Context, includePaused bool) (renewals.UpcomingSummary, error)
}

// Service assembles the overview. The composed payload is cached whole
// under a short TTL; staleness up to the TTL is acceptable here.
type Service struct {
	counts   CountsPort
	jobCards JobCardStats
	renewals RenewalSummary
	redis    *redis.Client
	ttl      time.Duration
}

// NewService builds Service instance. redis may be nil to disable caching.
func NewService(counts CountsPort, jobCards JobCardStats, summary RenewalSummary, client *redis.Client, ttl time.Duration) *Service {
	return &Service{
		counts:   counts,
		jobCards: jobCards,
		renewals: summary,
		redis:    client,
		ttl:      ttl,
	}
}

// Overview returns the assembled dashboard payload.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, overviewCacheKey).Bytes()
		if err == nil {
			var cached Overview
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	overview, err := s.compose(ctx)
	if err != nil {
		return Overview{}, err
	}

	if s.redis != nil {
		if encoded, err := json.Marshal(overview); err == nil {
			_ = s.redis.Set(ctx, overviewCacheKey, encoded, s.ttl).Err()
		}
	}
	return overview, nil
}

func (s *Service) compose(ctx context.Context) (Overview, error) {
	counts, err := s.counts.Counts(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("dashboard counts: %w", err)
	}
	stats, err := s.jobCards.Statistics(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("job card statistics: %w", err)
	}
	summary, err := s.renewals.UpcomingSummary(ctx, false)
	if err != nil {
		return Overview{}, fmt.Errorf("renewal summary: %w", err)
	}
	return Overview{Counts: counts, JobCards: stats, Renewals: summary}, nil
}
