package services

import (
	"context"
	"fmt"
	"time"

	"budgetly/internal/budget"
	"budgetly/internal/cache"
	"budgetly/internal/core"
	"budgetly/internal/log"
)

const progressCacheSize = 256

// ProgressService derives a ProgressReport from the active plan and the
// expense aggregate, with a short per-owner cache in front.
type ProgressService struct {
	store  budget.Store
	cache  *cache.LRUCache[core.ProgressReport]
	logger *log.Logger
}

var _ ProgressInvalidator = (*ProgressService)(nil)

func NewProgressService(store budget.Store, ttl time.Duration, logger *log.Logger) *ProgressService {
	return &ProgressService{
		store:  store,
		cache:  cache.NewLRUCache[core.ProgressReport](progressCacheSize, ttl),
		logger: logger.WithComponent(log.ComponentProgress),
	}
}

// Report computes the owner's progress for the plan active at asOf.
// Returns budget.ErrNoActivePlan unchanged when no plan window matches.
func (s *ProgressService) Report(ctx context.Context, owner string, asOf core.Date) (core.ProgressReport, error) {
	key := owner + "|" + asOf.String()
	if report, ok := s.cache.Get(key); ok {
		return report, nil
	}

	plan, err := s.store.FindActivePlan(ctx, owner, asOf)
	if err != nil {
		return core.ProgressReport{}, err
	}

	spend, err := s.store.SumExpensesByCategory(ctx, owner, plan.StartDate, plan.EndDate)
	if err != nil {
		return core.ProgressReport{}, fmt.Errorf("aggregate expenses: %w", err)
	}

	report := core.BuildReport(plan, spend)
	s.cache.Set(key, report)

	s.logger.DebugContext(ctx, "Progress report computed",
		log.FieldOwner, owner,
		log.FieldOperation, log.OpReport,
		"categories", len(report.Categories),
		"notifications", len(report.Notifications))
	return report, nil
}

// Invalidate drops the owner's cached reports. Keyed by owner and date, so
// today's entry is enough in practice; drop both adjacent days to be safe
// around midnight.
func (s *ProgressService) Invalidate(owner string) {
	today := core.Today()
	for _, d := range []core.Date{
		{Time: today.AddDate(0, 0, -1)},
		today,
		{Time: today.AddDate(0, 0, 1)},
	} {
		s.cache.Delete(owner + "|" + d.String())
	}
}
