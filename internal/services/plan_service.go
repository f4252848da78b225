// Package services orchestrates planner operations across storage, AMQP and
// the progress cache.
package services

import (
	"context"
	"fmt"

	"budgetly/internal/budget"
	"budgetly/internal/core"
	"budgetly/internal/log"
)

// ProgressInvalidator drops any cached progress for an owner. Implemented by
// ProgressService; optional for tests.
type ProgressInvalidator interface {
	Invalidate(owner string)
}

// PlanService validates and persists planners.
type PlanService struct {
	repo        budget.PlanRepository
	invalidator ProgressInvalidator
	logger      *log.Logger
}

func NewPlanService(repo budget.PlanRepository, invalidator ProgressInvalidator, logger *log.Logger) *PlanService {
	return &PlanService{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentPlanner),
	}
}

// UpsertPlan validates the plan and replaces the owner's existing one.
// Validation errors wrap the core sentinel for the first missing field.
func (s *PlanService) UpsertPlan(ctx context.Context, p core.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpsertPlan(ctx, p); err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(p.Owner)
	}

	s.logger.InfoContext(ctx, "Planner saved",
		log.FieldOwner, p.Owner,
		log.FieldOperation, log.OpUpsert,
		log.FieldPlanStart, p.StartDate.String(),
		log.FieldPlanEnd, p.EndDate.String(),
		"categories", len(p.Categories))
	return nil
}

// ActivePlan returns the owner's plan whose window contains today, or
// budget.ErrNoActivePlan.
func (s *PlanService) ActivePlan(ctx context.Context, owner string) (core.Plan, error) {
	return s.repo.FindActivePlan(ctx, owner, core.Today())
}
