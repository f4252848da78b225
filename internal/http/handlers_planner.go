package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"budgetly/internal/budget"
	"budgetly/internal/core"
	"budgetly/internal/log"
)

type categoryLimitRequest struct {
	Name  string      `json:"name"`
	Limit json.Number `json:"limit"`
}

type plannerRequest struct {
	InitialAmount json.Number            `json:"initialAmount"`
	StartDate     string                 `json:"startDate"`
	EndDate       string                 `json:"endDate"`
	Categories    []categoryLimitRequest `json:"categories"`
}

type categoryLimitResponse struct {
	Name  string  `json:"name"`
	Limit float64 `json:"limit"`
}

type plannerResponse struct {
	InitialAmount float64                 `json:"initialAmount"`
	StartDate     string                  `json:"startDate"`
	EndDate       string                  `json:"endDate"`
	Categories    []categoryLimitResponse `json:"categories"`
}

type categoryProgressResponse struct {
	Limit float64 `json:"limit"`
	Spent float64 `json:"spent"`
}

type progressResponse struct {
	Categories    map[string]categoryProgressResponse `json:"categories"`
	Notifications []string                            `json:"notifications"`
}

func (s *Server) handleUpsertPlanner(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	var req plannerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	plan, err := req.toPlan(owner)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	if err := s.plans.UpsertPlan(r.Context(), plan); err != nil {
		if isValidationError(err) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Planner upsert failed",
			log.FieldOwner, owner,
			log.FieldError, err)
		InternalServerError("could not save planner").Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Payload(toPlannerResponse(plan)).Write(w)
}

func (s *Server) handleGetPlanner(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	plan, err := s.plans.ActivePlan(r.Context(), owner)
	if err != nil {
		if errors.Is(err, budget.ErrNoActivePlan) {
			NotFoundError(budget.ErrNoActivePlan.Error()).Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Planner lookup failed",
			log.FieldOwner, owner,
			log.FieldError, err)
		InternalServerError("could not load planner").Write(w)
		return
	}

	NewJSONResponse().Payload(toPlannerResponse(plan)).Write(w)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())

	report, err := s.progress.Report(r.Context(), owner, core.Today())
	if err != nil {
		if errors.Is(err, budget.ErrNoActivePlan) {
			NotFoundError(budget.ErrNoActivePlan.Error()).Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Progress report failed",
			log.FieldOwner, owner,
			log.FieldError, err)
		InternalServerError("could not compute progress").Write(w)
		return
	}

	resp := progressResponse{
		Categories:    make(map[string]categoryProgressResponse, len(report.Categories)),
		Notifications: report.Notifications,
	}
	for name, totals := range report.Categories {
		resp.Categories[name] = categoryProgressResponse{
			Limit: totals.Limit.Decimal(),
			Spent: totals.Spent.Decimal(),
		}
	}

	NewJSONResponse().Payload(resp).Write(w)
}

func (r plannerRequest) toPlan(owner string) (core.Plan, error) {
	plan := core.Plan{Owner: owner}

	amount, err := parseAmount(r.InitialAmount)
	if err != nil {
		return core.Plan{}, err
	}
	plan.InitialAmount = amount

	if plan.StartDate, err = parseDateField(r.StartDate); err != nil {
		return core.Plan{}, errors.New("invalid start date, expected YYYY-MM-DD")
	}
	if plan.EndDate, err = parseDateField(r.EndDate); err != nil {
		return core.Plan{}, errors.New("invalid end date, expected YYYY-MM-DD")
	}

	for _, cl := range r.Categories {
		limit, err := parseLimit(cl.Limit)
		if err != nil {
			return core.Plan{}, err
		}
		plan.Categories = append(plan.Categories, core.CategoryLimit{
			Name:  strings.TrimSpace(cl.Name),
			Limit: limit,
		})
	}

	return plan, nil
}

// parseAmount converts a JSON amount to Money. Empty means absent; validation
// reports the specific missing field.
func parseAmount(n json.Number) (core.Money, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return core.Money{}, nil
	}
	return core.FromDecimal(s)
}

// parseLimit is parseAmount with zero allowed: a zero limit means the
// category is tracked but never alerted on.
func parseLimit(n json.Number) (core.Money, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return core.Money{}, nil
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		return core.Money{}, nil
	}
	if strings.HasPrefix(s, "-") {
		return core.Money{}, core.ErrNegativeLimit
	}
	return core.FromDecimal(s)
}

func parseDateField(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func toPlannerResponse(p core.Plan) plannerResponse {
	resp := plannerResponse{
		InitialAmount: p.InitialAmount.Decimal(),
		StartDate:     p.StartDate.String(),
		EndDate:       p.EndDate.String(),
		Categories:    make([]categoryLimitResponse, 0, len(p.Categories)),
	}
	for _, cl := range p.Categories {
		resp.Categories = append(resp.Categories, categoryLimitResponse{
			Name:  cl.Name,
			Limit: cl.Limit.Decimal(),
		})
	}
	return resp
}

// isValidationError reports whether err is one of the domain validation
// sentinels that map to a 422.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrMissingInitialAmount,
		core.ErrMissingStartDate,
		core.ErrMissingEndDate,
		core.ErrEmptyCategoryList,
		core.ErrUnknownCategory,
		core.ErrNegativeLimit,
		core.ErrDateOrder,
		core.ErrEmptyTitle,
		core.ErrEmptyCategory,
		core.ErrInvalidKind,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
