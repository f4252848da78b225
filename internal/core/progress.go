package core

// CategoryTotals is the derived {limit, spent} pair for one plan category.
type CategoryTotals struct {
	Limit Money
	Spent Money
}

// Progress maps category name to its derived totals. It is rebuilt on every
// request and never persisted.
type Progress map[string]CategoryTotals

// ProgressReport is the combined payload a progress query returns.
type ProgressReport struct {
	Categories    Progress
	Order         []string
	Notifications []string
}

// ComputeProgress merges a plan's limits with aggregated expense spend.
//
// Every category the plan declares gets an entry, seeded with spent = 0 and
// then overwritten by the aggregate value when one exists. The aggregation is
// expected to already hold one summed value per category, restricted to
// expenses inside the plan window; spend for categories the plan does not
// declare is dropped. Pure function, no error paths.
func ComputeProgress(p Plan, spendByCategory map[string]Money) Progress {
	progress := make(Progress, len(p.Categories))
	for _, cl := range p.Categories {
		progress[cl.Name] = CategoryTotals{Limit: cl.Limit}
	}
	for name, spent := range spendByCategory {
		totals, ok := progress[name]
		if !ok {
			continue
		}
		totals.Spent = spent
		progress[name] = totals
	}
	return progress
}

// PercentSpent returns spent/limit as a percentage. Callers must guard
// limit = 0 themselves; the thresholds skip such categories entirely.
func PercentSpent(spent, limit Money) float64 {
	return float64(spent.Cents) / float64(limit.Cents) * 100
}
