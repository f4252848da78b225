package core

import "fmt"

// Fixed alert thresholds, in percent of a category's limit. Not configurable.
const (
	thresholdExceeded = 100
	thresholdNinety   = 90
	thresholdEighty   = 80
)

// DeriveNotifications scans the progress projection in the plan's declared
// category order and produces the ordered alert messages.
//
// Per category, the highest matching tier wins (>= 100 exceeded, >= 90, >= 80);
// the 100% boundary belongs to the exceeded tier. Categories with a zero limit
// are skipped outright: they can never alert and they neither confirm nor deny
// the all-exceeded condition. The global all-exceeded message is appended last,
// and only when every non-zero-limit category sits strictly above 100% and at
// least one such category exists.
//
// Missing progress entries are treated as spent = 0; the function never fails.
func DeriveNotifications(progress Progress, categoryOrder []string) []string {
	notifications := []string{}
	allExceeded := true
	limited := 0

	for _, name := range categoryOrder {
		totals := progress[name]
		if totals.Limit.Cents == 0 {
			continue
		}
		limited++

		percent := PercentSpent(totals.Spent, totals.Limit)
		switch {
		case percent >= thresholdExceeded:
			notifications = append(notifications, fmt.Sprintf(
				"You have exceeded your spending limit in %q, reduce your spending in other categories!", name))
		case percent >= thresholdNinety:
			notifications = append(notifications, fmt.Sprintf(
				"Warning: You have spent 90%% of your set amount limit in %q!", name))
		case percent >= thresholdEighty:
			notifications = append(notifications, fmt.Sprintf(
				"Warning: You have spent 80%% of your set amount limit in %q!", name))
		}

		if percent <= thresholdExceeded {
			allExceeded = false
		}
	}

	if allExceeded && limited > 0 {
		notifications = append(notifications,
			"You have exceeded spending in all categories, add some income!")
	}

	return notifications
}

// BuildReport runs the full progress engine for a plan and its aggregated
// expense spend.
func BuildReport(p Plan, spendByCategory map[string]Money) ProgressReport {
	progress := ComputeProgress(p, spendByCategory)
	order := p.CategoryNames()
	return ProgressReport{
		Categories:    progress,
		Order:         order,
		Notifications: DeriveNotifications(progress, order),
	}
}
