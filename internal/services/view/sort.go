package view

import (
	"sort"

	"TradeBot365/internal/domain/models"
)

// Order names a sort order over error signals.
type Order string

const (
	Newest       Order = "newest"
	Oldest       Order = "oldest"
	SeverityHigh Order = "severity-high"
	SeverityLow  Order = "severity-low"
)

// severityRank fixes the comparison scale; unrecognized severities rank
// below low so they sink in severity-high views.
var severityRank = map[models.Severity]int{
	models.SeverityCritical: 4,
	models.SeverityHigh:     3,
	models.SeverityMedium:   2,
	models.SeverityLow:      1,
}

// Sort returns a sorted copy of items. Ties keep their relative input order
// (stable). Unknown orders return the copy unsorted.
func Sort(items []models.ErrorSignal, order Order) []models.ErrorSignal {
	out := make([]models.ErrorSignal, len(items))
	copy(out, items)

	switch order {
	case Newest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Timestamp.After(out[j].Timestamp)
		})
	case Oldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Timestamp.Before(out[j].Timestamp)
		})
	case SeverityHigh:
		sort.SliceStable(out, func(i, j int) bool {
			return severityRank[out[i].Severity] > severityRank[out[j].Severity]
		})
	case SeverityLow:
		sort.SliceStable(out, func(i, j int) bool {
			return severityRank[out[i].Severity] < severityRank[out[j].Severity]
		})
	}
	return out
}
