package usecase

import (
	"context"
	"fmt"

	"TradeBot365/internal/domain/models"
	drepo "TradeBot365/internal/domain/repository"
	"TradeBot365/internal/services/hierarchy"
)

// AccountDirectory serves the CSP account tree for a user.
type AccountDirectory struct {
	store   drepo.AccountStore
	metrics drepo.Metrics
}

func NewAccountDirectory(store drepo.AccountStore, metrics drepo.Metrics) *AccountDirectory {
	return &AccountDirectory{store: store, metrics: metrics}
}

// Hierarchy loads the user's join rows, applies the live/demo cut, and folds
// them into the two-level account tree.
func (d *AccountDirectory) Hierarchy(ctx context.Context, userID, live string) ([]models.CSPAccount, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}
	rows, err := d.store.ListRows(ctx, userID)
	if err != nil {
		d.metrics.RecordError("account_rows")
		return nil, err
	}

	switch live {
	case "live", "demo":
		wantLive := live == "live"
		kept := rows[:0:0]
		for _, r := range rows {
			if r.IsLive == wantLive {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	return hierarchy.Build(rows), nil
}
