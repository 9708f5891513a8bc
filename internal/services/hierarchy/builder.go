package hierarchy

import (
	"github.com/shopspring/decimal"

	"TradeBot365/internal/domain/models"
)

// Build folds a flat list of denormalized join rows into a two-level tree of
// CSP accounts owning trading accounts. One pass, keyed by CSP id; output
// order is first-seen order of CSP ids. Rows are appended as-is: duplicate
// trading-account ids are not collapsed, matching the upstream contract that
// rows arrive pre-deduplicated.
func Build(rows []models.AccountRow) []models.CSPAccount {
	index := make(map[string]int, len(rows))
	out := make([]models.CSPAccount, 0, len(rows))

	for _, row := range rows {
		i, ok := index[row.CSPID]
		if !ok {
			i = len(out)
			index[row.CSPID] = i
			out = append(out, models.CSPAccount{
				ID:         row.CSPID,
				Name:       row.CSPName,
				APIName:    row.APIName,
				Status:     row.Status,
				OwnerEmail: row.OwnerEmail,
			})
		}
		out[i].TradingAccounts = append(out[i].TradingAccounts, tradingAccount(row))
	}
	return out
}

func tradingAccount(row models.AccountRow) models.TradingAccount {
	bal, err := decimal.NewFromString(row.Balance)
	if err != nil {
		bal = decimal.Zero
	}
	return models.TradingAccount{
		ID:      row.AccountID,
		Number:  row.AccountNumber,
		Type:    row.AccountType,
		Balance: bal,
		IsLive:  row.IsLive,
		Status:  row.AccountStatus,
	}
}
