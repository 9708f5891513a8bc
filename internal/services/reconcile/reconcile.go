package reconcile

import (
	"TradeBot365/internal/domain/models"
	"TradeBot365/internal/services/identity"
)

// Result pairs the upstream signal with the per-user ledgers derived from
// its execution records.
type Result struct {
	Signal  models.Signal
	Ledgers []models.UserLedger
}

// Reconcile folds every execution record's outcomes into per-user, per-account
// ledgers. Success lists are walked before failure lists within a record, and
// encounter order is preserved for ledgers and outcome lists. Users are keyed
// by canonicalized user id so raw-form variants of the same id land in one
// ledger; outcomes with no user id are skipped as malformed. Pure fold, never
// fails.
func Reconcile(sig models.Signal, recs []models.ExecutionRecord) []models.UserLedger {
	index := make(map[string]int)
	ledgers := make([]models.UserLedger, 0, len(recs))

	add := func(o models.AccountOutcome) {
		key := identity.Canonicalize(o.UserID)
		if key == "" {
			return
		}
		i, ok := index[key]
		if !ok {
			i = len(ledgers)
			index[key] = i
			ledgers = append(ledgers, models.UserLedger{UserID: o.UserID})
		}
		switch o.Status {
		case models.OutcomeFailed:
			ledgers[i].FailedCount++
		case models.OutcomePending:
			ledgers[i].PendingCount++
		default:
			ledgers[i].SuccessCount++
		}
		appendOutcome(&ledgers[i], o)
	}

	for _, rec := range recs {
		for _, o := range rec.ProcessedAccounts {
			if o.Status == "" {
				o.Status = models.OutcomeSuccess
			}
			add(o)
		}
		for _, o := range rec.FailedAccounts {
			if o.Status == "" {
				o.Status = models.OutcomeFailed
			}
			add(o)
		}
	}

	return ledgers
}

func appendOutcome(l *models.UserLedger, o models.AccountOutcome) {
	key := identity.Canonicalize(o.AccountID)
	for i := range l.Accounts {
		if identity.Canonicalize(l.Accounts[i].AccountID) == key {
			l.Accounts[i].Outcomes = append(l.Accounts[i].Outcomes, o)
			return
		}
	}
	l.Accounts = append(l.Accounts, models.AccountLedger{
		AccountID:   o.AccountID,
		AccountName: o.Name,
		Outcomes:    []models.AccountOutcome{o},
	})
}
