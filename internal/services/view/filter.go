package view

import (
	"strings"

	"TradeBot365/internal/domain/models"
	"TradeBot365/internal/services/classify"
	"TradeBot365/internal/services/identity"
)

// All is the neutral option value; a FilterSpec field set to All (or left
// empty) filters nothing.
const All = "all"

// FilterSpec is the user-driven view derivation over an error-signal list.
// Options compose with logical AND.
type FilterSpec struct {
	Search   string
	Severity string
	Category string
	Status   string
	BotType  string
	UserID   string
}

// Filter applies spec over items, preserving input order. Empty input yields
// empty output; a fully-neutral spec yields the input unchanged.
func Filter(items []models.ErrorSignal, spec FilterSpec) []models.ErrorSignal {
	preds := spec.predicates()
	if len(preds) == 0 {
		return items
	}
	out := make([]models.ErrorSignal, 0, len(items))
	for _, it := range items {
		if matchAll(it, preds) {
			out = append(out, it)
		}
	}
	return out
}

type predicate func(models.ErrorSignal) bool

func matchAll(it models.ErrorSignal, preds []predicate) bool {
	for _, p := range preds {
		if !p(it) {
			return false
		}
	}
	return true
}

func neutral(v string) bool { return v == "" || v == All }

func (s FilterSpec) predicates() []predicate {
	var preds []predicate
	if !neutral(s.Search) {
		q := strings.ToLower(s.Search)
		preds = append(preds, func(it models.ErrorSignal) bool {
			for _, f := range []string{it.ID, it.ErrorMessage, it.Instrument, it.BotID, it.BotName, it.UserID} {
				if strings.Contains(strings.ToLower(f), q) {
					return true
				}
			}
			return false
		})
	}
	if !neutral(s.Severity) {
		want := models.Severity(s.Severity)
		preds = append(preds, func(it models.ErrorSignal) bool {
			return classify.SeverityOf(it.Severity) == want
		})
	}
	if !neutral(s.Category) {
		want := classify.Category(s.Category)
		preds = append(preds, func(it models.ErrorSignal) bool {
			return classify.ErrorCategory(it.ErrorMessage) == want
		})
	}
	if !neutral(s.Status) {
		want := s.Status
		preds = append(preds, func(it models.ErrorSignal) bool {
			return it.Status == want
		})
	}
	if !neutral(s.BotType) {
		want := classify.BotType(s.BotType)
		preds = append(preds, func(it models.ErrorSignal) bool {
			return classify.BotTypeOf(it.BotType, it.BotID) == want
		})
	}
	if !neutral(s.UserID) {
		want := identity.Canonicalize(s.UserID)
		preds = append(preds, func(it models.ErrorSignal) bool {
			if identity.Canonicalize(it.UserID) == want {
				return true
			}
			for _, id := range it.ConnectedUserIDs {
				if identity.Canonicalize(id) == want {
					return true
				}
			}
			return false
		})
	}
	return preds
}
