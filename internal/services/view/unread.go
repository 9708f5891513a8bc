package view

import "TradeBot365/internal/services/identity"

// UnreadSet tracks which error signals a viewer has not read yet. Membership
// is keyed by canonical id. Transitions return a new set rather than mutating
// in place; there is no read -> unread transition.
type UnreadSet map[string]struct{}

// NewUnreadSet marks every given id unread.
func NewUnreadSet(ids ...string) UnreadSet {
	s := make(UnreadSet, len(ids))
	for _, id := range ids {
		if key := identity.Canonicalize(id); key != "" {
			s[key] = struct{}{}
		}
	}
	return s
}

// Contains reports whether id is still unread.
func (s UnreadSet) Contains(id string) bool {
	_, ok := s[identity.Canonicalize(id)]
	return ok
}

// Len returns the number of unread ids.
func (s UnreadSet) Len() int { return len(s) }

// MarkRead returns a set without id. The receiver is left untouched.
func (s UnreadSet) MarkRead(id string) UnreadSet {
	key := identity.Canonicalize(id)
	if _, ok := s[key]; !ok {
		return s
	}
	next := make(UnreadSet, len(s)-1)
	for k := range s {
		if k != key {
			next[k] = struct{}{}
		}
	}
	return next
}

// MarkAllRead empties the set.
func (s UnreadSet) MarkAllRead() UnreadSet {
	return make(UnreadSet)
}
