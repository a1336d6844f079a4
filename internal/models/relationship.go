package models

import "time"

// SignalKind distinguishes the two relationship signal variants.
type SignalKind string

const (
	SignalLike      SignalKind = "LIKE"
	SignalRecommend SignalKind = "RECOMMEND"
)

// Valid reports whether the kind is one of the closed set.
func (k SignalKind) Valid() bool {
	return k == SignalLike || k == SignalRecommend
}

// RelationshipSignal is a history-less toggleable relation between two
// users. At most one active signal exists per (from, to, kind) triple.
type RelationshipSignal struct {
	ID        string     `db:"id" json:"id"`
	FromID    string     `db:"from_id" json:"-"`
	ToID      string     `db:"to_id" json:"-"`
	From      UserRef    `json:"from"`
	To        UserRef    `json:"to"`
	Kind      SignalKind `db:"kind" json:"kind"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// ToggleOutcome reports what a toggle call did.
type ToggleOutcome string

const (
	ToggleCreated ToggleOutcome = "created"
	ToggleRemoved ToggleOutcome = "removed"
)

// ToggleResult is returned to the API layer after a toggle.
type ToggleResult struct {
	Outcome ToggleOutcome       `json:"status"`
	Signal  *RelationshipSignal `json:"signal,omitempty"`
}
