package models

// TransitionParty identifies which side of a proposal may trigger a
// transition. Each legal transition has exactly one legitimate party.
type TransitionParty string

const (
	PartyAuthor    TransitionParty = "author"
	PartyRecipient TransitionParty = "recipient"
)

// transitionTable is the closed set of legal status transitions and the
// party authorized to trigger each. Rules live here as data so that an
// audit or change is a one-place edit.
var transitionTable = map[ProposalStatus]map[ProposalStatus]TransitionParty{
	StatusUnread: {
		StatusRead: PartyRecipient,
	},
	StatusRead: {
		StatusPartnership: PartyRecipient,
		StatusRejected:    PartyRecipient,
	},
	StatusPartnership: {}, // terminal
	StatusRejected: {
		StatusUnread: PartyAuthor, // resubmission
	},
}

// TransitionParty returns the party authorized to move a proposal from one
// status to another. ok is false when the transition itself is illegal.
func TransitionAuthorizedParty(from, to ProposalStatus) (TransitionParty, bool) {
	party, ok := transitionTable[from][to]
	return party, ok
}

// AllowedTransitions lists the statuses reachable from the given one.
func AllowedTransitions(from ProposalStatus) []ProposalStatus {
	next := make([]ProposalStatus, 0, len(transitionTable[from]))
	for to := range transitionTable[from] {
		next = append(next, to)
	}
	return next
}

// IsTerminal reports whether no further transitions exist from the status.
func IsTerminal(status ProposalStatus) bool {
	return len(transitionTable[status]) == 0
}
