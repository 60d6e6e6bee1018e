package model

import "time"

// EventKind identifies a journaled state change.
type EventKind string

const (
	EventParametersConfigured    EventKind = "parameters-configured"
	EventOpened                  EventKind = "opened"
	EventClosed                  EventKind = "closed"
	EventPurchased               EventKind = "purchased"
	EventRefunded                EventKind = "refunded"
	EventClaimed                 EventKind = "claimed"
	EventRefundOverrideActivated EventKind = "refund-override-activated"
	EventRefundOverrideCleared   EventKind = "refund-override-cleared"
	EventPriceUpdated            EventKind = "price-updated"
	EventCapsUpdated             EventKind = "caps-updated"
	EventScheduleUpdated         EventKind = "schedule-updated"
	EventOperatorTransferred     EventKind = "operator-transferred"
)

// Event is one observability record for external indexers. Events are
// append-only and carry the exact amounts of the operation they describe.
type Event struct {
	ID          string    `json:"id"`
	Kind        EventKind `json:"kind"`
	Depositor   string    `json:"depositor,omitempty"`
	Amount      uint64    `json:"amount,omitempty"`
	Units       uint64    `json:"units,omitempty"`
	TotalRaised uint64    `json:"total_raised"`
	Outcome     Outcome   `json:"outcome"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ReconciliationReport is the result of one background conservation check.
type ReconciliationReport struct {
	RanAt           time.Time `json:"ran_at"`
	Positions       uint64    `json:"positions"`
	ContributedSum  uint64    `json:"contributed_sum"`
	OutstandingOwed uint64    `json:"outstanding_owed"`
	TotalRaised     uint64    `json:"total_raised"`
	RefundedTotal   uint64    `json:"refunded_total"`
	ValueCustody    uint64    `json:"value_custody"`
	ClaimCustody    uint64    `json:"claim_custody"`
	Consistent      bool      `json:"consistent"`
	Problems        []string  `json:"problems,omitempty"`
}
