// Package model defines domain models for the escrowed raise.
package model

import "time"

// Phase describes where the raise is in its lifecycle.
type Phase string

const (
	// PhaseDormant is the initial phase; parameters may still change.
	PhaseDormant Phase = "dormant"
	// PhaseOpen accepts contributions.
	PhaseOpen Phase = "open"
	// PhaseClosed is terminal; the raise never reopens.
	PhaseClosed Phase = "closed"
)

// Outcome is the resolution of a closed raise.
type Outcome string

const (
	// OutcomeUnresolved applies to any raise that has not closed.
	OutcomeUnresolved Outcome = "unresolved"
	// OutcomeSuccessful means the soft cap was met and claims are payable.
	OutcomeSuccessful Outcome = "successful"
	// OutcomeFailed means the soft cap was missed and contributions refund.
	OutcomeFailed Outcome = "failed"
)

// RaiseParameters is the configured schedule, pricing and caps of the raise.
// Replaceable only while the raise is dormant.
type RaiseParameters struct {
	OpenTime  time.Time `json:"open_time"`
	CloseTime time.Time `json:"close_time"`
	UnitPrice uint64    `json:"unit_price"`
	SoftCap   uint64    `json:"soft_cap"`
	HardCap   uint64    `json:"hard_cap"`
}

// Configured reports whether the operator has ever set parameters.
func (p RaiseParameters) Configured() bool {
	return p.UnitPrice > 0
}

// RaiseState is the single live lifecycle record of the raise.
type RaiseState struct {
	Phase                Phase   `json:"phase"`
	TotalRaised          uint64  `json:"total_raised"`
	Outcome              Outcome `json:"outcome"`
	RefundOverrideActive bool    `json:"refund_override_active"`

	// RefundedTotal and ClaimedUnitsTotal accumulate settled positions so
	// conservation can still be checked after positions are zeroed.
	RefundedTotal     uint64 `json:"refunded_total"`
	ClaimedUnitsTotal uint64 `json:"claimed_units_total"`
}

// NewRaiseState returns the dormant initial state.
func NewRaiseState() RaiseState {
	return RaiseState{
		Phase:   PhaseDormant,
		Outcome: OutcomeUnresolved,
	}
}
