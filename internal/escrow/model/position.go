package model

// ContributorPosition is the per-depositor ledger record. Created lazily on
// first contribution, never deleted; the refund path zeroes its quantities and
// the settlement flags latch one way only.
type ContributorPosition struct {
	Depositor         string `json:"depositor"`
	ContributedAmount uint64 `json:"contributed_amount"`
	OwedClaimAmount   uint64 `json:"owed_claim_amount"`
	HasRefunded       bool   `json:"has_refunded"`
	HasClaimed        bool   `json:"has_claimed"`
}

// Settled reports whether the depositor already took one of the two
// settlement paths.
func (p ContributorPosition) Settled() bool {
	return p.HasRefunded || p.HasClaimed
}

// Snapshot is a point-in-time copy of the whole escrow used by read
// endpoints and the reconciler.
type Snapshot struct {
	Parameters RaiseParameters       `json:"parameters"`
	State      RaiseState            `json:"state"`
	Positions  []ContributorPosition `json:"positions"`
}
