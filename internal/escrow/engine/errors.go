package engine

import "errors"

// Authorization errors.
var (
	// ErrNotOperator rejects operator-only operations from other callers.
	ErrNotOperator = errors.New("caller is not the operator")
)

// Phase and timing violations.
var (
	// ErrNotDormant rejects parameter changes once the raise has left dormancy.
	ErrNotDormant = errors.New("raise is not dormant")
	// ErrNotReady rejects opening before the configured open time.
	ErrNotReady = errors.New("raise is not ready to open")
	// ErrWindowPassed rejects opening at or after the close time.
	ErrWindowPassed = errors.New("raise window has passed")
	// ErrNotOpen rejects contributions and closing outside the open phase.
	ErrNotOpen = errors.New("raise is not open")
	// ErrWindowClosed rejects contributions at or after the close time.
	ErrWindowClosed = errors.New("contribution window has closed")
)

// Validation errors.
var (
	// ErrInvalidSchedule rejects open/close times that are in the past or inverted.
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrInvalidPricing rejects a zero unit price.
	ErrInvalidPricing = errors.New("invalid unit price")
	// ErrInvalidCaps rejects caps unless 0 < softCap <= hardCap.
	ErrInvalidCaps = errors.New("invalid caps")
	// ErrExceedsHardCap rejects a contribution that would push the total past the hard cap.
	ErrExceedsHardCap = errors.New("contribution exceeds hard cap")
	// ErrAmountTooSmall rejects a contribution worth less than one unit.
	ErrAmountTooSmall = errors.New("contribution amount too small")
	// ErrInvalidSuccessor rejects an operator transfer to an empty identity.
	ErrInvalidSuccessor = errors.New("invalid successor identity")
)

// Refund override errors.
var (
	// ErrAlreadyRefunding rejects activating an already active refund override.
	ErrAlreadyRefunding = errors.New("refund override already active")
	// ErrNotRefunding rejects clearing an inactive refund override.
	ErrNotRefunding = errors.New("refund override not active")
	// ErrSettlementStarted rejects clearing the refund override after a refund was paid.
	ErrSettlementStarted = errors.New("settlement already started")
)

// Settlement errors.
var (
	// ErrRefundsNotActive rejects refunds while the refund override is inactive.
	ErrRefundsNotActive = errors.New("refunds are not active")
	// ErrRefundsActive rejects token claims while the refund override is active.
	ErrRefundsActive = errors.New("refunds are active")
	// ErrNotSuccessful rejects token claims unless the raise closed successfully.
	ErrNotSuccessful = errors.New("raise did not close successfully")
	// ErrNothingToRefund rejects refunds for depositors with no recorded contribution.
	ErrNothingToRefund = errors.New("nothing to refund")
	// ErrNothingToClaim rejects claims for depositors with no owed units.
	ErrNothingToClaim = errors.New("nothing to claim")
	// ErrAlreadyRefunded rejects settlement for depositors who already refunded.
	ErrAlreadyRefunded = errors.New("depositor already refunded")
	// ErrAlreadyClaimed rejects settlement for depositors who already claimed.
	ErrAlreadyClaimed = errors.New("depositor already claimed")
)
