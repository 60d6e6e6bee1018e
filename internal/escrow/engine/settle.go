package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"go.uber.org/zap"
)

// ClaimRefund pays back a depositor's full recorded contribution. The latch
// and the zeroed quantities are persisted before the transfer out, so a
// repeated call observes the latch; if the transfer fails the whole operation
// is rolled back.
func (e *Engine) ClaimRefund(ctx context.Context, depositor string) (amount uint64, err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("claim_refund", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	prevPos, found, err := e.store.LoadPosition(depositor)
	if err != nil {
		return 0, fmt.Errorf("load position: %w", err)
	}
	if !found {
		return 0, ErrNothingToRefund
	}
	if prevPos.HasRefunded {
		return 0, ErrAlreadyRefunded
	}
	if prevPos.HasClaimed {
		return 0, ErrAlreadyClaimed
	}
	if prevPos.ContributedAmount == 0 {
		return 0, ErrNothingToRefund
	}
	if !e.refundEligible() {
		return 0, ErrRefundsNotActive
	}

	amount = prevPos.ContributedAmount

	pos := prevPos
	pos.HasRefunded = true
	pos.ContributedAmount = 0
	pos.OwedClaimAmount = 0

	prevState := e.state
	state := e.state
	state.RefundedTotal += amount

	if err = e.store.SavePosition(pos); err != nil {
		return 0, fmt.Errorf("persist position: %w", err)
	}
	if err = e.store.SaveState(state); err != nil {
		if restoreErr := e.store.SavePosition(prevPos); restoreErr != nil {
			e.logger.Error("position rollback failed", zap.Error(restoreErr))
		}
		return 0, fmt.Errorf("persist state: %w", err)
	}
	e.state = state

	if err = e.value.TransferOut(ctx, depositor, amount); err != nil {
		if rbErr := e.rollback(prevPos, prevState); rbErr != nil {
			e.logger.Error("refund rollback failed", zap.Error(rbErr))
			return 0, fmt.Errorf("refund transfer failed: %w (rollback failed: %v)", err, rbErr)
		}
		return 0, fmt.Errorf("refund transfer failed: %w", err)
	}

	e.logger.Info("refund paid", zap.String("depositor", depositor), zap.Uint64("amount", amount))
	e.emit(ctx, model.EventRefunded, func(ev *model.Event) {
		ev.Depositor = depositor
		ev.Amount = amount
	})
	return amount, nil
}

// ClaimTokens releases a depositor's owed claim-token units. Mutually
// exclusive with ClaimRefund per depositor; the latch is persisted before the
// transfer out and rolled back if the transfer fails.
func (e *Engine) ClaimTokens(ctx context.Context, depositor string) (units uint64, err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("claim_tokens", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	prevPos, found, err := e.store.LoadPosition(depositor)
	if err != nil {
		return 0, fmt.Errorf("load position: %w", err)
	}
	if !found {
		return 0, ErrNothingToClaim
	}
	if prevPos.HasClaimed {
		return 0, ErrAlreadyClaimed
	}
	if prevPos.HasRefunded {
		return 0, ErrAlreadyRefunded
	}
	if prevPos.OwedClaimAmount == 0 {
		return 0, ErrNothingToClaim
	}
	if e.state.RefundOverrideActive {
		return 0, ErrRefundsActive
	}
	if !e.claimEligible() {
		return 0, ErrNotSuccessful
	}

	units = prevPos.OwedClaimAmount

	pos := prevPos
	pos.HasClaimed = true

	prevState := e.state
	state := e.state
	state.ClaimedUnitsTotal += units

	if err = e.store.SavePosition(pos); err != nil {
		return 0, fmt.Errorf("persist position: %w", err)
	}
	if err = e.store.SaveState(state); err != nil {
		if restoreErr := e.store.SavePosition(prevPos); restoreErr != nil {
			e.logger.Error("position rollback failed", zap.Error(restoreErr))
		}
		return 0, fmt.Errorf("persist state: %w", err)
	}
	e.state = state

	if err = e.claim.TransferOut(ctx, depositor, units); err != nil {
		if rbErr := e.rollback(prevPos, prevState); rbErr != nil {
			e.logger.Error("claim rollback failed", zap.Error(rbErr))
			return 0, fmt.Errorf("claim transfer failed: %w (rollback failed: %v)", err, rbErr)
		}
		return 0, fmt.Errorf("claim transfer failed: %w", err)
	}

	e.logger.Info("claim paid", zap.String("depositor", depositor), zap.Uint64("units", units))
	e.emit(ctx, model.EventClaimed, func(ev *model.Event) {
		ev.Depositor = depositor
		ev.Units = units
	})
	return units, nil
}
