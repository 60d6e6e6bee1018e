package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"github.com/raisevaultlabs/raisevault-backend/pkg/safe"
	"go.uber.org/zap"
)

// Contribute validates and records a deposit against the current phase and
// caps, then pulls the value token into custody. The ledger writes are
// persisted first and rolled back if the pull fails; any remainder below one
// unit's price is absorbed by the depositor. Positions accumulate across
// repeated contributions.
func (e *Engine) Contribute(ctx context.Context, depositor string, amount uint64) (pos model.ContributorPosition, err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("contribute", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase != model.PhaseOpen {
		return model.ContributorPosition{}, ErrNotOpen
	}
	now := e.now()
	if now.Before(e.params.OpenTime) {
		return model.ContributorPosition{}, ErrNotReady
	}
	if !now.Before(e.params.CloseTime) {
		return model.ContributorPosition{}, ErrWindowClosed
	}

	units := uint64(0)
	if amount > 0 {
		units = amount / e.params.UnitPrice
	}
	if units == 0 {
		return model.ContributorPosition{}, ErrAmountTooSmall
	}

	newTotal, err := safe.Add(e.state.TotalRaised, amount)
	if err != nil || newTotal > e.params.HardCap {
		return model.ContributorPosition{}, ErrExceedsHardCap
	}

	prevPos, found, err := e.store.LoadPosition(depositor)
	if err != nil {
		return model.ContributorPosition{}, fmt.Errorf("load position: %w", err)
	}
	if !found {
		prevPos = model.ContributorPosition{Depositor: depositor}
	}

	pos = prevPos
	pos.ContributedAmount += amount
	pos.OwedClaimAmount += units

	prevState := e.state
	state := e.state
	state.TotalRaised = newTotal

	if err = e.store.SavePosition(pos); err != nil {
		return model.ContributorPosition{}, fmt.Errorf("persist position: %w", err)
	}
	if err = e.store.SaveState(state); err != nil {
		// Put the position back so ledger and state stay in step.
		if restoreErr := e.store.SavePosition(prevPos); restoreErr != nil {
			e.logger.Error("position rollback failed", zap.Error(restoreErr))
		}
		return model.ContributorPosition{}, fmt.Errorf("persist state: %w", err)
	}
	e.state = state

	if err = e.value.TransferInto(ctx, depositor, amount); err != nil {
		if rbErr := e.rollback(prevPos, prevState); rbErr != nil {
			e.logger.Error("contribution rollback failed", zap.Error(rbErr))
			return model.ContributorPosition{}, fmt.Errorf("value transfer failed: %w (rollback failed: %v)", err, rbErr)
		}
		return model.ContributorPosition{}, fmt.Errorf("value transfer failed: %w", err)
	}

	e.logger.Info("contribution recorded",
		zap.String("depositor", depositor),
		zap.Uint64("amount", amount),
		zap.Uint64("units", units),
		zap.Uint64("totalRaised", newTotal),
	)
	e.emit(ctx, model.EventPurchased, func(ev *model.Event) {
		ev.Depositor = depositor
		ev.Amount = amount
		ev.Units = units
	})
	return pos, nil
}

// rollback restores a position and the raise state after a failed external
// transfer. Caller holds the engine mutex.
func (e *Engine) rollback(pos model.ContributorPosition, state model.RaiseState) error {
	if err := e.store.SavePosition(pos); err != nil {
		return fmt.Errorf("restore position: %w", err)
	}
	if err := e.store.SaveState(state); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	e.state = state
	return nil
}
