package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"go.uber.org/zap"
)

// Open transitions the raise from dormant to open. Operator-only; the current
// time must be inside the configured window.
func (e *Engine) Open(ctx context.Context, caller string) (err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("open", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.requireOperator(caller); err != nil {
		return err
	}
	if e.state.Phase != model.PhaseDormant || !e.params.Configured() {
		return ErrNotReady
	}
	now := e.now()
	if now.Before(e.params.OpenTime) {
		return ErrNotReady
	}
	if !now.Before(e.params.CloseTime) {
		return ErrWindowPassed
	}

	state := e.state
	state.Phase = model.PhaseOpen
	if err = e.store.SaveState(state); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	e.state = state

	e.logger.Info("raise opened", zap.Time("closeTime", e.params.CloseTime))
	e.emit(ctx, model.EventOpened, nil)
	return nil
}

// Close transitions the raise from open to closed and resolves the outcome.
// Anyone may close once the close time is reached or the hard cap is hit; the
// operator may close at any time while open. A failed outcome activates the
// refund override atomically with the transition.
func (e *Engine) Close(ctx context.Context, caller string) (err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("close", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase != model.PhaseOpen {
		return ErrNotOpen
	}
	now := e.now()
	dueByTime := !now.Before(e.params.CloseTime)
	dueByCap := e.state.TotalRaised >= e.params.HardCap
	if !dueByTime && !dueByCap && !e.access.IsOperator(caller) {
		return ErrNotOperator
	}

	state := e.state
	state.Phase = model.PhaseClosed
	if state.TotalRaised >= e.params.SoftCap {
		state.Outcome = model.OutcomeSuccessful
	} else {
		state.Outcome = model.OutcomeFailed
		state.RefundOverrideActive = true
	}
	if err = e.store.SaveState(state); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	e.state = state

	e.logger.Info("raise closed",
		zap.String("outcome", string(state.Outcome)),
		zap.Uint64("totalRaised", state.TotalRaised),
	)
	e.emit(ctx, model.EventClosed, nil)
	return nil
}

// ForceRefund activates the global refund override regardless of phase or
// outcome. If the raise is still open it is also forced closed as failed.
// Operator-only safety valve, distinct from the normal close path.
func (e *Engine) ForceRefund(ctx context.Context, caller string) (err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("force_refund", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.requireOperator(caller); err != nil {
		return err
	}
	if e.state.RefundOverrideActive {
		return ErrAlreadyRefunding
	}

	state := e.state
	state.RefundOverrideActive = true
	forcedClose := state.Phase == model.PhaseOpen
	if forcedClose {
		state.Phase = model.PhaseClosed
		state.Outcome = model.OutcomeFailed
	}
	if err = e.store.SaveState(state); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	e.state = state

	e.logger.Warn("refund override activated", zap.Bool("forcedClose", forcedClose))
	if forcedClose {
		e.emit(ctx, model.EventClosed, nil)
	}
	e.emit(ctx, model.EventRefundOverrideActivated, nil)
	return nil
}

// CancelForceRefund clears the refund override without altering phase or
// outcome. Refused once any refund has been paid: re-enabling token claims at
// that point would let remaining depositors claim against a pool already
// drained by refunds.
func (e *Engine) CancelForceRefund(ctx context.Context, caller string) (err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("cancel_force_refund", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.requireOperator(caller); err != nil {
		return err
	}
	if !e.state.RefundOverrideActive {
		return ErrNotRefunding
	}
	if e.state.RefundedTotal > 0 {
		return ErrSettlementStarted
	}

	state := e.state
	state.RefundOverrideActive = false
	if err = e.store.SaveState(state); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	e.state = state

	e.logger.Warn("refund override cleared")
	e.emit(ctx, model.EventRefundOverrideCleared, nil)
	return nil
}
