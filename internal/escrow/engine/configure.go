package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/auth"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"go.uber.org/zap"
)

func (e *Engine) validateSchedule(openTime, closeTime time.Time) error {
	if openTime.IsZero() || closeTime.IsZero() {
		return ErrInvalidSchedule
	}
	if openTime.Before(e.now()) {
		return fmt.Errorf("%w: open time is in the past", ErrInvalidSchedule)
	}
	if !closeTime.After(openTime) {
		return fmt.Errorf("%w: close time must be after open time", ErrInvalidSchedule)
	}
	return nil
}

func validatePricing(unitPrice uint64) error {
	if unitPrice == 0 {
		return ErrInvalidPricing
	}
	return nil
}

func validateCaps(softCap, hardCap uint64) error {
	if hardCap == 0 || softCap == 0 || softCap > hardCap {
		return ErrInvalidCaps
	}
	return nil
}

// Configure fully replaces the raise parameters. Operator-only, dormant-only;
// there is no merging with prior parameters.
func (e *Engine) Configure(ctx context.Context, caller string, params model.RaiseParameters) (err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("configure", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.requireOperator(caller); err != nil {
		return err
	}
	if e.state.Phase != model.PhaseDormant {
		return ErrNotDormant
	}
	if err = e.validateSchedule(params.OpenTime, params.CloseTime); err != nil {
		return err
	}
	if err = validatePricing(params.UnitPrice); err != nil {
		return err
	}
	if err = validateCaps(params.SoftCap, params.HardCap); err != nil {
		return err
	}

	if err = e.store.SaveParameters(params); err != nil {
		return fmt.Errorf("persist parameters: %w", err)
	}
	e.params = params

	e.logger.Info("raise configured",
		zap.Time("openTime", params.OpenTime),
		zap.Time("closeTime", params.CloseTime),
		zap.Uint64("unitPrice", params.UnitPrice),
		zap.Uint64("softCap", params.SoftCap),
		zap.Uint64("hardCap", params.HardCap),
	)
	e.emit(ctx, model.EventParametersConfigured, nil)
	return nil
}

// UpdatePrice replaces the unit price. Operator-only, dormant-only.
func (e *Engine) UpdatePrice(ctx context.Context, caller string, unitPrice uint64) (err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("update_price", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.requireOperator(caller); err != nil {
		return err
	}
	if e.state.Phase != model.PhaseDormant {
		return ErrNotDormant
	}
	if err = validatePricing(unitPrice); err != nil {
		return err
	}

	params := e.params
	params.UnitPrice = unitPrice
	if err = e.store.SaveParameters(params); err != nil {
		return fmt.Errorf("persist parameters: %w", err)
	}
	e.params = params

	e.logger.Info("unit price updated", zap.Uint64("unitPrice", unitPrice))
	e.emit(ctx, model.EventPriceUpdated, nil)
	return nil
}

// UpdateCaps replaces the soft and hard caps. Operator-only, dormant-only.
func (e *Engine) UpdateCaps(ctx context.Context, caller string, softCap, hardCap uint64) (err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("update_caps", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.requireOperator(caller); err != nil {
		return err
	}
	if e.state.Phase != model.PhaseDormant {
		return ErrNotDormant
	}
	if err = validateCaps(softCap, hardCap); err != nil {
		return err
	}

	params := e.params
	params.SoftCap = softCap
	params.HardCap = hardCap
	if err = e.store.SaveParameters(params); err != nil {
		return fmt.Errorf("persist parameters: %w", err)
	}
	e.params = params

	e.logger.Info("caps updated", zap.Uint64("softCap", softCap), zap.Uint64("hardCap", hardCap))
	e.emit(ctx, model.EventCapsUpdated, nil)
	return nil
}

// UpdateSchedule replaces the open and close times. Operator-only, dormant-only.
func (e *Engine) UpdateSchedule(ctx context.Context, caller string, openTime, closeTime time.Time) (err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("update_schedule", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.requireOperator(caller); err != nil {
		return err
	}
	if e.state.Phase != model.PhaseDormant {
		return ErrNotDormant
	}
	if err = e.validateSchedule(openTime, closeTime); err != nil {
		return err
	}

	params := e.params
	params.OpenTime = openTime
	params.CloseTime = closeTime
	if err = e.store.SaveParameters(params); err != nil {
		return fmt.Errorf("persist parameters: %w", err)
	}
	e.params = params

	e.logger.Info("schedule updated", zap.Time("openTime", openTime), zap.Time("closeTime", closeTime))
	e.emit(ctx, model.EventScheduleUpdated, nil)
	return nil
}

// TransferOperator hands the operator privilege to a successor account.
// Registry errors are translated onto the engine taxonomy so transport sees
// one set of sentinels.
func (e *Engine) TransferOperator(ctx context.Context, caller, successor string) (err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("transfer_operator", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.access.Transfer(caller, successor); err != nil {
		switch {
		case errors.Is(err, auth.ErrNotOperator):
			return ErrNotOperator
		case errors.Is(err, auth.ErrEmptySuccessor):
			return ErrInvalidSuccessor
		}
		return fmt.Errorf("transfer operator: %w", err)
	}

	e.logger.Info("operator transferred", zap.String("successor", successor))
	e.emit(ctx, model.EventOperatorTransferred, nil)
	return nil
}
