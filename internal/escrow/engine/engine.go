// Package engine implements the raise lifecycle state machine, the
// contribution processor and the settlement processor. Every mutating
// operation runs to completion under one mutex; ledger writes are persisted
// before the external transfer of custody and rolled back if that transfer
// fails, so a transfer failure can never strand a depositor behind a latched
// flag.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"go.uber.org/zap"
)

// Engine owns the live RaiseParameters and RaiseState and mediates all access
// to the contributor ledger.
type Engine struct {
	logger  *zap.Logger
	metrics Metrics
	store   StateStore
	access  AccessRegistry
	value   TokenVault
	claim   TokenVault
	journal Journal
	now     func() time.Time

	mu     sync.Mutex
	params model.RaiseParameters
	state  model.RaiseState
}

// New builds an Engine, loading any previously persisted parameters and state.
func New(
	logger *zap.Logger,
	store StateStore,
	access AccessRegistry,
	value TokenVault,
	claim TokenVault,
	journal Journal,
	metrics Metrics,
) (*Engine, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if access == nil {
		return nil, errors.New("access registry is required")
	}
	if value == nil || claim == nil {
		return nil, errors.New("both token vaults are required")
	}
	if metrics == nil {
		return nil, errors.New("engine metrics is required")
	}

	e := &Engine{
		logger:  logger.Named("engine"),
		metrics: metrics,
		store:   store,
		access:  access,
		value:   value,
		claim:   claim,
		journal: journal,
		now:     time.Now,
	}

	params, found, err := store.LoadParameters()
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}
	if found {
		e.params = params
	}

	state, found, err := store.LoadState()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if found {
		e.state = state
	} else {
		e.state = model.NewRaiseState()
		if err := store.SaveState(e.state); err != nil {
			return nil, fmt.Errorf("persist initial state: %w", err)
		}
	}

	return e, nil
}

func (e *Engine) requireOperator(caller string) error {
	if !e.access.IsOperator(caller) {
		return ErrNotOperator
	}
	return nil
}

// refundEligible is the single refund eligibility predicate.
func (e *Engine) refundEligible() bool {
	return e.state.RefundOverrideActive
}

// claimEligible is the single token claim eligibility predicate.
func (e *Engine) claimEligible() bool {
	return e.state.Phase == model.PhaseClosed &&
		e.state.Outcome == model.OutcomeSuccessful &&
		!e.state.RefundOverrideActive
}

func (e *Engine) emit(ctx context.Context, kind model.EventKind, mutate func(*model.Event)) {
	if e.journal == nil {
		return
	}
	event := model.Event{
		ID:          uuid.NewString(),
		Kind:        kind,
		TotalRaised: e.state.TotalRaised,
		Outcome:     e.state.Outcome,
		OccurredAt:  e.now(),
	}
	if mutate != nil {
		mutate(&event)
	}
	e.journal.Record(ctx, event)
}
