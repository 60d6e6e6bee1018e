package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
)

// Snapshot returns a consistent copy of parameters, state and all positions.
func (e *Engine) Snapshot(ctx context.Context) (snap model.Snapshot, err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("snapshot", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}

	snap = model.Snapshot{
		Parameters: e.params,
		State:      e.state,
	}
	err = e.store.EachPosition(func(pos model.ContributorPosition) error {
		snap.Positions = append(snap.Positions, pos)
		return nil
	})
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("iterate positions: %w", err)
	}
	return snap, nil
}

// Position returns one depositor's ledger record.
func (e *Engine) Position(ctx context.Context, depositor string) (pos model.ContributorPosition, found bool, err error) {
	started := time.Now()
	defer func() { e.metrics.Observe("position", err, started) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = ctx.Err(); err != nil {
		return model.ContributorPosition{}, false, err
	}
	return e.store.LoadPosition(depositor)
}
