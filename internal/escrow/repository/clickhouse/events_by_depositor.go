package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
)

// EventsByDepositor returns a depositor's journal events, newest first.
func (r *Repository) EventsByDepositor(ctx context.Context, depositor string, limit uint64) ([]model.Event, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("events_by_depositor", err, start)
	}()

	const query = `
SELECT id, kind, depositor, amount, units, total_raised, outcome, occurred_at
FROM escrow_events
WHERE depositor = ?
ORDER BY occurred_at DESC
LIMIT ?`

	rows, err := r.conn.Query(ctx, query, depositor, limit)
	if err != nil {
		return nil, fmt.Errorf("query events by depositor: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var events []model.Event
	for rows.Next() {
		var (
			event   model.Event
			kind    string
			outcome string
		)
		if err = rows.Scan(
			&event.ID,
			&kind,
			&event.Depositor,
			&event.Amount,
			&event.Units,
			&event.TotalRaised,
			&outcome,
			&event.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Kind = model.EventKind(kind)
		event.Outcome = model.Outcome(outcome)
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}
