package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
)

// InsertReconciliations stores reconciliation report rows in ClickHouse.
func (r *Repository) InsertReconciliations(ctx context.Context, reports []model.ReconciliationReport) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_reconciliations", err, start)
	}()

	if len(reports) == 0 {
		return nil
	}

	const query = `
INSERT INTO escrow_reconciliations (
	ran_at,
	positions,
	contributed_sum,
	outstanding_owed,
	total_raised,
	refunded_total,
	value_custody,
	claim_custody,
	consistent,
	problems
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare reconciliations batch: %w", err)
	}

	for _, report := range reports {
		if err = batch.Append(
			report.RanAt,
			report.Positions,
			report.ContributedSum,
			report.OutstandingOwed,
			report.TotalRaised,
			report.RefundedTotal,
			report.ValueCustody,
			report.ClaimCustody,
			report.Consistent,
			report.Problems,
		); err != nil {
			return fmt.Errorf("append reconciliation: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert reconciliations: %w", err)
	}
	return nil
}
