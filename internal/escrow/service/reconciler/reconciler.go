// Package reconciler periodically cross-checks the durable ledger against
// the custody balances held by the token service and records the result.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/clock"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"github.com/raisevaultlabs/raisevault-backend/pkg/safe"
	"github.com/raisevaultlabs/raisevault-backend/pkg/workerpool"
	"go.uber.org/zap"
)

const balanceWorkers = 2

// Service runs the reconciliation loop.
type Service struct {
	logger    *zap.Logger
	metrics   Metrics
	sleep     func(context.Context, time.Duration) error
	interval  time.Duration
	snapshots Snapshotter
	value     BalanceReader
	claim     BalanceReader
	sink      ReportSink
	now       func() time.Time
}

func NewService(
	logger *zap.Logger,
	metrics Metrics,
	snapshots Snapshotter,
	value BalanceReader,
	claim BalanceReader,
	sink ReportSink,
	interval time.Duration,
) (*Service, error) {
	if metrics == nil {
		return nil, errors.New("reconciler metrics is required")
	}
	if snapshots == nil {
		return nil, errors.New("reconciler snapshotter is required")
	}
	if value == nil || claim == nil {
		return nil, errors.New("reconciler balance readers are required")
	}
	if sink == nil {
		return nil, errors.New("reconciler report sink is required")
	}
	if interval <= 0 {
		return nil, errors.New("reconciler interval must be positive")
	}

	return &Service{
		logger:    logger.Named("reconciler"),
		metrics:   metrics,
		sleep:     clock.SleepWithContext,
		interval:  interval,
		snapshots: snapshots,
		value:     value,
		claim:     claim,
		sink:      sink,
		now:       time.Now,
	}, nil
}

// Run reconciles on the configured interval until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.runOnce(ctx); err != nil {
			s.logger.Error("reconciliation run failed", zap.Error(err))
		}
		if err := s.sleep(ctx, s.interval); err != nil {
			return err
		}
	}
}

// RunOnce performs a single reconciliation pass and returns the report.
func (s *Service) RunOnce(ctx context.Context) (model.ReconciliationReport, error) {
	return s.reconcile(ctx)
}

func (s *Service) runOnce(ctx context.Context) error {
	report, err := s.reconcile(ctx)
	if err != nil {
		return err
	}

	if !report.Consistent {
		s.logger.Warn("ledger inconsistency detected",
			zap.Strings("problems", report.Problems),
			zap.Uint64("total_raised", report.TotalRaised),
			zap.Uint64("contributed_sum", report.ContributedSum))
	}

	if err = s.sink.InsertReconciliations(ctx, []model.ReconciliationReport{report}); err != nil {
		return fmt.Errorf("persist reconciliation report: %w", err)
	}
	return nil
}

func (s *Service) reconcile(ctx context.Context) (report model.ReconciliationReport, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveRun(err, started)
	}()

	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return model.ReconciliationReport{}, fmt.Errorf("load ledger snapshot: %w", err)
	}

	report = model.ReconciliationReport{
		RanAt:         s.now().UTC(),
		Positions:     uint64(len(snapshot.Positions)),
		TotalRaised:   snapshot.State.TotalRaised,
		RefundedTotal: snapshot.State.RefundedTotal,
	}

	for _, pos := range snapshot.Positions {
		if report.ContributedSum, err = safe.Add(report.ContributedSum, pos.ContributedAmount); err != nil {
			return model.ReconciliationReport{}, fmt.Errorf("sum contributions: %w", err)
		}
		if !pos.HasClaimed {
			if report.OutstandingOwed, err = safe.Add(report.OutstandingOwed, pos.OwedClaimAmount); err != nil {
				return model.ReconciliationReport{}, fmt.Errorf("sum owed claims: %w", err)
			}
		}
		if pos.HasRefunded && pos.HasClaimed {
			report.Problems = append(report.Problems,
				fmt.Sprintf("position %s is both refunded and claimed", pos.Depositor))
		}
		if pos.HasRefunded && (pos.ContributedAmount != 0 || pos.OwedClaimAmount != 0) {
			report.Problems = append(report.Problems,
				fmt.Sprintf("refunded position %s retains balances", pos.Depositor))
		}
	}

	if err = s.fetchCustody(ctx, &report); err != nil {
		return model.ReconciliationReport{}, err
	}

	settledAndRaised, addErr := safe.Add(report.ContributedSum, report.RefundedTotal)
	if addErr != nil || settledAndRaised != report.TotalRaised {
		report.Problems = append(report.Problems,
			fmt.Sprintf("contributed sum %d plus refunded total %d does not equal total raised %d",
				report.ContributedSum, report.RefundedTotal, report.TotalRaised))
	}

	params := snapshot.Parameters
	if params.Configured() && params.HardCap > 0 && report.TotalRaised > params.HardCap {
		report.Problems = append(report.Problems,
			fmt.Sprintf("total raised %d exceeds hard cap %d", report.TotalRaised, params.HardCap))
	}

	if report.ValueCustody < report.ContributedSum {
		report.Problems = append(report.Problems,
			fmt.Sprintf("value custody %d below contributed sum %d", report.ValueCustody, report.ContributedSum))
	}

	if snapshot.State.Outcome == model.OutcomeSuccessful &&
		!snapshot.State.RefundOverrideActive &&
		report.ClaimCustody < report.OutstandingOwed {
		report.Problems = append(report.Problems,
			fmt.Sprintf("claim custody %d below outstanding owed %d", report.ClaimCustody, report.OutstandingOwed))
	}

	report.Consistent = len(report.Problems) == 0
	s.metrics.ObserveProblems(len(report.Problems))

	return report, nil
}

type custodyProbe struct {
	reader BalanceReader
	apply  func(uint64)
}

func (s *Service) fetchCustody(ctx context.Context, report *model.ReconciliationReport) error {
	var mu sync.Mutex
	probes := []custodyProbe{
		{reader: s.value, apply: func(b uint64) { report.ValueCustody = b }},
		{reader: s.claim, apply: func(b uint64) { report.ClaimCustody = b }},
	}

	err := workerpool.Process(ctx, balanceWorkers, probes, func(ctx context.Context, probe custodyProbe) error {
		balance, err := probe.reader.BalanceOf(ctx, "")
		if err != nil {
			return err
		}
		mu.Lock()
		probe.apply(balance)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("read custody balances: %w", err)
	}
	return nil
}
