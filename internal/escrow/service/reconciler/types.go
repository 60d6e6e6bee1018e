package reconciler

import (
	"context"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Snapshotter exposes a consistent view of the ledger.
	Snapshotter interface {
		Snapshot(ctx context.Context) (model.Snapshot, error)
	}

	// BalanceReader reads custody balances from the token service.
	BalanceReader interface {
		BalanceOf(ctx context.Context, account string) (uint64, error)
	}

	// ReportSink persists reconciliation reports.
	ReportSink interface {
		InsertReconciliations(ctx context.Context, reports []model.ReconciliationReport) error
	}

	// Metrics records reconciliation runs and detected problems.
	Metrics interface {
		ObserveRun(err error, started time.Time)
		ObserveProblems(count int)
	}
)
