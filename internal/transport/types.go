package transport

import (
	"context"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
)

type (
	// EscrowService is the engine surface the HTTP layer exposes.
	EscrowService interface {
		Configure(ctx context.Context, caller string, params model.RaiseParameters) error
		UpdatePrice(ctx context.Context, caller string, unitPrice uint64) error
		UpdateCaps(ctx context.Context, caller string, softCap, hardCap uint64) error
		UpdateSchedule(ctx context.Context, caller string, openTime, closeTime time.Time) error
		TransferOperator(ctx context.Context, caller, successor string) error

		Open(ctx context.Context, caller string) error
		Close(ctx context.Context, caller string) error
		ForceRefund(ctx context.Context, caller string) error
		CancelForceRefund(ctx context.Context, caller string) error

		Contribute(ctx context.Context, depositor string, amount uint64) (model.ContributorPosition, error)
		ClaimRefund(ctx context.Context, depositor string) (uint64, error)
		ClaimTokens(ctx context.Context, depositor string) (uint64, error)

		Snapshot(ctx context.Context) (model.Snapshot, error)
		Position(ctx context.Context, depositor string) (model.ContributorPosition, bool, error)
	}

	// EventHistory reads journaled events back for tooling.
	EventHistory interface {
		EventsByDepositor(ctx context.Context, depositor string, limit uint64) ([]model.Event, error)
	}
)
