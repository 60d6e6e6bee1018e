package engine

import (
	"context"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
)

type (
	// StateStore is the durable backing for parameters, lifecycle state and
	// contributor positions.
	StateStore interface {
		SaveParameters(params model.RaiseParameters) error
		LoadParameters() (model.RaiseParameters, bool, error)
		SaveState(state model.RaiseState) error
		LoadState() (model.RaiseState, bool, error)
		SavePosition(pos model.ContributorPosition) error
		LoadPosition(depositor string) (model.ContributorPosition, bool, error)
		EachPosition(fn func(pos model.ContributorPosition) error) error
	}

	// TokenVault moves one fungible asset in and out of escrow custody.
	TokenVault interface {
		TransferInto(ctx context.Context, from string, amount uint64) error
		TransferOut(ctx context.Context, to string, amount uint64) error
		BalanceOf(ctx context.Context, account string) (uint64, error)
	}

	// AccessRegistry maps the single privileged operator identity.
	AccessRegistry interface {
		IsOperator(account string) bool
		Transfer(caller, successor string) error
	}

	// Journal receives observability events. Recording is asynchronous and
	// must never fail a money operation.
	Journal interface {
		Record(ctx context.Context, event model.Event)
	}

	// Metrics records duration and status of engine operations.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
