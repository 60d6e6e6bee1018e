// Package auth maps the single privileged operator identity and supports
// transferring that privilege.
package auth

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotOperator rejects a transfer initiated by anyone but the operator.
	ErrNotOperator = errors.New("caller is not the operator")
	// ErrEmptySuccessor rejects a transfer to an empty identity.
	ErrEmptySuccessor = errors.New("successor identity is empty")
)

// OperatorStore persists the operator identity.
type OperatorStore interface {
	SaveOperator(account string) error
	LoadOperator() (string, bool, error)
}

// Registry holds the current operator identity, durable across restarts.
type Registry struct {
	store OperatorStore

	mu       sync.RWMutex
	operator string
}

// NewRegistry loads the persisted operator or bootstraps the provided one.
func NewRegistry(store OperatorStore, bootstrap string) (*Registry, error) {
	if bootstrap == "" {
		return nil, errors.New("bootstrap operator is required")
	}

	operator, found, err := store.LoadOperator()
	if err != nil {
		return nil, fmt.Errorf("load operator: %w", err)
	}
	if !found {
		operator = bootstrap
		if err := store.SaveOperator(operator); err != nil {
			return nil, fmt.Errorf("persist operator: %w", err)
		}
	}

	return &Registry{store: store, operator: operator}, nil
}

// IsOperator reports whether account holds the operator privilege.
func (r *Registry) IsOperator(account string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return account != "" && account == r.operator
}

// Operator returns the current operator identity.
func (r *Registry) Operator() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.operator
}

// Transfer hands the privilege from the current operator to a successor.
func (r *Registry) Transfer(caller, successor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller == "" || caller != r.operator {
		return ErrNotOperator
	}
	if successor == "" {
		return ErrEmptySuccessor
	}
	if err := r.store.SaveOperator(successor); err != nil {
		return fmt.Errorf("persist operator: %w", err)
	}
	r.operator = successor
	return nil
}
