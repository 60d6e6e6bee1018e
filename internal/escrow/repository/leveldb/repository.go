// Package leveldb implements the durable escrow state store on top of a
// local LevelDB database. Parameters and state live under single keys; one
// record per depositor lives under the position prefix.
package leveldb

import (
	"errors"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
)

const (
	parametersKey  = "raise/parameters"
	stateKey       = "raise/state"
	operatorKey    = "raise/operator"
	positionPrefix = "position/"
)

type (
	// Metrics records duration and status of store operations.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Repository is a LevelDB-backed state store.
type Repository struct {
	db      *leveldb.DB
	metrics Metrics
}

// NewRepository opens (or creates) the database at path.
func NewRepository(path string, metrics Metrics) (*Repository, error) {
	if path == "" {
		return nil, errors.New("state db path is required")
	}
	if metrics == nil {
		return nil, errors.New("state store metrics is required")
	}

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, metrics: metrics}, nil
}

// Close releases the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}
