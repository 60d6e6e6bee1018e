package leveldb

import (
	"errors"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
)

// SaveOperator overwrites the stored operator identity.
func (r *Repository) SaveOperator(account string) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("save_operator", err, start)
	}()

	if account == "" {
		err = errors.New("operator identity is required")
		return err
	}
	if err = r.db.Put([]byte(operatorKey), []byte(account), nil); err != nil {
		return fmt.Errorf("put operator: %w", err)
	}
	return nil
}

// LoadOperator returns the stored operator identity, if any.
func (r *Repository) LoadOperator() (string, bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("load_operator", err, start)
	}()

	data, err := r.db.Get([]byte(operatorKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		err = nil
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get operator: %w", err)
	}
	return string(data), true, nil
}
