package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"github.com/syndtr/goleveldb/leveldb"
)

// SaveState overwrites the stored lifecycle state.
func (r *Repository) SaveState(state model.RaiseState) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("save_state", err, start)
	}()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err = r.db.Put([]byte(stateKey), data, nil); err != nil {
		return fmt.Errorf("put state: %w", err)
	}
	return nil
}

// LoadState returns the stored lifecycle state, if any.
func (r *Repository) LoadState() (model.RaiseState, bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("load_state", err, start)
	}()

	data, err := r.db.Get([]byte(stateKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		err = nil
		return model.RaiseState{}, false, nil
	}
	if err != nil {
		return model.RaiseState{}, false, fmt.Errorf("get state: %w", err)
	}

	var state model.RaiseState
	if err = json.Unmarshal(data, &state); err != nil {
		return model.RaiseState{}, false, fmt.Errorf("decode state: %w", err)
	}
	return state, true, nil
}
