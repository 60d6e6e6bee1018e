package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"github.com/syndtr/goleveldb/leveldb"
)

// SaveParameters overwrites the stored raise parameters.
func (r *Repository) SaveParameters(params model.RaiseParameters) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("save_parameters", err, start)
	}()

	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	if err = r.db.Put([]byte(parametersKey), data, nil); err != nil {
		return fmt.Errorf("put parameters: %w", err)
	}
	return nil
}

// LoadParameters returns the stored raise parameters, if any.
func (r *Repository) LoadParameters() (model.RaiseParameters, bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("load_parameters", err, start)
	}()

	data, err := r.db.Get([]byte(parametersKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		err = nil
		return model.RaiseParameters{}, false, nil
	}
	if err != nil {
		return model.RaiseParameters{}, false, fmt.Errorf("get parameters: %w", err)
	}

	var params model.RaiseParameters
	if err = json.Unmarshal(data, &params); err != nil {
		return model.RaiseParameters{}, false, fmt.Errorf("decode parameters: %w", err)
	}
	return params, true, nil
}
