package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func positionKey(depositor string) []byte {
	return []byte(positionPrefix + depositor)
}

// SavePosition overwrites one depositor's ledger record.
func (r *Repository) SavePosition(pos model.ContributorPosition) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("save_position", err, start)
	}()

	if pos.Depositor == "" {
		err = errors.New("depositor identity is required")
		return err
	}
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("encode position: %w", err)
	}
	if err = r.db.Put(positionKey(pos.Depositor), data, nil); err != nil {
		return fmt.Errorf("put position: %w", err)
	}
	return nil
}

// LoadPosition returns one depositor's ledger record, if any.
func (r *Repository) LoadPosition(depositor string) (model.ContributorPosition, bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("load_position", err, start)
	}()

	data, err := r.db.Get(positionKey(depositor), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		err = nil
		return model.ContributorPosition{}, false, nil
	}
	if err != nil {
		return model.ContributorPosition{}, false, fmt.Errorf("get position: %w", err)
	}

	var pos model.ContributorPosition
	if err = json.Unmarshal(data, &pos); err != nil {
		return model.ContributorPosition{}, false, fmt.Errorf("decode position: %w", err)
	}
	return pos, true, nil
}

// EachPosition visits every stored depositor position.
func (r *Repository) EachPosition(fn func(pos model.ContributorPosition) error) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("each_position", err, start)
	}()

	iter := r.db.NewIterator(util.BytesPrefix([]byte(positionPrefix)), nil)
	defer iter.Release()

	for iter.Next() {
		var pos model.ContributorPosition
		if err = json.Unmarshal(iter.Value(), &pos); err != nil {
			return fmt.Errorf("decode position: %w", err)
		}
		if err = fn(pos); err != nil {
			return err
		}
	}
	if err = iter.Error(); err != nil {
		return fmt.Errorf("iterate positions: %w", err)
	}
	return nil
}
