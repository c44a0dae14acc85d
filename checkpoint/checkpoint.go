// Package checkpoint persists gibbs chain state between runs, so a
// long chain can be resumed after an interruption.
package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"
)

// log is the global logging variable.
var log = logging.MustGetLogger("checkpoint")

// MAIN is key name for all chain data.
var MAIN = []byte("main")

// ChainState stores the state of a gibbs chain.
type ChainState struct {
	// State is the current value of every coordinate.
	State []float64 `json:"state"`
	// Sweep is the number of completed sweeps.
	Sweep int `json:"sweep"`
	// NEvaluations is the total number of log-density
	// evaluations so far.
	NEvaluations int `json:"nEvaluations"`
	// Final marks a chain that ran to completion.
	Final bool `json:"final"`
}

// ChainIO saves and restores chain checkpoints.
type ChainIO struct {
	db      *bolt.DB
	key     []byte
	last    time.Time
	seconds float64
}

// NewChainIO creates a new ChainIO saving at most once per the given
// number of seconds.
func NewChainIO(db *bolt.DB, key []byte, seconds float64) (s *ChainIO) {
	s = &ChainIO{
		db:      db,
		key:     key,
		seconds: seconds,
	}
	return
}

// Save saves a chain checkpoint to the database.
func (s *ChainIO) Save(state *ChainState) error {
	// Even if saving fails, we do not want to run this code too often.
	s.SetNow()
	stateB, err := json.Marshal(state)
	if err != nil {
		log.Error("Error serializing checkpoint", err)
		return err
	}
	err = SaveData(s.db, s.key, stateB)
	if err != nil {
		log.Error("Error saving checkpoint", err)
	}
	return err
}

// GetState returns the saved chain state, nil if there is none.
func (s *ChainIO) GetState() (*ChainState, error) {
	var state *ChainState

	b, err := LoadData(s.db, s.key)

	if err != nil || b == nil {
		return nil, err
	}

	err = json.Unmarshal(b, &state)

	if err != nil {
		return nil, err
	}

	if state == nil || len(state.State) == 0 {
		return nil, nil
	}

	if state.Final {
		log.Noticef("Found finished chain checkpoint (sweep=%v, neval=%v)", state.Sweep, state.NEvaluations)
	} else {
		log.Noticef("Found unfinished chain checkpoint (sweep=%v, neval=%v)", state.Sweep, state.NEvaluations)
	}

	return state, nil
}

// Old returns true if last checkpoint save time too long ago.
func (s *ChainIO) Old() bool {
	if time.Since(s.last).Seconds() > s.seconds {
		return true
	}
	return false
}

// SetNow sets last checkpoint time to now.
func (s *ChainIO) SetNow() {
	s.last = time.Now()
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}

		err = b.Put(key, data)
		return err
	})
	return err
}

// LoadData loads data from bolt database.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}

		v := b.Get(key)
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
