// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
	"github.com/qianbin/directcache"

	"github.com/plumestake/stakerd/kv"
)

const (
	// SchemaVersion is the version of the persisted storage layout.
	SchemaVersion uint32 = 1

	storageBucket = kv.Bucket("s")
	schemaKey     = "schema-version"
)

// Stater is the state creator. All states created by a stater share one read cache.
type Stater struct {
	store  kv.Store
	reader *reader
}

// NewStater create a new stater over the versioned namespace of the store.
// cacheSize is in bytes, 0 disables the read cache.
func NewStater(store kv.Store, cacheSize int) *Stater {
	r := &reader{src: storageBucket.NewGetter(store)}
	if cacheSize > 0 {
		r.cache = directcache.New(cacheSize)
	}
	return &Stater{
		store:  store,
		reader: r,
	}
}

// NewState create a new state object on top of the committed storage.
func (s *Stater) NewState() *State {
	return newState(s.reader)
}

// Commit writes the stage together with extra writes in one atomic batch.
func (s *Stater) Commit(stage *Stage, extra func(kv.Putter) error) error {
	batch := s.store.Batch()
	if err := stage.Commit(storageBucket.NewPutter(batch)); err != nil {
		return err
	}
	if extra != nil {
		if err := extra(batch); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write batch")
	}
	stage.Applied()
	return nil
}

// Initialized reports whether the schema version has been written.
func (s *Stater) Initialized() (bool, error) {
	return s.store.Has([]byte(schemaKey))
}

// CheckSchema verifies the persisted layout version, writing it for a fresh store.
func (s *Stater) CheckSchema() error {
	val, err := kv.GetOrNil(s.store, []byte(schemaKey))
	if err != nil {
		return errors.Wrap(err, "read schema version")
	}
	if val == nil {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], SchemaVersion)
		return s.store.Put([]byte(schemaKey), buf[:])
	}
	if len(val) != 4 {
		return fmt.Errorf("corrupted schema version: %x", val)
	}
	if v := binary.BigEndian.Uint32(val); v != SchemaVersion {
		return fmt.Errorf("incompatible schema version: want %d, got %d", SchemaVersion, v)
	}
	return nil
}
