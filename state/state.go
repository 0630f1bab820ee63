// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/plumestake/stakerd/kv"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr plume.Address
	key  plume.Bytes32
}

// State manages the engine storage.
// Every write lands in a journal, which can be reverted to a checkpoint or staged for commit.
type State struct {
	reader *reader
	sm     *stackedmap.StackedMap
}

// New create state object reading committed values from src.
func New(src kv.Getter) *State {
	return newState(&reader{src: src})
}

func newState(r *reader) *State {
	s := &State{reader: r}
	s.sm = stackedmap.New(func(key any) (any, bool, error) {
		k := key.(storageKey)
		v, err := s.reader.get(k.addr, k.key)
		if err != nil {
			return nil, false, &Error{err}
		}
		return v, true, nil
	})
	// the base level holds all changes made to this state
	s.sm.Push()
	return s
}

// GetRawStorage returns the raw (encoded) storage value. Empty means unset.
func (s *State) GetRawStorage(addr plume.Address, key plume.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// SetRawStorage sets the raw storage value. Empty value clears the slot.
func (s *State) SetRawStorage(addr plume.Address, key plume.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, key}, bytes.Clone(raw))
}

// DecodeStorage loads the raw value of the slot and passes it to dec.
func (s *State) DecodeStorage(addr plume.Address, key plume.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// EncodeStorage stores the raw value produced by enc.
func (s *State) EncodeStorage(addr plume.Address, key plume.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// GetStorage returns a 32-byte word stored in the slot.
func (s *State) GetStorage(addr plume.Address, key plume.Bytes32) (plume.Bytes32, error) {
	var word plume.Bytes32
	err := s.DecodeStorage(addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		var content []byte
		if err := rlp.DecodeBytes(raw, &content); err != nil {
			return &Error{err}
		}
		word = plume.BytesToBytes32(content)
		return nil
	})
	return word, err
}

// SetStorage stores a 32-byte word in the slot. A zero word clears the slot.
func (s *State) SetStorage(addr plume.Address, key plume.Bytes32, value plume.Bytes32) {
	trimmed := bytes.TrimLeft(value[:], "\x00")
	if len(trimmed) == 0 {
		s.SetRawStorage(addr, key, nil)
		return
	}
	raw, _ := rlp.EncodeToBytes(trimmed)
	s.SetRawStorage(addr, key, raw)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 {
		panic("state: cannot revert the base level")
	}
	s.sm.PopTo(revision)
}

// Changes returns the latest value of every slot written to this state.
func (s *State) changes() map[storageKey][]byte {
	changes := make(map[storageKey][]byte)
	s.sm.Journal(func(k, v any) bool {
		changes[k.(storageKey)] = v.([]byte)
		return true
	})
	return changes
}

// Stage makes a stage object to commit changes.
func (s *State) Stage() *Stage {
	return &Stage{
		reader:  s.reader,
		changes: s.changes(),
	}
}
