// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/kv"
)

// Stage abstracts changes on the storage.
type Stage struct {
	reader  *reader
	changes map[storageKey][]byte
}

// Len returns the count of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes into the putter. Empty values are deleted.
func (s *Stage) Commit(putter kv.Putter) error {
	for k, v := range s.changes {
		dbKey := storageDBKey(k.addr, k.key)
		if len(v) == 0 {
			if err := putter.Delete(dbKey); err != nil {
				return errors.Wrap(err, "delete storage")
			}
			continue
		}
		if err := putter.Put(dbKey, v); err != nil {
			return errors.Wrap(err, "put storage")
		}
	}
	return nil
}

// Applied refreshes the read cache after the changes are persisted.
func (s *Stage) Applied() {
	for k, v := range s.changes {
		s.reader.update(k.addr, k.key, v)
	}
}
