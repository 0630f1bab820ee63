// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"slices"

	"github.com/qianbin/directcache"

	"github.com/plumestake/stakerd/kv"
	"github.com/plumestake/stakerd/plume"
)

// reader loads committed storage values, through an optional cache.
type reader struct {
	src   kv.Getter
	cache *directcache.Cache
}

func storageDBKey(addr plume.Address, key plume.Bytes32) []byte {
	k := make([]byte, 0, plume.AddressLength+32)
	k = append(k, addr[:]...)
	return append(k, key[:]...)
}

func (r *reader) get(addr plume.Address, key plume.Bytes32) ([]byte, error) {
	dbKey := storageDBKey(addr, key)

	if r.cache != nil {
		var cached []byte
		if r.cache.AdvGet(dbKey, func(val []byte) {
			cached = slices.Clone(val)
		}, false) {
			cacheStats.Hit()
			return cached, nil
		}
		cacheStats.Miss()
	}

	val, err := kv.GetOrNil(r.src, dbKey)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Set(dbKey, val)
	}
	return val, nil
}

// update refreshes the cache after values are committed.
func (r *reader) update(addr plume.Address, key plume.Bytes32, val []byte) {
	if r.cache != nil {
		r.cache.Set(storageDBKey(addr, key), val)
	}
}
