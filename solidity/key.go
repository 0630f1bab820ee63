// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
)

// CompositeKey is a mapping key made of several fixed-length parts.
type CompositeKey []byte

func (k CompositeKey) Bytes() []byte { return k }

// NewKey concatenates the parts into a composite key.
func NewKey(parts ...Key) CompositeKey {
	var k CompositeKey
	for _, p := range parts {
		k = append(k, p.Bytes()...)
	}
	return k
}

// Uint64Key is an uint64 mapping key.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}
