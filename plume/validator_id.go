// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package plume

import (
	"encoding/binary"
	"strconv"
)

// ValidatorID identifies a validator. Zero is reserved and never assigned.
type ValidatorID uint16

// Bytes returns the big-endian encoding of the id.
func (id ValidatorID) Bytes() []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(id))
	return b[:]
}

// IsZero returns whether the id is the reserved zero value.
func (id ValidatorID) IsZero() bool {
	return id == 0
}

func (id ValidatorID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseValidatorID parses a decimal validator id.
func ParseValidatorID(s string) (ValidatorID, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return ValidatorID(v), nil
}
