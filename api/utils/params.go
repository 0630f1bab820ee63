// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"math"
	"strconv"

	"github.com/plumestake/stakerd/plume"
)

// DefaultPageLimit is the page size used when a request sets none.
const DefaultPageLimit = 100

// ParseValidatorID parses a non-zero validator id.
func ParseValidatorID(s string) (plume.ValidatorID, error) {
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("zero validator id")
	}
	return plume.ValidatorID(n), nil
}

// ParseAddress parses an address, allowing an empty string when optional.
func ParseAddress(s string, optional bool) (plume.Address, error) {
	if s == "" && optional {
		return plume.Address{}, nil
	}
	addr, err := plume.ParseAddress(s)
	if err != nil {
		return plume.Address{}, err
	}
	return *addr, nil
}

// ParseBlockNumber parses a block number, where "best" and the empty string mean the best block.
// The second return is false for the best block.
func ParseBlockNumber(s string) (uint64, bool, error) {
	if s == "" || s == "best" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// ParseLimit parses a page size, bounded by max.
func ParseLimit(s string, max int) (int, error) {
	if s == "" {
		return min(DefaultPageLimit, max), nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	if n == 0 || n > math.MaxInt32 || int(n) > max {
		return 0, errors.New("limit out of range")
	}
	return int(n), nil
}
