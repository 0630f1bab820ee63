// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validation

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
)

// Validator is the registry record of a validator. Records are never deleted.
type Validator struct {
	ID              plume.ValidatorID
	Active          bool
	Slashed         bool
	SlashedAt       uint64   // block time of the slash, zero if not slashed
	Commission      *big.Int // fraction of accrued rewards kept by the validator, 1e18 base
	MaxCapacity     *big.Int // zero means unbounded
	TotalDelegated  *big.Int // sum of the active stake of its stakers
	TotalCooling    *big.Int // sum of the cooldowns of its stakers
	AdminAddress    plume.Address
	WithdrawAddress plume.Address
	AddedAt         uint64
}

// IsEmpty returns true if no validator is registered under the id.
func (v *Validator) IsEmpty() bool {
	return v == nil || v.ID.IsZero()
}

// Accruing returns true if the stake on the validator earns rewards.
func (v *Validator) Accruing() bool {
	return v.Active && !v.Slashed
}

// AccrualEnd returns the last block time rewards can accrue at, given the current time.
func (v *Validator) AccrualEnd(now uint64) uint64 {
	if v.Slashed && v.SlashedAt < now {
		return v.SlashedAt
	}
	return now
}

// HasCapacityFor returns true if the extra stake fits under the max capacity.
func (v *Validator) HasCapacityFor(amount *big.Int) bool {
	if v.MaxCapacity.Sign() == 0 {
		return true
	}
	return new(big.Int).Add(v.TotalDelegated, amount).Cmp(v.MaxCapacity) <= 0
}

func (v *Validator) normalize() {
	if v.Commission == nil {
		v.Commission = new(big.Int)
	}
	if v.MaxCapacity == nil {
		v.MaxCapacity = new(big.Int)
	}
	if v.TotalDelegated == nil {
		v.TotalDelegated = new(big.Int)
	}
	if v.TotalCooling == nil {
		v.TotalCooling = new(big.Int)
	}
}
