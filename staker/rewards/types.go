// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
)

// Token is the reward configuration of a token. Removed tokens keep their record
// with a zero rate, so pending rewards can still be settled and claimed.
type Token struct {
	Active        bool
	RewardRate    *big.Int // reward per second, per validator
	MaxRewardRate *big.Int
	AddedAt       uint64
}

// ValidatorReward is the accrual state of a (validator, token) pair.
type ValidatorReward struct {
	CumulativeIndex   *big.Int // reward per unit staked since genesis, 1e18 base
	LastUpdate        uint64
	AccruedCommission *big.Int // commission not yet requested for claim
}

// UserReward is the settlement state of a (user, validator, token) triple.
type UserReward struct {
	Paid             *big.Int // cumulative index at the last settlement
	LastSettlement   uint64
	CommissionCursor uint64   // number of commission checkpoints applied
	Claimable        *big.Int // settled, unclaimed reward
}

// CommissionClaim is a timelocked request to pay out accrued commission.
type CommissionClaim struct {
	Amount  *big.Int
	ReadyAt uint64
}

// IsEmpty returns true if no claim is pending.
func (c *CommissionClaim) IsEmpty() bool {
	return c == nil || c.Amount == nil || c.Amount.Sign() == 0
}

// Claimed is the amount paid for a token.
type Claimed struct {
	Token  plume.Address
	Amount *big.Int
}

func zeroIfNil(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}

func (t *Token) normalize() {
	t.RewardRate = zeroIfNil(t.RewardRate)
	t.MaxRewardRate = zeroIfNil(t.MaxRewardRate)
}

func (v *ValidatorReward) normalize() {
	v.CumulativeIndex = zeroIfNil(v.CumulativeIndex)
	v.AccruedCommission = zeroIfNil(v.AccruedCommission)
}

func (u *UserReward) normalize() {
	u.Paid = zeroIfNil(u.Paid)
	u.Claimable = zeroIfNil(u.Claimable)
}
