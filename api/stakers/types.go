// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/plumestake/stakerd/plume"
)

func amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}

// Account summarizes the position of one staker.
type Account struct {
	Address      plume.Address         `json:"address"`
	Staked       *math.HexOrDecimal256 `json:"staked"`
	Cooling      *math.HexOrDecimal256 `json:"cooling"`
	Parked       *math.HexOrDecimal256 `json:"parked"`
	Withdrawable *math.HexOrDecimal256 `json:"withdrawable"`
	Positions    []*Position           `json:"positions"`
	Rewards      []*Pending            `json:"rewards"`
}

// Position is the stake of a staker on one validator.
type Position struct {
	ValidatorID     plume.ValidatorID     `json:"validatorId"`
	Stake           *math.HexOrDecimal256 `json:"stake"`
	CooldownAmount  *math.HexOrDecimal256 `json:"cooldownAmount"`
	CooldownEndTime uint64                `json:"cooldownEndTime,omitempty"`
}

type Pending struct {
	Token  plume.Address         `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Settlement is the reward bookkeeping of a staker on one validator for one token.
type Settlement struct {
	Paid             *math.HexOrDecimal256 `json:"paid"`
	LastSettlement   uint64                `json:"lastSettlement"`
	CommissionCursor uint64                `json:"commissionCursor"`
	Claimable        *math.HexOrDecimal256 `json:"claimable"`
}

type Page struct {
	Stakers []plume.Address `json:"stakers"`
	Next    *plume.Address  `json:"next,omitempty"`
}
