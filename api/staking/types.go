// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

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

type Totals struct {
	Staked       *math.HexOrDecimal256 `json:"staked"`
	Cooling      *math.HexOrDecimal256 `json:"cooling"`
	Withdrawable *math.HexOrDecimal256 `json:"withdrawable"`
	PoolBalance  *math.HexOrDecimal256 `json:"poolBalance"`
}

type Token struct {
	Address        plume.Address         `json:"address"`
	Active         bool                  `json:"active"`
	RewardRate     *math.HexOrDecimal256 `json:"rewardRate"`
	MaxRewardRate  *math.HexOrDecimal256 `json:"maxRewardRate"`
	AddedAt        uint64                `json:"addedAt"`
	TotalClaimable *math.HexOrDecimal256 `json:"totalClaimable"`
	Treasury       *math.HexOrDecimal256 `json:"treasury"`
}
