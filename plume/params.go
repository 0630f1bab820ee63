// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package plume

import (
	"math/big"
)

// Constants of the staking engine.
const (
	BlockInterval uint64 = 2 // default time interval between two consecutive blocks, in seconds.

	MaxCommissionCap = 50 // percent of Precision a validator commission can never exceed.
)

var (
	// Precision is the fixed-point base used for rates, commissions and reward indices.
	Precision = big.NewInt(1e18)

	// NativeToken is the pseudo address of the chain native token.
	NativeToken = MustParseAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

	// StakingPool holds staked principal until it is withdrawn.
	StakingPool = BytesToAddress([]byte("staking-pool"))

	// TreasuryAccount holds reward funds distributed on claims.
	TreasuryAccount = BytesToAddress([]byte("reward-treasury"))
)

// Default governance params.
var (
	InitialMinStakeAmount         = new(big.Int).Set(Precision)               // 1 PLUME
	InitialMaxValidatorCommission = new(big.Int).Div(Precision, big.NewInt(2)) // 50%
)

// Default governance durations, in seconds.
const (
	InitialCooldownInterval        uint64 = 7 * 24 * 3600 // 7 days
	InitialMaxSlashVoteDuration    uint64 = 24 * 3600     // 1 day
	InitialCommissionClaimTimelock uint64 = 7 * 24 * 3600 // 7 days
)

// MaxCommission returns the hard upper bound of any commission, 50% of Precision.
func MaxCommission() *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(Precision, big.NewInt(MaxCommissionCap)), big.NewInt(100))
}
