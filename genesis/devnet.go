// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/plumestake/stakerd/plume"
)

// DevAccount is a well known account of the dev network.
type DevAccount struct {
	Name    string
	Address plume.Address
}

var devAccounts = func() []DevAccount {
	names := []string{"admin", "reward-manager", "timelock", "validator-1", "validator-2", "validator-3", "staker-1", "staker-2"}
	accounts := make([]DevAccount, 0, len(names))
	for _, name := range names {
		hash := plume.Keccak256([]byte("devnet/" + name))
		accounts = append(accounts, DevAccount{name, plume.BytesToAddress(hash[12:])})
	}
	return accounts
}()

// DevAccounts returns the pre-funded accounts of the dev network.
func DevAccounts() []DevAccount {
	return devAccounts
}

// DevAccountOf returns the address of the dev account with the given name.
func DevAccountOf(name string) plume.Address {
	for _, a := range devAccounts {
		if a.Name == name {
			return a.Address
		}
	}
	panic(fmt.Sprintf("no dev account %q", name))
}

func units(n int64) *math.HexOrDecimal256 {
	v := new(big.Int).Mul(big.NewInt(n), plume.Precision)
	return (*math.HexOrDecimal256)(v)
}

// DevRewardToken is the reward token listed by the dev network, besides the native token.
var DevRewardToken = plume.BytesToAddress([]byte("dev-reward-token"))

// NewDevnet creates the dev network genesis: three validators, native and one extra
// reward token, and funded stakers.
func NewDevnet(launchTime uint64) *Genesis {
	admin := DevAccountOf("admin")
	gen := &Genesis{
		Name:      "devnet",
		Timestamp: launchTime,
		Params: map[string]*math.HexOrDecimal256{
			"cooldownInterval": (*math.HexOrDecimal256)(big.NewInt(60)),
		},
		Roles: map[string][]plume.Address{
			"ADMIN_ROLE":          {admin},
			"REWARD_MANAGER_ROLE": {admin, DevAccountOf("reward-manager")},
			"TIMELOCK_ROLE":       {admin, DevAccountOf("timelock")},
		},
		Balances: []Balance{
			{plume.NativeToken, plume.TreasuryAccount, units(1_000_000)},
			{DevRewardToken, plume.TreasuryAccount, units(1_000_000)},
		},
		RewardTokens: []RewardToken{
			{plume.NativeToken, (*math.HexOrDecimal256)(big.NewInt(1e15)), units(1)},
			{DevRewardToken, (*math.HexOrDecimal256)(big.NewInt(1e16)), units(1)},
		},
	}
	for _, a := range devAccounts {
		gen.Balances = append(gen.Balances, Balance{plume.NativeToken, a.Address, units(10_000)})
	}
	for i := 1; i <= 3; i++ {
		owner := DevAccountOf(fmt.Sprintf("validator-%d", i))
		gen.Validators = append(gen.Validators, Validator{
			ID:          plume.ValidatorID(i),
			Commission:  (*math.HexOrDecimal256)(new(big.Int).Div(plume.Precision, big.NewInt(int64(10*i)))),
			Admin:       owner,
			Withdraw:    owner,
			MaxCapacity: units(0),
		})
	}
	return gen
}
