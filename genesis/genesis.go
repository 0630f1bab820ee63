// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial state of a staking network.
package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/plumestake/stakerd/acl"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker"
	"github.com/plumestake/stakerd/staker/params"
	"github.com/plumestake/stakerd/state"
)

// Genesis is the initial configuration of the engine state.
type Genesis struct {
	Name         string                           `yaml:"name" json:"name"`
	Timestamp    uint64                           `yaml:"timestamp" json:"timestamp"`
	Params       map[string]*math.HexOrDecimal256 `yaml:"params,omitempty" json:"params,omitempty"`
	Roles        map[string][]plume.Address       `yaml:"roles,omitempty" json:"roles,omitempty"`
	Balances     []Balance                        `yaml:"balances,omitempty" json:"balances,omitempty"`
	RewardTokens []RewardToken                    `yaml:"rewardTokens,omitempty" json:"rewardTokens,omitempty"`
	Validators   []Validator                      `yaml:"validators,omitempty" json:"validators,omitempty"`
}

// Balance mints Amount of Token to Account.
type Balance struct {
	Token   plume.Address         `yaml:"token" json:"token"`
	Account plume.Address         `yaml:"account" json:"account"`
	Amount  *math.HexOrDecimal256 `yaml:"amount" json:"amount"`
}

type RewardToken struct {
	Token   plume.Address         `yaml:"token" json:"token"`
	Rate    *math.HexOrDecimal256 `yaml:"rate" json:"rate"`
	MaxRate *math.HexOrDecimal256 `yaml:"maxRate" json:"maxRate"`
}

type Validator struct {
	ID          plume.ValidatorID     `yaml:"id" json:"id"`
	Commission  *math.HexOrDecimal256 `yaml:"commission" json:"commission"`
	Admin       plume.Address         `yaml:"admin" json:"admin"`
	Withdraw    plume.Address         `yaml:"withdraw" json:"withdraw"`
	MaxCapacity *math.HexOrDecimal256 `yaml:"maxCapacity" json:"maxCapacity"`
}

// Load reads a genesis from a YAML file. JSON, being YAML, works too.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var gen Genesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

func bigOf(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(v))
}

// Validate checks the references a genesis makes, without building it.
func (g *Genesis) Validate() error {
	for name, value := range g.Params {
		key, ok := params.Names[name]
		if !ok {
			return fmt.Errorf("unknown param %q", name)
		}
		if err := params.Validate(key, bigOf(value)); err != nil {
			return fmt.Errorf("param %q: %w", name, err)
		}
	}
	for name := range g.Roles {
		if _, ok := acl.Names[name]; !ok {
			return fmt.Errorf("unknown role %q", name)
		}
	}
	for i, b := range g.Balances {
		if b.Amount == nil || (*big.Int)(b.Amount).Sign() <= 0 {
			return fmt.Errorf("balances[%d]: amount must be positive", i)
		}
	}
	seen := make(map[plume.ValidatorID]bool)
	for i, v := range g.Validators {
		if seen[v.ID] {
			return fmt.Errorf("validators[%d]: duplicated id %v", i, v.ID)
		}
		seen[v.ID] = true
	}
	return nil
}

// ID identifies the network the genesis creates.
func (g *Genesis) ID() plume.Bytes32 {
	data, err := json.Marshal(g)
	if err != nil {
		panic(err)
	}
	return plume.Blake2b(data)
}

// Build writes the initial state. Roles are granted first, then params set, balances
// minted, reward tokens listed and validators added, in the given order.
func (g *Genesis) Build(st *state.State) error {
	if err := g.Validate(); err != nil {
		return err
	}

	roles := acl.New(solidity.NewContext(plume.Address{}, st, g.Timestamp, nil))
	for name, accounts := range g.Roles {
		for _, account := range accounts {
			if _, err := roles.Grant(acl.Names[name], account); err != nil {
				return errors.Wrapf(err, "grant %v", name)
			}
		}
	}

	engine := staker.New(st, g.Timestamp, nil)
	for name, value := range g.Params {
		if err := engine.SetParam(params.Names[name], bigOf(value)); err != nil {
			return errors.Wrapf(err, "set param %v", name)
		}
	}
	for _, b := range g.Balances {
		if err := engine.Bank().Mint(b.Token, b.Account, bigOf(b.Amount)); err != nil {
			return errors.Wrapf(err, "mint %v", b.Account)
		}
	}
	for _, t := range g.RewardTokens {
		if err := engine.AddRewardToken(t.Token, bigOf(t.Rate), bigOf(t.MaxRate)); err != nil {
			return errors.Wrapf(err, "add reward token %v", t.Token)
		}
	}
	for _, v := range g.Validators {
		if err := engine.AddValidator(v.ID, bigOf(v.Commission), v.Admin, v.Withdraw, bigOf(v.MaxCapacity)); err != nil {
			return errors.Wrapf(err, "add validator %v", v.ID)
		}
	}
	return nil
}
