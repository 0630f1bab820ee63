// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/reverts"
)

// Address owns the governance params storage.
var Address = plume.BytesToAddress([]byte("params"))

// Keys of governance params.
var (
	KeyMinStakeAmount          = plume.BytesToBytes32([]byte("min-stake-amount"))
	KeyCooldownInterval        = plume.BytesToBytes32([]byte("cooldown-interval"))
	KeyMaxSlashVoteDuration    = plume.BytesToBytes32([]byte("max-slash-vote-duration"))
	KeyMaxValidatorCommission  = plume.BytesToBytes32([]byte("max-validator-commission"))
	KeyCommissionClaimTimelock = plume.BytesToBytes32([]byte("commission-claim-timelock"))
)

var defaults = map[plume.Bytes32]*big.Int{
	KeyMinStakeAmount:          plume.InitialMinStakeAmount,
	KeyCooldownInterval:        new(big.Int).SetUint64(plume.InitialCooldownInterval),
	KeyMaxSlashVoteDuration:    new(big.Int).SetUint64(plume.InitialMaxSlashVoteDuration),
	KeyMaxValidatorCommission:  plume.InitialMaxValidatorCommission,
	KeyCommissionClaimTimelock: new(big.Int).SetUint64(plume.InitialCommissionClaimTimelock),
}

// Names maps param names used in configuration to keys.
var Names = map[string]plume.Bytes32{
	"minStakeAmount":          KeyMinStakeAmount,
	"cooldownInterval":        KeyCooldownInterval,
	"maxSlashVoteDuration":    KeyMaxSlashVoteDuration,
	"maxValidatorCommission":  KeyMaxValidatorCommission,
	"commissionClaimTimelock": KeyCommissionClaimTimelock,
}

// Params binder of the governance params storage.
// A param never set reads as its default value.
type Params struct {
	values *solidity.Mapping[plume.Bytes32, *big.Int]
}

func New(sctx *solidity.Context) *Params {
	return &Params{
		values: solidity.NewMapping[plume.Bytes32, *big.Int](sctx.WithAddress(Address), plume.Bytes32{}),
	}
}

// Get returns the value of the param.
func (p *Params) Get(key plume.Bytes32) (*big.Int, error) {
	set, err := p.values.Exists(key)
	if err != nil {
		return nil, err
	}
	if !set {
		def, ok := defaults[key]
		if !ok {
			return nil, errors.Errorf("unknown param %v", key)
		}
		return new(big.Int).Set(def), nil
	}
	return p.values.Get(key)
}

// Set stores the value of the param after checking it against the bounds of its key.
func (p *Params) Set(key plume.Bytes32, value *big.Int) error {
	if err := Validate(key, value); err != nil {
		return err
	}
	return p.values.Set(key, value)
}

// Validate checks value against the bounds of the param key.
func Validate(key plume.Bytes32, value *big.Int) error {
	if _, ok := defaults[key]; !ok {
		return reverts.ErrInvalidParam.Withf("unknown param %v", key)
	}
	if value == nil || value.Sign() < 0 {
		return reverts.ErrInvalidParam.Withf("param %v must be non-negative", key)
	}
	switch key {
	case KeyMaxValidatorCommission:
		if value.Cmp(plume.MaxCommission()) > 0 {
			return reverts.ErrInvalidMaxCommissionRate.Withf("%v exceeds %v", value, plume.MaxCommission())
		}
	case KeyCooldownInterval, KeyMaxSlashVoteDuration:
		// durations are added to block timestamps
		if value.Sign() == 0 || !value.IsUint64() {
			return reverts.ErrInvalidParam.Withf("param %v out of range: %v", key, value)
		}
	case KeyCommissionClaimTimelock:
		if !value.IsUint64() {
			return reverts.ErrInvalidParam.Withf("param %v out of range: %v", key, value)
		}
	}
	return nil
}

func (p *Params) getUint64(key plume.Bytes32) (uint64, error) {
	v, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Errorf("param %v overflows uint64", key)
	}
	return v.Uint64(), nil
}

func (p *Params) MinStakeAmount() (*big.Int, error) {
	return p.Get(KeyMinStakeAmount)
}

func (p *Params) MaxValidatorCommission() (*big.Int, error) {
	return p.Get(KeyMaxValidatorCommission)
}

// CooldownInterval returns the unstake cooldown, in seconds.
func (p *Params) CooldownInterval() (uint64, error) {
	return p.getUint64(KeyCooldownInterval)
}

// MaxSlashVoteDuration returns the maximum lifetime of a slash vote, in seconds.
func (p *Params) MaxSlashVoteDuration() (uint64, error) {
	return p.getUint64(KeyMaxSlashVoteDuration)
}

// CommissionClaimTimelock returns the delay between requesting and finalizing a commission claim, in seconds.
func (p *Params) CommissionClaimTimelock() (uint64, error) {
	return p.getUint64(KeyCommissionClaimTimelock)
}
