// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker/checkpoints"
	"github.com/plumestake/stakerd/staker/ledger"
	"github.com/plumestake/stakerd/staker/rewards"
	"github.com/plumestake/stakerd/staker/validation"
)

func amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}

type Validator struct {
	ID              plume.ValidatorID     `json:"id"`
	Active          bool                  `json:"active"`
	Slashed         bool                  `json:"slashed"`
	SlashedAt       uint64                `json:"slashedAt,omitempty"`
	Commission      *math.HexOrDecimal256 `json:"commission"`
	MaxCapacity     *math.HexOrDecimal256 `json:"maxCapacity"`
	TotalDelegated  *math.HexOrDecimal256 `json:"totalDelegated"`
	TotalCooling    *math.HexOrDecimal256 `json:"totalCooling"`
	AdminAddress    plume.Address         `json:"adminAddress"`
	WithdrawAddress plume.Address         `json:"withdrawAddress"`
	AddedAt         uint64                `json:"addedAt"`
}

func convertValidator(v *validation.Validator) *Validator {
	return &Validator{
		ID:              v.ID,
		Active:          v.Active,
		Slashed:         v.Slashed,
		SlashedAt:       v.SlashedAt,
		Commission:      amount(v.Commission),
		MaxCapacity:     amount(v.MaxCapacity),
		TotalDelegated:  amount(v.TotalDelegated),
		TotalCooling:    amount(v.TotalCooling),
		AdminAddress:    v.AdminAddress,
		WithdrawAddress: v.WithdrawAddress,
		AddedAt:         v.AddedAt,
	}
}

type Staker struct {
	Address  plume.Address         `json:"address"`
	Stake    *math.HexOrDecimal256 `json:"stake"`
	Cooldown *Cooldown             `json:"cooldown,omitempty"`
}

type Cooldown struct {
	Amount  *math.HexOrDecimal256 `json:"amount"`
	EndTime uint64                `json:"endTime"`
}

func convertCooldown(c *ledger.Cooldown) *Cooldown {
	if c.IsEmpty() {
		return nil
	}
	return &Cooldown{amount(c.Amount), c.EndTime}
}

type StakersPage struct {
	Stakers []*Staker      `json:"stakers"`
	Next    *plume.Address `json:"next,omitempty"`
}

type Reward struct {
	Token             plume.Address         `json:"token"`
	CumulativeIndex   *math.HexOrDecimal256 `json:"cumulativeIndex"`
	LastUpdate        uint64                `json:"lastUpdate"`
	AccruedCommission *math.HexOrDecimal256 `json:"accruedCommission"`
	PendingClaim      *Cooldown             `json:"pendingClaim,omitempty"`
}

func convertReward(token plume.Address, vr *rewards.ValidatorReward, claim *rewards.CommissionClaim) *Reward {
	r := &Reward{
		Token:             token,
		CumulativeIndex:   amount(vr.CumulativeIndex),
		LastUpdate:        vr.LastUpdate,
		AccruedCommission: amount(vr.AccruedCommission),
	}
	if !claim.IsEmpty() {
		r.PendingClaim = &Cooldown{amount(claim.Amount), claim.ReadyAt}
	}
	return r
}

type Checkpoint struct {
	Timestamp       uint64                `json:"timestamp"`
	Rate            *math.HexOrDecimal256 `json:"rate"`
	CumulativeIndex *math.HexOrDecimal256 `json:"cumulativeIndex"`
}

func convertCheckpoint(cp *checkpoints.Checkpoint) *Checkpoint {
	return &Checkpoint{cp.Timestamp, amount(cp.Rate), amount(cp.CumulativeIndex)}
}

type Vote struct {
	Voter      plume.ValidatorID `json:"voter"`
	Expiration uint64            `json:"expiration"`
}
