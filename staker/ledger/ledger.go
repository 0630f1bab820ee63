// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/globalstats"
	"github.com/plumestake/stakerd/staker/params"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/staker/validation"
)

// StakeInfo is the principal of a user summed over all validators.
type StakeInfo struct {
	Staked *big.Int // earning rewards
	Cooled *big.Int // in cooldown, matured or not
	Parked *big.Int // withdrawable
}

// Cooldown is the principal a user unstaked from one validator, locked until EndTime.
type Cooldown struct {
	Amount  *big.Int
	EndTime uint64
}

// IsEmpty returns true if nothing is cooling.
func (c *Cooldown) IsEmpty() bool {
	return c == nil || c.Amount == nil || c.Amount.Sign() == 0
}

// MaturedFor returns true if the cooldown is withdrawable at now. Cooldowns on a slashed
// validator only mature if they ended by the slash.
func (c *Cooldown) MaturedFor(v *validation.Validator, now uint64) bool {
	if c.IsEmpty() || c.EndTime > now {
		return false
	}
	return !v.Slashed || c.EndTime <= v.SlashedAt
}

var (
	slotStakeInfos = plume.BytesToBytes32([]byte("stake-infos"))
	slotCooldowns  = plume.BytesToBytes32([]byte("cooldowns"))
)

// Service is the stake ledger, the per-user state machine of principal:
// staked -> cooling -> parked -> withdrawn, and back to staked on restake.
type Service struct {
	sctx        *solidity.Context
	params      *params.Params
	validations *validation.Service
	stats       *globalstats.Service

	infos     *solidity.Mapping[plume.Address, *StakeInfo]
	cooldowns *solidity.Mapping[solidity.CompositeKey, *Cooldown]
}

func New(sctx *solidity.Context, params *params.Params, validations *validation.Service, stats *globalstats.Service) *Service {
	return &Service{
		sctx:        sctx,
		params:      params,
		validations: validations,
		stats:       stats,

		infos:     solidity.NewMapping[plume.Address, *StakeInfo](sctx, slotStakeInfos),
		cooldowns: solidity.NewMapping[solidity.CompositeKey, *Cooldown](sctx, slotCooldowns),
	}
}

// GetStakeInfo returns the global principal of user.
func (s *Service) GetStakeInfo(user plume.Address) (*StakeInfo, error) {
	info, err := s.infos.Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake info")
	}
	if info.Staked == nil {
		info.Staked = new(big.Int)
	}
	if info.Cooled == nil {
		info.Cooled = new(big.Int)
	}
	if info.Parked == nil {
		info.Parked = new(big.Int)
	}
	return info, nil
}

func (s *Service) setStakeInfo(user plume.Address, info *StakeInfo) error {
	return s.infos.Set(user, info)
}

// GetCooldown returns the cooldown of user on the validator.
func (s *Service) GetCooldown(user plume.Address, id plume.ValidatorID) (*Cooldown, error) {
	cd, err := s.cooldowns.Get(solidity.NewKey(user, id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cooldown")
	}
	if cd.Amount == nil {
		cd.Amount = new(big.Int)
	}
	return cd, nil
}

func (s *Service) setCooldown(user plume.Address, id plume.ValidatorID, cd *Cooldown) error {
	if cd.IsEmpty() {
		s.cooldowns.Delete(solidity.NewKey(user, id))
		return nil
	}
	return s.cooldowns.Set(solidity.NewKey(user, id), cd)
}

// Stake adds amount to the stake of user on the validator.
func (s *Service) Stake(user plume.Address, id plume.ValidatorID, amount *big.Int) error {
	info, err := s.GetStakeInfo(user)
	if err != nil {
		return err
	}
	if err := s.validations.IncreaseStake(user, id, amount); err != nil {
		return err
	}
	info.Staked.Add(info.Staked, amount)
	if err := s.setStakeInfo(user, info); err != nil {
		return err
	}
	return s.stats.AddStaked(amount)
}

// Unstake moves amount of the stake of user on the validator into cooldown. A matured
// cooldown is parked first; an unmatured one is merged, and the merged amount matures
// a full interval from now.
func (s *Service) Unstake(user plume.Address, id plume.ValidatorID, amount *big.Int) (*Cooldown, error) {
	staked, err := s.validations.UserStake(user, id)
	if err != nil {
		return nil, err
	}
	if staked.Cmp(amount) < 0 {
		return nil, reverts.ErrInsufficientFunds.Withf("staked %v, requested %v", staked, amount)
	}
	v, err := s.validations.GetExistingValidator(id)
	if err != nil {
		return nil, err
	}
	interval, err := s.params.CooldownInterval()
	if err != nil {
		return nil, err
	}

	now := s.sctx.Now()
	cd, err := s.GetCooldown(user, id)
	if err != nil {
		return nil, err
	}
	if cd.MaturedFor(v, now) {
		if err := s.park(user, id, cd); err != nil {
			return nil, err
		}
		cd = &Cooldown{Amount: new(big.Int)}
	}

	if err := s.validations.DecreaseStake(user, id, amount); err != nil {
		return nil, err
	}
	if err := s.validations.AdjustCooling(id, amount); err != nil {
		return nil, err
	}
	if err := s.stats.StartCooldown(amount); err != nil {
		return nil, err
	}
	info, err := s.GetStakeInfo(user)
	if err != nil {
		return nil, err
	}
	info.Staked = floorSub(info.Staked, amount)
	info.Cooled.Add(info.Cooled, amount)
	if err := s.setStakeInfo(user, info); err != nil {
		return nil, err
	}

	cd.Amount.Add(cd.Amount, amount)
	cd.EndTime = now + interval
	if err := s.setCooldown(user, id, cd); err != nil {
		return nil, err
	}
	return cd, nil
}

// park moves a matured cooldown to the parked balance of user.
func (s *Service) park(user plume.Address, id plume.ValidatorID, cd *Cooldown) error {
	amount := new(big.Int).Set(cd.Amount)
	info, err := s.GetStakeInfo(user)
	if err != nil {
		return err
	}
	info.Cooled = floorSub(info.Cooled, amount)
	info.Parked.Add(info.Parked, amount)
	if err := s.setStakeInfo(user, info); err != nil {
		return err
	}
	if err := s.validations.AdjustCooling(id, new(big.Int).Neg(amount)); err != nil {
		return err
	}
	if err := s.stats.Mature(amount); err != nil {
		return err
	}
	return s.setCooldown(user, id, &Cooldown{})
}

// Restake moves amount back to the stake of user on the validator, taken from the
// cooldown on that validator first, then from the parked balance.
func (s *Service) Restake(user plume.Address, id plume.ValidatorID, amount *big.Int) error {
	cd, err := s.GetCooldown(user, id)
	if err != nil {
		return err
	}
	info, err := s.GetStakeInfo(user)
	if err != nil {
		return err
	}

	fromCooling := new(big.Int).Set(amount)
	if fromCooling.Cmp(cd.Amount) > 0 {
		fromCooling.Set(cd.Amount)
	}
	fromParked := new(big.Int).Sub(amount, fromCooling)
	if fromParked.Cmp(info.Parked) > 0 {
		return reverts.ErrInsufficientCooledAndParkedBalance.Withf(
			"requested %v, cooling %v, parked %v", amount, cd.Amount, info.Parked)
	}

	if fromCooling.Sign() > 0 {
		cd.Amount.Sub(cd.Amount, fromCooling)
		if err := s.setCooldown(user, id, cd); err != nil {
			return err
		}
		if err := s.validations.AdjustCooling(id, new(big.Int).Neg(fromCooling)); err != nil {
			return err
		}
	}
	if err := s.stats.Restake(fromCooling, fromParked); err != nil {
		return err
	}
	if err := s.validations.IncreaseStake(user, id, amount); err != nil {
		return err
	}

	info.Cooled = floorSub(info.Cooled, fromCooling)
	info.Parked.Sub(info.Parked, fromParked)
	info.Staked.Add(info.Staked, amount)
	return s.setStakeInfo(user, info)
}

// Withdrawable returns what Withdraw would pay out now.
func (s *Service) Withdrawable(user plume.Address) (*big.Int, error) {
	info, err := s.GetStakeInfo(user)
	if err != nil {
		return nil, err
	}
	total := new(big.Int).Set(info.Parked)
	err = s.maturedCooldowns(user, func(_ plume.ValidatorID, cd *Cooldown) error {
		total.Add(total, cd.Amount)
		return nil
	})
	return total, err
}

func (s *Service) maturedCooldowns(user plume.Address, cb func(plume.ValidatorID, *Cooldown) error) error {
	ids, err := s.validations.UserValidators(user)
	if err != nil {
		return err
	}
	now := s.sctx.Now()
	for _, id := range ids {
		v, err := s.validations.GetExistingValidator(id)
		if err != nil {
			return err
		}
		cd, err := s.GetCooldown(user, id)
		if err != nil {
			return err
		}
		if cd.MaturedFor(v, now) {
			if err := cb(id, cd); err != nil {
				return err
			}
		}
	}
	return nil
}

// Withdraw parks every matured cooldown of user, then empties the parked balance and
// returns the amount to pay out. Nothing withdrawable is not an error.
func (s *Service) Withdraw(user plume.Address) (*big.Int, error) {
	if err := s.maturedCooldowns(user, func(id plume.ValidatorID, cd *Cooldown) error {
		return s.park(user, id, cd)
	}); err != nil {
		return nil, err
	}

	info, err := s.GetStakeInfo(user)
	if err != nil {
		return nil, err
	}
	amount := info.Parked
	if amount.Sign() == 0 {
		return amount, nil
	}
	info.Parked = new(big.Int)
	if err := s.setStakeInfo(user, info); err != nil {
		return nil, err
	}
	if err := s.stats.Withdraw(amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// ClearSlashed drops the principal of user on a slashed validator. A cooldown that matured
// by the slash is parked and stays withdrawable; the stake and any other cooldown are
// forfeited. It returns the forfeited stake and cooldown.
func (s *Service) ClearSlashed(user plume.Address, v *validation.Validator) (*big.Int, *big.Int, error) {
	staked, err := s.validations.UserStake(user, v.ID)
	if err != nil {
		return nil, nil, err
	}
	cd, err := s.GetCooldown(user, v.ID)
	if err != nil {
		return nil, nil, err
	}

	forfeitedCooling := new(big.Int)
	if cd.MaturedFor(v, v.SlashedAt) {
		if err := s.park(user, v.ID, cd); err != nil {
			return nil, nil, err
		}
	} else if !cd.IsEmpty() {
		forfeitedCooling.Set(cd.Amount)
		if err := s.setCooldown(user, v.ID, &Cooldown{}); err != nil {
			return nil, nil, err
		}
		if err := s.validations.AdjustCooling(v.ID, new(big.Int).Neg(forfeitedCooling)); err != nil {
			return nil, nil, err
		}
	}

	if staked.Sign() > 0 {
		if err := s.validations.DecreaseStake(user, v.ID, staked); err != nil {
			return nil, nil, err
		}
	}
	if err := s.stats.Forfeit(staked, forfeitedCooling); err != nil {
		return nil, nil, err
	}

	info, err := s.GetStakeInfo(user)
	if err != nil {
		return nil, nil, err
	}
	info.Staked = floorSub(info.Staked, staked)
	info.Cooled = floorSub(info.Cooled, forfeitedCooling)
	if err := s.setStakeInfo(user, info); err != nil {
		return nil, nil, err
	}
	return staked, forfeitedCooling, nil
}

func floorSub(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}
