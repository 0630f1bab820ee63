// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/ledger"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/staker/validation"
)

// Stake delegates amount of the native token of user to a validator.
func (s *Staker) Stake(user plume.Address, id plume.ValidatorID, amount *big.Int) error {
	return s.StakeOnBehalf(user, user, id, amount)
}

// StakeOnBehalf delegates amount paid by sender to a validator, credited to user.
func (s *Staker) StakeOnBehalf(sender, user plume.Address, id plume.ValidatorID, amount *big.Int) error {
	logger.Debug("staking", "sender", sender, "user", user, "validatorID", id, "amount", amount)

	err := s.atomic(func() error {
		if user.IsZero() {
			return reverts.ErrZeroAddress
		}
		minStake, err := s.params.MinStakeAmount()
		if err != nil {
			return err
		}
		if amount.Cmp(minStake) < 0 {
			return reverts.ErrInvalidAmount.Withf("%v below minimum %v", amount, minStake)
		}
		return s.stake(sender, user, id, amount)
	})
	if err != nil {
		logger.Info("stake failed", "user", user, "validatorID", id, "error", err)
		return err
	}

	logger.Info("staked", "user", user, "validatorID", id)
	return nil
}

func (s *Staker) stake(payer, user plume.Address, id plume.ValidatorID, amount *big.Int) error {
	v, err := s.validationService.GetExistingValidator(id)
	if err != nil {
		return err
	}
	if err := checkStakeable(v); err != nil {
		return err
	}
	if !v.HasCapacityFor(amount) {
		return reverts.ErrExceedsValidatorCapacity.Withf("validator %v delegated %v, capacity %v", id, v.TotalDelegated, v.MaxCapacity)
	}

	// settle at the old stake before it changes
	if err := s.rewardService.UpdateRewardsForValidator(user, id); err != nil {
		return err
	}
	if err := s.bank.Transfer(plume.NativeToken, payer, plume.StakingPool, amount); err != nil {
		return err
	}
	if err := s.ledgerService.Stake(user, id, amount); err != nil {
		return err
	}
	if err := s.validationService.AddStakerToValidator(user, id); err != nil {
		return err
	}
	s.emit("Staked", id, user, plume.NativeToken, amount)
	return nil
}

func checkStakeable(v *validation.Validator) error {
	if v.Slashed {
		return reverts.ErrValidatorAlreadySlashed.Withf("validator %v", v.ID)
	}
	if !v.Active {
		return reverts.ErrValidatorInactive.Withf("validator %v", v.ID)
	}
	return nil
}

// Unstake moves amount of the stake of user on a validator into cooldown.
func (s *Staker) Unstake(user plume.Address, id plume.ValidatorID, amount *big.Int) (cd *ledger.Cooldown, err error) {
	logger.Debug("unstaking", "user", user, "validatorID", id, "amount", amount)

	err = s.atomic(func() error {
		if amount.Sign() <= 0 {
			return reverts.ErrInvalidAmount
		}
		v, err := s.validationService.GetExistingValidator(id)
		if err != nil {
			return err
		}
		if v.Slashed {
			return reverts.ErrValidatorAlreadySlashed.Withf("validator %v", id)
		}
		if err := s.rewardService.UpdateRewardsForValidator(user, id); err != nil {
			return err
		}
		if cd, err = s.ledgerService.Unstake(user, id, amount); err != nil {
			return err
		}
		s.emit("Unstaked", id, user, plume.NativeToken, amount)
		return nil
	})
	if err != nil {
		logger.Info("unstake failed", "user", user, "validatorID", id, "error", err)
		return nil, err
	}

	logger.Info("unstaked", "user", user, "validatorID", id, "cooldownEnd", cd.EndTime)
	return cd, nil
}

// Restake moves amount from the cooldown on a validator, then from the parked balance,
// back to the stake of user on that validator.
func (s *Staker) Restake(user plume.Address, id plume.ValidatorID, amount *big.Int) error {
	logger.Debug("restaking", "user", user, "validatorID", id, "amount", amount)

	err := s.atomic(func() error {
		if amount.Sign() <= 0 {
			return reverts.ErrInvalidAmount
		}
		v, err := s.validationService.GetExistingValidator(id)
		if err != nil {
			return err
		}
		if err := checkStakeable(v); err != nil {
			return err
		}
		if !v.HasCapacityFor(amount) {
			return reverts.ErrExceedsValidatorCapacity.Withf("validator %v", id)
		}
		if err := s.rewardService.UpdateRewardsForValidator(user, id); err != nil {
			return err
		}
		if err := s.ledgerService.Restake(user, id, amount); err != nil {
			return err
		}
		if err := s.validationService.AddStakerToValidator(user, id); err != nil {
			return err
		}
		s.emit("Restaked", id, user, plume.NativeToken, amount)
		return nil
	})
	if err != nil {
		logger.Info("restake failed", "user", user, "validatorID", id, "error", err)
		return err
	}

	logger.Info("restaked", "user", user, "validatorID", id)
	return nil
}

// RestakeRewards claims the native token rewards of user on all validators and stakes
// them on a validator.
func (s *Staker) RestakeRewards(user plume.Address, id plume.ValidatorID) (amount *big.Int, err error) {
	logger.Debug("restaking rewards", "user", user, "validatorID", id)

	err = s.atomic(func() error {
		v, err := s.validationService.GetExistingValidator(id)
		if err != nil {
			return err
		}
		if err := checkStakeable(v); err != nil {
			return err
		}
		if amount, err = s.rewardService.Claim(user, plume.NativeToken); err != nil {
			return err
		}
		s.emit("RewardClaimed", 0, user, plume.NativeToken, amount)
		return s.stake(user, user, id, amount)
	})
	if err != nil {
		logger.Info("restake rewards failed", "user", user, "validatorID", id, "error", err)
		return nil, err
	}

	logger.Info("restaked rewards", "user", user, "validatorID", id, "amount", amount)
	return amount, nil
}

// Withdraw pays user every matured cooldown and the parked balance. It returns zero
// when nothing is withdrawable.
func (s *Staker) Withdraw(user plume.Address) (amount *big.Int, err error) {
	logger.Debug("withdrawing", "user", user)

	err = s.atomic(func() error {
		if amount, err = s.ledgerService.Withdraw(user); err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return nil
		}
		if err := s.bank.Transfer(plume.NativeToken, plume.StakingPool, user, amount); err != nil {
			return err
		}
		if err := s.releaseUser(user); err != nil {
			return err
		}
		s.emit("Withdrawn", 0, user, plume.NativeToken, amount)
		return nil
	})
	if err != nil {
		logger.Info("withdraw failed", "user", user, "error", err)
		return nil, err
	}

	logger.Info("withdrew", "user", user, "amount", amount)
	return amount, nil
}

// releaseUser drops the stake relations of user that no longer hold stake, cooldown or rewards.
func (s *Staker) releaseUser(user plume.Address) error {
	ids, err := s.validationService.UserValidators(user)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.releaseRelation(user, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Staker) releaseRelation(user plume.Address, id plume.ValidatorID) error {
	staked, err := s.validationService.UserStake(user, id)
	if err != nil || staked.Sign() > 0 {
		return err
	}
	cd, err := s.ledgerService.GetCooldown(user, id)
	if err != nil || !cd.IsEmpty() {
		return err
	}
	if err := s.validationService.RemoveStaker(user, id); err != nil {
		return err
	}
	pending, err := s.rewardService.HasPendingRewards(user, id)
	if err != nil || pending {
		return err
	}
	return s.validationService.RemoveUserValidator(user, id)
}

func (s *Staker) emit(name string, id plume.ValidatorID, account, token plume.Address, amount *big.Int) {
	s.sctx.Emit(&solidity.Event{
		Name:      name,
		Validator: id,
		Account:   account,
		Token:     token,
		Amount:    amount,
	})
}
