// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker/params"
	"github.com/plumestake/stakerd/staker/rewards"
)

// AddRewardToken registers a reward token, or reactivates a removed one.
func (s *Staker) AddRewardToken(token plume.Address, rate, maxRate *big.Int) error {
	logger.Debug("adding reward token", "token", token, "rate", rate, "maxRate", maxRate)

	err := s.atomic(func() error {
		if err := s.rewardService.AddRewardToken(token, rate, maxRate); err != nil {
			return err
		}
		s.emit("RewardTokenAdded", 0, plume.Address{}, token, rate)
		return nil
	})
	if err != nil {
		logger.Info("add reward token failed", "token", token, "error", err)
		return err
	}

	logger.Info("added reward token", "token", token)
	return nil
}

// RemoveRewardToken stops accrual of a reward token. Accrued rewards stay claimable.
func (s *Staker) RemoveRewardToken(token plume.Address) error {
	logger.Debug("removing reward token", "token", token)

	err := s.atomic(func() error {
		if err := s.rewardService.RemoveRewardToken(token); err != nil {
			return err
		}
		s.emit("RewardTokenRemoved", 0, plume.Address{}, token, nil)
		return nil
	})
	if err != nil {
		logger.Info("remove reward token failed", "token", token, "error", err)
		return err
	}

	logger.Info("removed reward token", "token", token)
	return nil
}

// SetRewardRate changes the reward rate of a token, from now on.
func (s *Staker) SetRewardRate(token plume.Address, rate *big.Int) error {
	logger.Debug("setting reward rate", "token", token, "rate", rate)

	err := s.atomic(func() error {
		if err := s.rewardService.SetRewardRate(token, rate); err != nil {
			return err
		}
		s.emit("RewardRateSet", 0, plume.Address{}, token, rate)
		return nil
	})
	if err != nil {
		logger.Info("set reward rate failed", "token", token, "error", err)
		return err
	}

	logger.Info("set reward rate", "token", token, "rate", rate)
	return nil
}

// SetMaxRewardRate changes the rate cap of a token.
func (s *Staker) SetMaxRewardRate(token plume.Address, maxRate *big.Int) error {
	logger.Debug("setting max reward rate", "token", token, "maxRate", maxRate)

	err := s.atomic(func() error {
		if err := s.rewardService.SetMaxRewardRate(token, maxRate); err != nil {
			return err
		}
		s.emit("MaxRewardRateSet", 0, plume.Address{}, token, maxRate)
		return nil
	})
	if err != nil {
		logger.Info("set max reward rate failed", "token", token, "error", err)
		return err
	}
	return nil
}

// SetParam changes a governance param. The commission cap also lowers
// validators above it.
func (s *Staker) SetParam(key plume.Bytes32, value *big.Int) error {
	logger.Debug("setting param", "key", key, "value", value)

	err := s.atomic(func() error {
		if key == params.KeyMaxValidatorCommission {
			return s.setMaxCommission(value)
		}
		return s.params.Set(key, value)
	})
	if err != nil {
		logger.Info("set param failed", "key", key, "error", err)
		return err
	}
	return nil
}

// Claim pays user the rewards of token earned on all validators.
func (s *Staker) Claim(user plume.Address, token plume.Address) (amount *big.Int, err error) {
	logger.Debug("claiming", "user", user, "token", token)

	err = s.atomic(func() error {
		if amount, err = s.rewardService.Claim(user, token); err != nil {
			return err
		}
		s.emit("RewardClaimed", 0, user, token, amount)
		return s.releaseUser(user)
	})
	if err != nil {
		logger.Info("claim failed", "user", user, "token", token, "error", err)
		return nil, err
	}

	logger.Info("claimed", "user", user, "token", token, "amount", amount)
	return amount, nil
}

// ClaimFromValidator pays user the rewards of token earned on one validator.
func (s *Staker) ClaimFromValidator(user plume.Address, token plume.Address, id plume.ValidatorID) (amount *big.Int, err error) {
	logger.Debug("claiming from validator", "user", user, "token", token, "validatorID", id)

	err = s.atomic(func() error {
		if amount, err = s.rewardService.ClaimFromValidator(user, token, id); err != nil {
			return err
		}
		s.emit("RewardClaimed", id, user, token, amount)
		return s.releaseRelation(user, id)
	})
	if err != nil {
		logger.Info("claim from validator failed", "user", user, "token", token, "validatorID", id, "error", err)
		return nil, err
	}

	logger.Info("claimed from validator", "user", user, "token", token, "validatorID", id, "amount", amount)
	return amount, nil
}

// ClaimAll pays user the rewards of every token. It returns what was paid, nothing if
// there was nothing to claim.
func (s *Staker) ClaimAll(user plume.Address) (claimed []rewards.Claimed, err error) {
	logger.Debug("claiming all", "user", user)

	err = s.atomic(func() error {
		if claimed, err = s.rewardService.ClaimAll(user); err != nil {
			return err
		}
		for _, c := range claimed {
			s.emit("RewardClaimed", 0, user, c.Token, c.Amount)
		}
		return s.releaseUser(user)
	})
	if err != nil {
		logger.Info("claim all failed", "user", user, "error", err)
		return nil, err
	}

	logger.Info("claimed all", "user", user, "tokens", len(claimed))
	return claimed, nil
}
