// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker/checkpoints"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/staker/validation"
)

// AddRewardToken registers token, or reactivates a removed one, with the given rates.
func (s *Service) AddRewardToken(token plume.Address, rate, maxRate *big.Int) error {
	if token.IsZero() {
		return reverts.ErrZeroAddress
	}
	if rate.Sign() < 0 || maxRate.Sign() < 0 {
		return reverts.ErrInvalidAmount.Withf("negative rate")
	}
	if rate.Cmp(maxRate) > 0 {
		return reverts.ErrRewardRateExceedsMax.Withf("rate %v, max %v", rate, maxRate)
	}

	exists, err := s.tokenInfo.Exists(token)
	if err != nil {
		return err
	}
	t := &Token{AddedAt: s.sctx.Now()}
	if exists {
		if t, err = s.GetToken(token); err != nil {
			return err
		}
		if t.Active {
			return reverts.ErrTokenAlreadyExists.Withf("token %v", token)
		}
	} else {
		tokens, err := s.Tokens()
		if err != nil {
			return err
		}
		if err := s.tokens.Set(append(tokens, token)); err != nil {
			return err
		}
	}

	// close the zero rate period before the new rate applies
	if err := s.validations.ValidatorIterator(func(v *validation.Validator) error {
		_, err := s.updateRewardPerToken(v, token)
		return err
	}); err != nil {
		return err
	}

	t.Active = true
	t.RewardRate = new(big.Int).Set(rate)
	t.MaxRewardRate = new(big.Int).Set(maxRate)
	if err := s.tokenInfo.Set(token, t); err != nil {
		return err
	}

	return s.validations.ValidatorIterator(func(v *validation.Validator) error {
		return s.initPair(v, token, rate)
	})
}

// RemoveRewardToken stops accrual of token. Rewards accrued so far stay claimable.
func (s *Service) RemoveRewardToken(token plume.Address) error {
	t, err := s.GetToken(token)
	if err != nil {
		return err
	}
	if !t.Active {
		return reverts.ErrTokenDoesNotExist.Withf("token %v removed", token)
	}
	if err := s.SetRewardRate(token, new(big.Int)); err != nil {
		return err
	}
	t.Active = false
	t.RewardRate = new(big.Int)
	return s.tokenInfo.Set(token, t)
}

// SetRewardRate changes the reward rate of token. Every validator accrues at the old rate up
// to now before the new rate is stored and checkpointed.
func (s *Service) SetRewardRate(token plume.Address, rate *big.Int) error {
	t, err := s.GetToken(token)
	if err != nil {
		return err
	}
	if !t.Active {
		return reverts.ErrTokenDoesNotExist.Withf("token %v removed", token)
	}
	if rate.Sign() < 0 {
		return reverts.ErrInvalidAmount.Withf("negative rate")
	}
	if rate.Cmp(t.MaxRewardRate) > 0 {
		return reverts.ErrRewardRateExceedsMax.Withf("rate %v, max %v", rate, t.MaxRewardRate)
	}

	var updated []*validation.Validator
	if err := s.validations.ValidatorIterator(func(v *validation.Validator) error {
		if _, err := s.updateRewardPerToken(v, token); err != nil {
			return err
		}
		updated = append(updated, v)
		return nil
	}); err != nil {
		return err
	}

	t.RewardRate = new(big.Int).Set(rate)
	if err := s.tokenInfo.Set(token, t); err != nil {
		return err
	}

	for _, v := range updated {
		if err := s.CreateRewardRateCheckpoint(v.ID, token, rate); err != nil {
			return err
		}
	}
	return nil
}

// CreateRewardRateCheckpoint records rate for the pair at the current cumulative index,
// after bringing the index up to now.
func (s *Service) CreateRewardRateCheckpoint(id plume.ValidatorID, token plume.Address, rate *big.Int) error {
	vr, err := s.UpdateRewardPerToken(id, token)
	if err != nil {
		return err
	}
	_, err = s.checkpoints.Append(checkpoints.KindRewardRate, id, token, rate, vr.CumulativeIndex, s.sctx.Now())
	return err
}

// SetMaxRewardRate changes the rate cap of token. The current rate must fit under it.
func (s *Service) SetMaxRewardRate(token plume.Address, maxRate *big.Int) error {
	t, err := s.GetToken(token)
	if err != nil {
		return err
	}
	if maxRate.Sign() < 0 {
		return reverts.ErrInvalidAmount.Withf("negative rate")
	}
	if t.RewardRate.Cmp(maxRate) > 0 {
		return reverts.ErrRewardRateExceedsMax.Withf("current rate %v, max %v", t.RewardRate, maxRate)
	}
	t.MaxRewardRate = new(big.Int).Set(maxRate)
	return s.tokenInfo.Set(token, t)
}

// InitValidator starts the accrual state of a newly registered validator for every token.
func (s *Service) InitValidator(id plume.ValidatorID) error {
	v, err := s.validations.GetExistingValidator(id)
	if err != nil {
		return err
	}
	tokens, err := s.Tokens()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		rate, err := s.rewardRate(token)
		if err != nil {
			return err
		}
		if err := s.initPair(v, token, rate); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) initPair(v *validation.Validator, token plume.Address, rate *big.Int) error {
	vr, err := s.updateRewardPerToken(v, token)
	if err != nil {
		return err
	}
	now := s.sctx.Now()
	if _, err := s.checkpoints.Append(checkpoints.KindRewardRate, v.ID, token, rate, vr.CumulativeIndex, now); err != nil {
		return err
	}
	latest, err := s.checkpoints.Latest(checkpoints.KindCommission, v.ID, token)
	if err != nil {
		return err
	}
	if latest == nil {
		_, err = s.checkpoints.Append(checkpoints.KindCommission, v.ID, token, v.Commission, vr.CumulativeIndex, now)
	}
	return err
}

// AccrueValidator brings the index of every token of the validator up to now. It must run
// before any change of the validator's status.
func (s *Service) AccrueValidator(id plume.ValidatorID) error {
	v, err := s.validations.GetExistingValidator(id)
	if err != nil {
		return err
	}
	tokens, err := s.Tokens()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if _, err := s.updateRewardPerToken(v, token); err != nil {
			return err
		}
	}
	return nil
}

// SetCommissionCheckpoint records a new commission of the validator for every token, after
// bringing the indices up to now. Rewards accrued before keep the previous commission.
func (s *Service) SetCommissionCheckpoint(id plume.ValidatorID, commission *big.Int) error {
	v, err := s.validations.GetExistingValidator(id)
	if err != nil {
		return err
	}
	tokens, err := s.Tokens()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		vr, err := s.updateRewardPerToken(v, token)
		if err != nil {
			return err
		}
		if _, err := s.checkpoints.Append(checkpoints.KindCommission, id, token, commission, vr.CumulativeIndex, s.sctx.Now()); err != nil {
			return err
		}
	}
	return nil
}
