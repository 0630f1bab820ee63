// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker/checkpoints"
	"github.com/plumestake/stakerd/staker/validation"
)

// UpdateRewardPerToken brings the cumulative index of the pair up to the current time and
// returns the updated state. Nothing accrues while the validator is inactive, slashed,
// or has no stake, but the update time still advances.
func (s *Service) UpdateRewardPerToken(id plume.ValidatorID, token plume.Address) (*ValidatorReward, error) {
	v, err := s.validations.GetExistingValidator(id)
	if err != nil {
		return nil, err
	}
	return s.updateRewardPerToken(v, token)
}

func (s *Service) updateRewardPerToken(v *validation.Validator, token plume.Address) (*ValidatorReward, error) {
	vr, err := s.GetValidatorReward(v.ID, token)
	if err != nil {
		return nil, err
	}
	end := v.AccrualEnd(s.sctx.Now())
	if end <= vr.LastUpdate {
		return vr, nil
	}

	if v.Accruing() && v.TotalDelegated.Sign() > 0 {
		rate, err := s.rewardRate(token)
		if err != nil {
			return nil, err
		}
		if rate.Sign() > 0 {
			delta, err := indexDelta(end-vr.LastUpdate, rate, v.TotalDelegated)
			if err != nil {
				return nil, err
			}
			vr.CumulativeIndex.Add(vr.CumulativeIndex, delta)
		}
	}
	vr.LastUpdate = end
	if err := s.setValidatorReward(v.ID, token, vr); err != nil {
		return nil, err
	}
	return vr, nil
}

func (s *Service) rewardRate(token plume.Address) (*big.Int, error) {
	t, err := s.tokenInfo.Get(token)
	if err != nil {
		return nil, err
	}
	if !t.Active || t.RewardRate == nil {
		return new(big.Int), nil
	}
	return t.RewardRate, nil
}

// UpdateRewardsForValidator settles the rewards of user on the validator, for every token.
// It must run before any change of the stake of user on the validator.
func (s *Service) UpdateRewardsForValidator(user plume.Address, id plume.ValidatorID) error {
	v, err := s.validations.GetExistingValidator(id)
	if err != nil {
		return err
	}
	tokens, err := s.Tokens()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if _, err := s.settle(user, v, token); err != nil {
			return err
		}
	}
	return nil
}

// UpdateRewardsForAllValidators settles the rewards of user on every validator user staked with.
func (s *Service) UpdateRewardsForAllValidators(user plume.Address) error {
	ids, err := s.validations.UserValidators(user)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.UpdateRewardsForValidator(user, id); err != nil {
			return err
		}
	}
	return nil
}

// settle credits user with the reward earned on the validator since the last settlement,
// net of commission, and returns the settlement state.
func (s *Service) settle(user plume.Address, v *validation.Validator, token plume.Address) (*UserReward, error) {
	vr, err := s.updateRewardPerToken(v, token)
	if err != nil {
		return nil, err
	}
	ur, err := s.GetUserReward(user, v.ID, token)
	if err != nil {
		return nil, err
	}
	count, err := s.checkpoints.Count(checkpoints.KindCommission, v.ID, token)
	if err != nil {
		return nil, err
	}
	staked, err := s.validations.UserStake(user, v.ID)
	if err != nil {
		return nil, err
	}

	current := vr.CumulativeIndex
	if staked.Sign() > 0 && current.Cmp(ur.Paid) > 0 {
		reward, commission, err := s.split(v, token, staked, ur, current, count)
		if err != nil {
			return nil, err
		}
		if commission.Sign() > 0 {
			vr.AccruedCommission.Add(vr.AccruedCommission, commission)
			if err := s.setValidatorReward(v.ID, token, vr); err != nil {
				return nil, err
			}
		}
		if reward.Sign() > 0 {
			ur.Claimable.Add(ur.Claimable, reward)
			if err := s.stats.AddClaimable(token, reward); err != nil {
				return nil, err
			}
		}
	}

	ur.Paid = new(big.Int).Set(current)
	ur.LastSettlement = s.sctx.Now()
	ur.CommissionCursor = count
	if err := s.setUserReward(user, v.ID, token, ur); err != nil {
		return nil, err
	}
	return ur, nil
}

// split computes the reward of staked over the index range (ur.Paid, current], and the
// commission taken from it. The range is cut at every commission checkpoint, so each part
// is charged the commission in effect at the time it accrued.
func (s *Service) split(
	v *validation.Validator,
	token plume.Address,
	staked *big.Int,
	ur *UserReward,
	current *big.Int,
	count uint64,
) (*big.Int, *big.Int, error) {
	from := ur.Paid
	rate := v.Commission
	next := ur.CommissionCursor

	if next > 0 {
		cp, err := s.checkpoints.Get(checkpoints.KindCommission, v.ID, token, next-1)
		if err != nil {
			return nil, nil, err
		}
		rate = cp.Rate
	} else if count > 0 {
		// never settled against the history of this pair
		idx, found, err := s.checkpoints.Find(checkpoints.KindCommission, v.ID, token, from)
		if err != nil {
			return nil, nil, err
		}
		if found {
			cp, err := s.checkpoints.Get(checkpoints.KindCommission, v.ID, token, idx)
			if err != nil {
				return nil, nil, err
			}
			rate, next = cp.Rate, idx+1
		}
	}

	total, commission := new(big.Int), new(big.Int)
	accumulate := func(to *big.Int) error {
		if to.Cmp(from) <= 0 {
			return nil
		}
		part, err := mulDiv(staked, new(big.Int).Sub(to, from), plume.Precision)
		if err != nil {
			return err
		}
		fee, err := applyRate(part, rate)
		if err != nil {
			return err
		}
		total.Add(total, part)
		commission.Add(commission, fee)
		return nil
	}

	for ; next < count; next++ {
		cp, err := s.checkpoints.Get(checkpoints.KindCommission, v.ID, token, next)
		if err != nil {
			return nil, nil, err
		}
		if cp.CumulativeIndex.Cmp(current) >= 0 {
			break
		}
		if err := accumulate(cp.CumulativeIndex); err != nil {
			return nil, nil, err
		}
		if cp.CumulativeIndex.Cmp(from) > 0 {
			from = cp.CumulativeIndex
		}
		rate = cp.Rate
	}
	if err := accumulate(current); err != nil {
		return nil, nil, err
	}
	return total.Sub(total, commission), commission, nil
}
