// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/staker/validation"
)

// AdminClearValidatorRecord settles the rewards of user on a slashed validator up to the
// slash, then drops the stake and the unmatured cooldown of user on it.
func (s *Staker) AdminClearValidatorRecord(user plume.Address, slashed plume.ValidatorID) error {
	logger.Debug("clearing validator record", "user", user, "validatorID", slashed)

	err := s.atomic(func() error {
		v, err := s.slashedValidator(slashed)
		if err != nil {
			return err
		}
		return s.clearRecord(user, v)
	})
	if err != nil {
		logger.Info("clear validator record failed", "user", user, "validatorID", slashed, "error", err)
		return err
	}

	logger.Info("cleared validator record", "user", user, "validatorID", slashed)
	return nil
}

// AdminBatchClearValidatorRecords clears the records of users on a slashed validator.
// Zero addresses are skipped.
func (s *Staker) AdminBatchClearValidatorRecords(users []plume.Address, slashed plume.ValidatorID) error {
	logger.Debug("clearing validator records", "users", len(users), "validatorID", slashed)

	err := s.atomic(func() error {
		if len(users) == 0 {
			return reverts.ErrEmptyArray
		}
		v, err := s.slashedValidator(slashed)
		if err != nil {
			return err
		}
		for _, user := range users {
			if user.IsZero() {
				continue
			}
			if err := s.clearRecord(user, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Info("clear validator records failed", "validatorID", slashed, "error", err)
		return err
	}

	logger.Info("cleared validator records", "users", len(users), "validatorID", slashed)
	return nil
}

// AdminClearSlashedStakers clears up to limit stakers of a slashed validator, starting at
// cursor (the first staker when zero). It returns the cursor of the next batch, zero when done.
func (s *Staker) AdminClearSlashedStakers(slashed plume.ValidatorID, cursor plume.Address, limit int) (next plume.Address, err error) {
	logger.Debug("clearing slashed stakers", "validatorID", slashed, "cursor", cursor, "limit", limit)

	err = s.atomic(func() error {
		if limit <= 0 {
			return reverts.ErrInvalidParam.Withf("limit %d", limit)
		}
		v, err := s.slashedValidator(slashed)
		if err != nil {
			return err
		}
		// a cursor cleared on its own restarts the walk, cleared stakers leave the list
		if !cursor.IsZero() {
			ok, err := s.validationService.IsStaker(cursor, slashed)
			if err != nil {
				return err
			}
			if !ok {
				cursor = plume.Address{}
			}
		}
		var users []plume.Address
		if users, next, err = s.validationService.Stakers(slashed, cursor, limit); err != nil {
			return err
		}
		for _, user := range users {
			if err := s.clearRecord(user, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Info("clear slashed stakers failed", "validatorID", slashed, "error", err)
		return plume.Address{}, err
	}

	logger.Info("cleared slashed stakers", "validatorID", slashed, "done", next.IsZero())
	return next, nil
}

func (s *Staker) slashedValidator(id plume.ValidatorID) (*validation.Validator, error) {
	v, err := s.validationService.GetExistingValidator(id)
	if err != nil {
		return nil, err
	}
	if !v.Slashed {
		return nil, reverts.ErrValidatorNotSlashed.Withf("validator %v", id)
	}
	return v, nil
}

func (s *Staker) clearRecord(user plume.Address, v *validation.Validator) error {
	if err := s.rewardService.UpdateRewardsForValidator(user, v.ID); err != nil {
		return err
	}
	staked, cooling, err := s.ledgerService.ClearSlashed(user, v)
	if err != nil {
		return err
	}
	if err := s.validationService.RemoveStaker(user, v.ID); err != nil {
		return err
	}
	pending, err := s.rewardService.HasPendingRewards(user, v.ID)
	if err != nil {
		return err
	}
	if !pending {
		if err := s.validationService.RemoveUserValidator(user, v.ID); err != nil {
			return err
		}
	}
	s.emit("StakerRecordCleared", v.ID, user, plume.NativeToken, new(big.Int).Add(staked, cooling))
	return nil
}
