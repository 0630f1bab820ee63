// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validation

import (
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/plume"
)

// AddStakerToValidator records user as a staker of the validator, in both directions,
// and as a global staker. It is idempotent.
func (s *Service) AddStakerToValidator(user plume.Address, id plume.ValidatorID) error {
	if _, err := s.stakersOf(id).Add(user); err != nil {
		return errors.Wrap(err, "failed to add staker to validator")
	}
	if _, err := s.validatorsOf(user).Add(id); err != nil {
		return errors.Wrap(err, "failed to add validator to staker")
	}
	if _, err := s.stakerList.Add(user); err != nil {
		return errors.Wrap(err, "failed to add staker")
	}
	return nil
}

// RemoveStaker drops user from the stakers of the validator.
func (s *Service) RemoveStaker(user plume.Address, id plume.ValidatorID) error {
	if _, err := s.stakersOf(id).Remove(user); err != nil {
		return errors.Wrap(err, "failed to remove staker from validator")
	}
	return nil
}

// RemoveUserValidator drops the validator from the validators of user. A user left
// without validators is no longer a global staker.
func (s *Service) RemoveUserValidator(user plume.Address, id plume.ValidatorID) error {
	list := s.validatorsOf(user)
	if _, err := list.Remove(id); err != nil {
		return errors.Wrap(err, "failed to remove validator from staker")
	}
	n, err := list.Len()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.stakerList.Remove(user); err != nil {
			return errors.Wrap(err, "failed to remove staker")
		}
	}
	return nil
}

// IsStaker returns true if user is in the stakers of the validator.
func (s *Service) IsStaker(user plume.Address, id plume.ValidatorID) (bool, error) {
	return s.stakersOf(id).Contains(user)
}

// UserValidators returns the validators user has a relation with.
func (s *Service) UserValidators(user plume.Address) ([]plume.ValidatorID, error) {
	var ids []plume.ValidatorID
	err := s.validatorsOf(user).Iter(func(id plume.ValidatorID) error {
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// Stakers returns a page of the stakers of the validator, see linkedlist.Page.
func (s *Service) Stakers(id plume.ValidatorID, cursor plume.Address, limit int) ([]plume.Address, plume.Address, error) {
	return s.stakersOf(id).Page(cursor, limit)
}

// StakerCount returns the number of stakers of the validator.
func (s *Service) StakerCount(id plume.ValidatorID) (uint64, error) {
	return s.stakersOf(id).Len()
}

// AllStakers returns a page of the global stakers list.
func (s *Service) AllStakers(cursor plume.Address, limit int) ([]plume.Address, plume.Address, error) {
	return s.stakerList.Page(cursor, limit)
}
