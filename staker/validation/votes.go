// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validation

import (
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/reverts"
)

// Vote records that voter wants malicious slashed, until expiration.
// A later vote by the same voter replaces the earlier one.
func (s *Service) Vote(voter, malicious plume.ValidatorID, expiration uint64) error {
	if voter == malicious {
		return reverts.ErrCannotVoteForSelf
	}
	v, err := s.GetExistingValidator(voter)
	if err != nil {
		return err
	}
	if !v.Accruing() {
		return reverts.ErrValidatorInactive.Withf("voter %v", voter)
	}
	target, err := s.GetExistingValidator(malicious)
	if err != nil {
		return err
	}
	if target.Slashed {
		return reverts.ErrValidatorAlreadySlashed.Withf("validator %v", malicious)
	}

	now := s.sctx.Now()
	if expiration <= now {
		return reverts.ErrInvalidExpiration.Withf("expiration %d not after %d", expiration, now)
	}
	maxDuration, err := s.params.MaxSlashVoteDuration()
	if err != nil {
		return err
	}
	if expiration-now > maxDuration {
		return reverts.ErrSlashVoteDurationTooLong.Withf("duration %d exceeds %d", expiration-now, maxDuration)
	}
	return s.votes.Set(solidity.NewKey(malicious, voter), expiration)
}

// VoteExpiration returns the expiration of the vote of voter against malicious, zero if none.
func (s *Service) VoteExpiration(voter, malicious plume.ValidatorID) (uint64, error) {
	return s.votes.Get(solidity.NewKey(malicious, voter))
}

// CheckUnanimity returns nil if every other active, non-slashed validator holds an
// unexpired vote against malicious.
func (s *Service) CheckUnanimity(malicious plume.ValidatorID) error {
	target, err := s.GetExistingValidator(malicious)
	if err != nil {
		return err
	}
	if target.Slashed {
		return reverts.ErrValidatorAlreadySlashed.Withf("validator %v", malicious)
	}

	now := s.sctx.Now()
	voters := 0
	missing := plume.ValidatorID(0)
	err = s.ValidatorIterator(func(v *Validator) error {
		if v.ID == malicious || !v.Accruing() || !missing.IsZero() {
			return nil
		}
		expiration, err := s.VoteExpiration(v.ID, malicious)
		if err != nil {
			return err
		}
		if expiration <= now {
			missing = v.ID
			return nil
		}
		voters++
		return nil
	})
	if err != nil {
		return err
	}
	if !missing.IsZero() {
		return reverts.ErrUnanimityNotReached.Withf("no valid vote from validator %v", missing)
	}
	if voters == 0 {
		return reverts.ErrUnanimityNotReached.Withf("no voters")
	}
	return nil
}
