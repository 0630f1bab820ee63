// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/checkpoints"
	"github.com/plumestake/stakerd/staker/globalstats"
	"github.com/plumestake/stakerd/staker/params"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/staker/validation"
)

// Treasury is the source of reward funds.
type Treasury interface {
	Balance(token plume.Address) (*big.Int, error)
	DistributeReward(token plume.Address, amount *big.Int, recipient plume.Address) error
}

var (
	slotTokens           = plume.BytesToBytes32([]byte("reward-tokens"))
	slotTokenInfo        = plume.BytesToBytes32([]byte("reward-token-info"))
	slotValidatorRewards = plume.BytesToBytes32([]byte("validator-rewards"))
	slotUserRewards      = plume.BytesToBytes32([]byte("user-rewards"))
	slotCommissionClaims = plume.BytesToBytes32([]byte("commission-claims"))
)

// Service is the reward accrual engine. It maintains the cumulative reward index of every
// (validator, token) pair and settles the share of each staker, net of commission.
type Service struct {
	sctx        *solidity.Context
	params      *params.Params
	checkpoints *checkpoints.Service
	validations *validation.Service
	stats       *globalstats.Service
	treasury    Treasury

	tokens           *solidity.Raw[[]plume.Address]
	tokenInfo        *solidity.Mapping[plume.Address, *Token]
	validatorRewards *solidity.Mapping[solidity.CompositeKey, *ValidatorReward]
	userRewards      *solidity.Mapping[solidity.CompositeKey, *UserReward]
	commissionClaims *solidity.Mapping[solidity.CompositeKey, *CommissionClaim]
}

func New(
	sctx *solidity.Context,
	params *params.Params,
	checkpoints *checkpoints.Service,
	validations *validation.Service,
	stats *globalstats.Service,
	treasury Treasury,
) *Service {
	return &Service{
		sctx:        sctx,
		params:      params,
		checkpoints: checkpoints,
		validations: validations,
		stats:       stats,
		treasury:    treasury,

		tokens:           solidity.NewRaw[[]plume.Address](sctx, slotTokens),
		tokenInfo:        solidity.NewMapping[plume.Address, *Token](sctx, slotTokenInfo),
		validatorRewards: solidity.NewMapping[solidity.CompositeKey, *ValidatorReward](sctx, slotValidatorRewards),
		userRewards:      solidity.NewMapping[solidity.CompositeKey, *UserReward](sctx, slotUserRewards),
		commissionClaims: solidity.NewMapping[solidity.CompositeKey, *CommissionClaim](sctx, slotCommissionClaims),
	}
}

// Tokens returns every token ever registered, including removed ones.
func (s *Service) Tokens() ([]plume.Address, error) {
	return s.tokens.Get()
}

// GetToken returns the reward configuration of token, ErrTokenDoesNotExist if never registered.
func (s *Service) GetToken(token plume.Address) (*Token, error) {
	exists, err := s.tokenInfo.Exists(token)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, reverts.ErrTokenDoesNotExist.Withf("token %v", token)
	}
	t, err := s.tokenInfo.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get token")
	}
	t.normalize()
	return t, nil
}

// GetValidatorReward returns the accrual state of the pair, as of its last update.
func (s *Service) GetValidatorReward(id plume.ValidatorID, token plume.Address) (*ValidatorReward, error) {
	vr, err := s.validatorRewards.Get(solidity.NewKey(id, token))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator reward")
	}
	vr.normalize()
	return vr, nil
}

func (s *Service) setValidatorReward(id plume.ValidatorID, token plume.Address, vr *ValidatorReward) error {
	return s.validatorRewards.Set(solidity.NewKey(id, token), vr)
}

// GetUserReward returns the settlement state of the triple, as of its last settlement.
func (s *Service) GetUserReward(user plume.Address, id plume.ValidatorID, token plume.Address) (*UserReward, error) {
	ur, err := s.userRewards.Get(solidity.NewKey(user, id, token))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user reward")
	}
	ur.normalize()
	return ur, nil
}

func (s *Service) setUserReward(user plume.Address, id plume.ValidatorID, token plume.Address, ur *UserReward) error {
	return s.userRewards.Set(solidity.NewKey(user, id, token), ur)
}

// HasPendingRewards returns true if user has settled, unclaimed rewards from the validator.
func (s *Service) HasPendingRewards(user plume.Address, id plume.ValidatorID) (bool, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return false, err
	}
	for _, token := range tokens {
		ur, err := s.GetUserReward(user, id, token)
		if err != nil {
			return false, err
		}
		if ur.Claimable.Sign() > 0 {
			return true, nil
		}
	}
	return false, nil
}
