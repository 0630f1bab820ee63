// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/bank"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/reverts"
)

// pay moves amount of token from the treasury to recipient, checking the treasury
// balance first.
func (s *Service) pay(token plume.Address, amount *big.Int, recipient plume.Address) error {
	balance, err := s.treasury.Balance(token)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return errors.Wrapf(bank.ErrTransferFailed, "treasury holds %v of %v, needs %v", balance, token, amount)
	}
	if err := s.treasury.DistributeReward(token, amount, recipient); err != nil {
		if errors.Is(err, bank.ErrTransferFailed) {
			return err
		}
		return errors.WithMessage(bank.ErrTransferFailed, err.Error())
	}
	return nil
}

// collect settles user on the validator for token, and zeroes its claimable balance.
func (s *Service) collect(user plume.Address, id plume.ValidatorID, token plume.Address) (*big.Int, error) {
	v, err := s.validations.GetExistingValidator(id)
	if err != nil {
		return nil, err
	}
	ur, err := s.settle(user, v, token)
	if err != nil {
		return nil, err
	}
	amount := ur.Claimable
	if amount.Sign() == 0 {
		return amount, nil
	}
	ur.Claimable = new(big.Int)
	if err := s.setUserReward(user, id, token, ur); err != nil {
		return nil, err
	}
	if err := s.stats.SubClaimable(token, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// ClaimFromValidator pays user the rewards of token earned on one validator.
func (s *Service) ClaimFromValidator(user plume.Address, token plume.Address, id plume.ValidatorID) (*big.Int, error) {
	if _, err := s.GetToken(token); err != nil {
		return nil, err
	}
	amount, err := s.collect(user, id, token)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, reverts.ErrNoRewardsToClaim
	}
	if err := s.pay(token, amount, user); err != nil {
		return nil, err
	}
	return amount, nil
}

// Claim pays user the rewards of token earned on all validators.
func (s *Service) Claim(user plume.Address, token plume.Address) (*big.Int, error) {
	if _, err := s.GetToken(token); err != nil {
		return nil, err
	}
	amount, err := s.collectAll(user, token)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, reverts.ErrNoRewardsToClaim
	}
	if err := s.pay(token, amount, user); err != nil {
		return nil, err
	}
	return amount, nil
}

func (s *Service) collectAll(user plume.Address, token plume.Address) (*big.Int, error) {
	ids, err := s.validations.UserValidators(user)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, id := range ids {
		amount, err := s.collect(user, id, token)
		if err != nil {
			return nil, err
		}
		total.Add(total, amount)
	}
	return total, nil
}

// ClaimAll pays user the rewards of every token. Tokens with nothing to claim are skipped.
func (s *Service) ClaimAll(user plume.Address) ([]Claimed, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return nil, err
	}
	var claimed []Claimed
	for _, token := range tokens {
		amount, err := s.collectAll(user, token)
		if err != nil {
			return nil, err
		}
		if amount.Sign() == 0 {
			continue
		}
		if err := s.pay(token, amount, user); err != nil {
			return nil, err
		}
		claimed = append(claimed, Claimed{Token: token, Amount: amount})
	}
	return claimed, nil
}

// PendingReward settles user on every validator for token and returns the claimable total.
// Callers wanting a read-only view run it on a state checkpoint and revert.
func (s *Service) PendingReward(user plume.Address, token plume.Address) (*big.Int, error) {
	if _, err := s.GetToken(token); err != nil {
		return nil, err
	}
	ids, err := s.validations.UserValidators(user)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, id := range ids {
		v, err := s.validations.GetExistingValidator(id)
		if err != nil {
			return nil, err
		}
		ur, err := s.settle(user, v, token)
		if err != nil {
			return nil, err
		}
		total.Add(total, ur.Claimable)
	}
	return total, nil
}

// RequestCommissionClaim moves the commission of token accrued by the validator into a
// timelocked claim.
func (s *Service) RequestCommissionClaim(id plume.ValidatorID, token plume.Address) (*CommissionClaim, error) {
	if _, err := s.GetToken(token); err != nil {
		return nil, err
	}
	key := solidity.NewKey(id, token)
	pending, err := s.commissionClaims.Get(key)
	if err != nil {
		return nil, err
	}
	if !pending.IsEmpty() {
		return nil, reverts.ErrPendingClaimExists.Withf("validator %v token %v", id, token)
	}

	vr, err := s.UpdateRewardPerToken(id, token)
	if err != nil {
		return nil, err
	}
	if vr.AccruedCommission.Sign() == 0 {
		return nil, reverts.ErrNoRewardsToClaim
	}
	timelock, err := s.params.CommissionClaimTimelock()
	if err != nil {
		return nil, err
	}

	claim := &CommissionClaim{
		Amount:  vr.AccruedCommission,
		ReadyAt: s.sctx.Now() + timelock,
	}
	vr.AccruedCommission = new(big.Int)
	if err := s.setValidatorReward(id, token, vr); err != nil {
		return nil, err
	}
	if err := s.commissionClaims.Set(key, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// PendingCommissionClaim returns the pending claim of the validator for token.
func (s *Service) PendingCommissionClaim(id plume.ValidatorID, token plume.Address) (*CommissionClaim, error) {
	claim, err := s.commissionClaims.Get(solidity.NewKey(id, token))
	if err != nil {
		return nil, err
	}
	claim.Amount = zeroIfNil(claim.Amount)
	return claim, nil
}

// FinalizeCommissionClaim pays a matured commission claim to the validator's withdraw address.
func (s *Service) FinalizeCommissionClaim(id plume.ValidatorID, token plume.Address) (*big.Int, error) {
	v, err := s.validations.GetExistingValidator(id)
	if err != nil {
		return nil, err
	}
	claim, err := s.PendingCommissionClaim(id, token)
	if err != nil {
		return nil, err
	}
	if claim.IsEmpty() {
		return nil, reverts.ErrNoPendingClaim.Withf("validator %v token %v", id, token)
	}
	if now := s.sctx.Now(); now < claim.ReadyAt {
		return nil, reverts.ErrClaimNotReady.Withf("ready at %d, now %d", claim.ReadyAt, now)
	}
	if err := s.pay(token, claim.Amount, v.WithdrawAddress); err != nil {
		return nil, err
	}
	s.commissionClaims.Delete(solidity.NewKey(id, token))
	return claim.Amount, nil
}
