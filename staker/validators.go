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
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/staker/validation"
)

// AddValidator registers an active validator.
func (s *Staker) AddValidator(
	id plume.ValidatorID,
	commission *big.Int,
	admin plume.Address,
	withdraw plume.Address,
	maxCapacity *big.Int,
) error {
	logger.Debug("adding validator", "validatorID", id, "commission", commission, "admin", admin, "maxCapacity", maxCapacity)

	err := s.atomic(func() error {
		if _, err := s.validationService.Add(id, commission, admin, withdraw, maxCapacity); err != nil {
			return err
		}
		if err := s.rewardService.InitValidator(id); err != nil {
			return err
		}
		s.emit("ValidatorAdded", id, admin, plume.Address{}, commission)
		return nil
	})
	if err != nil {
		logger.Info("add validator failed", "validatorID", id, "error", err)
		return err
	}

	logger.Info("added validator", "validatorID", id)
	return nil
}

func (s *Staker) requireAdmin(caller plume.Address, id plume.ValidatorID) (*validation.Validator, error) {
	v, err := s.validationService.GetExistingValidator(id)
	if err != nil {
		return nil, err
	}
	if v.AdminAddress != caller {
		return nil, reverts.ErrNotValidatorAdmin.Withf("%v is not the admin of validator %v", caller, id)
	}
	return v, nil
}

// SetValidatorStatus activates or deactivates a validator. Rewards stop accruing while inactive.
func (s *Staker) SetValidatorStatus(id plume.ValidatorID, active bool) error {
	logger.Debug("setting validator status", "validatorID", id, "active", active)

	err := s.atomic(func() error {
		if err := s.rewardService.AccrueValidator(id); err != nil {
			return err
		}
		if err := s.validationService.SetStatus(id, active); err != nil {
			return err
		}
		s.emit("ValidatorStatusUpdated", id, plume.Address{}, plume.Address{}, nil)
		return nil
	})
	if err != nil {
		logger.Info("set validator status failed", "validatorID", id, "error", err)
		return err
	}

	logger.Info("set validator status", "validatorID", id, "active", active)
	return nil
}

// SetValidatorCommission changes the commission of a validator, on behalf of its admin.
// Rewards accrued so far keep the previous commission.
func (s *Staker) SetValidatorCommission(caller plume.Address, id plume.ValidatorID, commission *big.Int) error {
	logger.Debug("setting validator commission", "caller", caller, "validatorID", id, "commission", commission)

	err := s.atomic(func() error {
		if _, err := s.requireAdmin(caller, id); err != nil {
			return err
		}
		return s.setCommission(id, commission)
	})
	if err != nil {
		logger.Info("set validator commission failed", "validatorID", id, "error", err)
		return err
	}

	logger.Info("set validator commission", "validatorID", id)
	return nil
}

func (s *Staker) setCommission(id plume.ValidatorID, commission *big.Int) error {
	if err := s.validationService.SetCommission(id, commission); err != nil {
		return err
	}
	if err := s.rewardService.SetCommissionCheckpoint(id, commission); err != nil {
		return err
	}
	s.emit("ValidatorCommissionSet", id, plume.Address{}, plume.Address{}, commission)
	return nil
}

// SetMaxAllowedValidatorCommission changes the commission cap. Validators above the new cap
// are lowered to it.
func (s *Staker) SetMaxAllowedValidatorCommission(maxCommission *big.Int) error {
	logger.Debug("setting max validator commission", "max", maxCommission)

	err := s.atomic(func() error {
		return s.setMaxCommission(maxCommission)
	})
	if err != nil {
		logger.Info("set max validator commission failed", "error", err)
		return err
	}

	logger.Info("set max validator commission", "max", maxCommission)
	return nil
}

func (s *Staker) setMaxCommission(maxCommission *big.Int) error {
	if maxCommission == nil || maxCommission.Sign() < 0 || maxCommission.Cmp(plume.MaxCommission()) > 0 {
		return reverts.ErrInvalidMaxCommissionRate.Withf("%v exceeds %v", maxCommission, plume.MaxCommission())
	}
	if err := s.params.Set(params.KeyMaxValidatorCommission, maxCommission); err != nil {
		return err
	}
	ids, err := s.validationService.Validators()
	if err != nil {
		return err
	}
	for _, id := range ids {
		v, err := s.validationService.GetValidator(id)
		if err != nil {
			return err
		}
		if v.Commission.Cmp(maxCommission) > 0 {
			if err := s.setCommission(id, maxCommission); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetValidatorCapacity changes the max capacity of a validator, zero for unbounded.
func (s *Staker) SetValidatorCapacity(id plume.ValidatorID, maxCapacity *big.Int) error {
	logger.Debug("setting validator capacity", "validatorID", id, "maxCapacity", maxCapacity)

	err := s.atomic(func() error {
		if err := s.validationService.SetCapacity(id, maxCapacity); err != nil {
			return err
		}
		s.emit("ValidatorCapacityUpdated", id, plume.Address{}, plume.Address{}, maxCapacity)
		return nil
	})
	if err != nil {
		logger.Info("set validator capacity failed", "validatorID", id, "error", err)
		return err
	}
	return nil
}

// SetValidatorAddresses changes the admin and withdraw addresses of a validator, on behalf of its admin.
func (s *Staker) SetValidatorAddresses(caller plume.Address, id plume.ValidatorID, admin, withdraw plume.Address) error {
	logger.Debug("setting validator addresses", "caller", caller, "validatorID", id, "admin", admin, "withdraw", withdraw)

	err := s.atomic(func() error {
		if _, err := s.requireAdmin(caller, id); err != nil {
			return err
		}
		if err := s.validationService.SetAddresses(id, admin, withdraw); err != nil {
			return err
		}
		s.emit("ValidatorAddressesUpdated", id, admin, plume.Address{}, nil)
		return nil
	})
	if err != nil {
		logger.Info("set validator addresses failed", "validatorID", id, "error", err)
		return err
	}
	return nil
}

// VoteToSlash records the vote of the validator administered by caller against malicious.
func (s *Staker) VoteToSlash(caller plume.Address, malicious plume.ValidatorID, expiration uint64) error {
	logger.Debug("voting to slash", "caller", caller, "malicious", malicious, "expiration", expiration)

	err := s.atomic(func() error {
		voter, err := s.validationService.ValidatorByAdmin(caller)
		if err != nil {
			return err
		}
		if voter.IsZero() {
			return reverts.ErrNotValidatorAdmin.Withf("%v administers no validator", caller)
		}
		if err := s.validationService.Vote(voter, malicious, expiration); err != nil {
			return err
		}
		s.emit("SlashVoteCast", malicious, caller, plume.Address{}, nil)
		return nil
	})
	if err != nil {
		logger.Info("vote to slash failed", "malicious", malicious, "error", err)
		return err
	}

	logger.Info("voted to slash", "caller", caller, "malicious", malicious)
	return nil
}

// Slash moves a validator to the slashed state, once every other active validator voted for it.
// Rewards stop accruing at the slash; the stake is forfeited through the cleanup operations.
func (s *Staker) Slash(malicious plume.ValidatorID) error {
	logger.Debug("slashing", "validatorID", malicious)

	err := s.atomic(func() error {
		if err := s.validationService.CheckUnanimity(malicious); err != nil {
			return err
		}
		if err := s.rewardService.AccrueValidator(malicious); err != nil {
			return err
		}
		if err := s.validationService.MarkSlashed(malicious); err != nil {
			return err
		}
		v, err := s.validationService.GetValidator(malicious)
		if err != nil {
			return err
		}
		s.emit("ValidatorSlashed", malicious, plume.Address{}, plume.Address{}, v.TotalDelegated)
		return nil
	})
	if err != nil {
		logger.Info("slash failed", "validatorID", malicious, "error", err)
		return err
	}

	logger.Info("slashed validator", "validatorID", malicious)
	return nil
}

// RequestCommissionClaim starts the timelock of a payout of the accrued commission, on
// behalf of the validator admin.
func (s *Staker) RequestCommissionClaim(caller plume.Address, id plume.ValidatorID, token plume.Address) (claim *rewards.CommissionClaim, err error) {
	logger.Debug("requesting commission claim", "caller", caller, "validatorID", id, "token", token)

	err = s.atomic(func() error {
		v, err := s.requireAdmin(caller, id)
		if err != nil {
			return err
		}
		if v.Slashed {
			return reverts.ErrValidatorAlreadySlashed.Withf("validator %v", id)
		}
		if claim, err = s.rewardService.RequestCommissionClaim(id, token); err != nil {
			return err
		}
		s.emit("CommissionClaimRequested", id, caller, token, claim.Amount)
		return nil
	})
	if err != nil {
		logger.Info("request commission claim failed", "validatorID", id, "error", err)
		return nil, err
	}

	logger.Info("requested commission claim", "validatorID", id, "token", token, "readyAt", claim.ReadyAt)
	return claim, nil
}

// FinalizeCommissionClaim pays a matured commission claim to the validator's withdraw address.
func (s *Staker) FinalizeCommissionClaim(caller plume.Address, id plume.ValidatorID, token plume.Address) (amount *big.Int, err error) {
	logger.Debug("finalizing commission claim", "caller", caller, "validatorID", id, "token", token)

	err = s.atomic(func() error {
		v, err := s.requireAdmin(caller, id)
		if err != nil {
			return err
		}
		if amount, err = s.rewardService.FinalizeCommissionClaim(id, token); err != nil {
			return err
		}
		s.emit("CommissionClaimFinalized", id, v.WithdrawAddress, token, amount)
		return nil
	})
	if err != nil {
		logger.Info("finalize commission claim failed", "validatorID", id, "error", err)
		return nil, err
	}

	logger.Info("finalized commission claim", "validatorID", id, "token", token, "amount", amount)
	return amount, nil
}
