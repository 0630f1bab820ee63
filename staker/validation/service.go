// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validation

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/linkedlist"
	"github.com/plumestake/stakerd/staker/params"
	"github.com/plumestake/stakerd/staker/reverts"
)

var (
	slotValidators = plume.BytesToBytes32([]byte("validators"))
	slotAdmins     = plume.BytesToBytes32([]byte("validator-admins"))
	slotUserStakes = plume.BytesToBytes32([]byte("user-validator-stakes"))
	slotSlashVotes = plume.BytesToBytes32([]byte("slash-votes"))
)

// Service is the validator registry. It owns the validator records, the stake each user
// delegates to each validator and the staker indices.
type Service struct {
	sctx   *solidity.Context
	params *params.Params

	validators *solidity.Mapping[plume.ValidatorID, *Validator]
	admins     *solidity.Mapping[plume.Address, plume.ValidatorID]
	userStakes *solidity.Mapping[solidity.CompositeKey, *big.Int]
	votes      *solidity.Mapping[solidity.CompositeKey, uint64]

	validatorList *linkedlist.LinkedList[plume.ValidatorID]
	stakerList    *linkedlist.LinkedList[plume.Address]
}

func New(sctx *solidity.Context, params *params.Params) *Service {
	return &Service{
		sctx:   sctx,
		params: params,

		validators: solidity.NewMapping[plume.ValidatorID, *Validator](sctx, slotValidators),
		admins:     solidity.NewMapping[plume.Address, plume.ValidatorID](sctx, slotAdmins),
		userStakes: solidity.NewMapping[solidity.CompositeKey, *big.Int](sctx, slotUserStakes),
		votes:      solidity.NewMapping[solidity.CompositeKey, uint64](sctx, slotSlashVotes),

		validatorList: linkedlist.New[plume.ValidatorID](sctx, "validators", nil),
		stakerList:    linkedlist.New[plume.Address](sctx, "stakers", nil),
	}
}

// validator -> stakers index
func (s *Service) stakersOf(id plume.ValidatorID) *linkedlist.LinkedList[plume.Address] {
	return linkedlist.New[plume.Address](s.sctx, "validator-stakers", id.Bytes())
}

// user -> validators index
func (s *Service) validatorsOf(user plume.Address) *linkedlist.LinkedList[plume.ValidatorID] {
	return linkedlist.New[plume.ValidatorID](s.sctx, "user-validators", user.Bytes())
}

// GetValidator returns the validator record, empty if the id is not registered.
func (s *Service) GetValidator(id plume.ValidatorID) (*Validator, error) {
	v, err := s.validators.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator")
	}
	v.normalize()
	return v, nil
}

// GetExistingValidator returns the validator record, or ErrValidatorDoesNotExist.
func (s *Service) GetExistingValidator(id plume.ValidatorID) (*Validator, error) {
	if id.IsZero() {
		return nil, reverts.ErrInvalidValidatorID
	}
	v, err := s.GetValidator(id)
	if err != nil {
		return nil, err
	}
	if v.IsEmpty() {
		return nil, reverts.ErrValidatorDoesNotExist.Withf("validator %v", id)
	}
	return v, nil
}

func (s *Service) setValidator(v *Validator) error {
	if err := s.validators.Set(v.ID, v); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	return nil
}

// ValidatorByAdmin returns the id of the validator administered by admin, zero if none.
func (s *Service) ValidatorByAdmin(admin plume.Address) (plume.ValidatorID, error) {
	return s.admins.Get(admin)
}

// Validators returns the ids of all registered validators, in registration order.
func (s *Service) Validators() ([]plume.ValidatorID, error) {
	var ids []plume.ValidatorID
	err := s.validatorList.Iter(func(id plume.ValidatorID) error {
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// ValidatorIterator calls the callbacks for every registered validator.
func (s *Service) ValidatorIterator(callbacks ...func(*Validator) error) error {
	return s.validatorList.Iter(func(id plume.ValidatorID) error {
		v, err := s.GetValidator(id)
		if err != nil {
			return err
		}
		for _, callback := range callbacks {
			if err := callback(v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) checkCommission(commission *big.Int) error {
	if commission.Sign() < 0 {
		return reverts.ErrCommissionTooHigh.Withf("negative commission")
	}
	maxCommission, err := s.params.MaxValidatorCommission()
	if err != nil {
		return err
	}
	if commission.Cmp(maxCommission) > 0 {
		return reverts.ErrCommissionTooHigh.Withf("%v exceeds %v", commission, maxCommission)
	}
	return nil
}

// Add registers a new active validator.
func (s *Service) Add(
	id plume.ValidatorID,
	commission *big.Int,
	admin plume.Address,
	withdraw plume.Address,
	maxCapacity *big.Int,
) (*Validator, error) {
	if id.IsZero() {
		return nil, reverts.ErrInvalidValidatorID
	}
	if admin.IsZero() || withdraw.IsZero() {
		return nil, reverts.ErrZeroAddress
	}
	existing, err := s.GetValidator(id)
	if err != nil {
		return nil, err
	}
	if !existing.IsEmpty() {
		return nil, reverts.ErrValidatorAlreadyExists.Withf("validator %v", id)
	}
	if err := s.checkCommission(commission); err != nil {
		return nil, err
	}
	if maxCapacity == nil {
		maxCapacity = new(big.Int)
	}
	if maxCapacity.Sign() < 0 {
		return nil, reverts.ErrInvalidAmount.Withf("negative capacity")
	}
	assigned, err := s.admins.Get(admin)
	if err != nil {
		return nil, err
	}
	if !assigned.IsZero() {
		return nil, reverts.ErrAdminAlreadyAssigned.Withf("admin %v manages validator %v", admin, assigned)
	}

	v := &Validator{
		ID:              id,
		Active:          true,
		Commission:      new(big.Int).Set(commission),
		MaxCapacity:     new(big.Int).Set(maxCapacity),
		TotalDelegated:  new(big.Int),
		TotalCooling:    new(big.Int),
		AdminAddress:    admin,
		WithdrawAddress: withdraw,
		AddedAt:         s.sctx.Now(),
	}
	if err := s.setValidator(v); err != nil {
		return nil, err
	}
	if err := s.admins.Set(admin, id); err != nil {
		return nil, err
	}
	if _, err := s.validatorList.Add(id); err != nil {
		return nil, errors.Wrap(err, "failed to add validator to list")
	}
	return v, nil
}

// SetStatus activates or deactivates a validator. Slashed validators cannot change status.
func (s *Service) SetStatus(id plume.ValidatorID, active bool) error {
	v, err := s.GetExistingValidator(id)
	if err != nil {
		return err
	}
	if v.Slashed {
		return reverts.ErrValidatorAlreadySlashed.Withf("validator %v", id)
	}
	v.Active = active
	return s.setValidator(v)
}

// SetCommission updates the commission rate of a validator.
func (s *Service) SetCommission(id plume.ValidatorID, commission *big.Int) error {
	v, err := s.GetExistingValidator(id)
	if err != nil {
		return err
	}
	if err := s.checkCommission(commission); err != nil {
		return err
	}
	v.Commission = new(big.Int).Set(commission)
	return s.setValidator(v)
}

// SetCapacity updates the max capacity of a validator, zero removes the bound.
func (s *Service) SetCapacity(id plume.ValidatorID, maxCapacity *big.Int) error {
	if maxCapacity.Sign() < 0 {
		return reverts.ErrInvalidAmount.Withf("negative capacity")
	}
	v, err := s.GetExistingValidator(id)
	if err != nil {
		return err
	}
	v.MaxCapacity = new(big.Int).Set(maxCapacity)
	return s.setValidator(v)
}

// SetAddresses updates the admin and withdraw addresses of a validator.
// A zero address leaves the corresponding address unchanged.
func (s *Service) SetAddresses(id plume.ValidatorID, admin, withdraw plume.Address) error {
	v, err := s.GetExistingValidator(id)
	if err != nil {
		return err
	}
	if !admin.IsZero() && admin != v.AdminAddress {
		assigned, err := s.admins.Get(admin)
		if err != nil {
			return err
		}
		if !assigned.IsZero() {
			return reverts.ErrAdminAlreadyAssigned.Withf("admin %v manages validator %v", admin, assigned)
		}
		s.admins.Delete(v.AdminAddress)
		if err := s.admins.Set(admin, id); err != nil {
			return err
		}
		v.AdminAddress = admin
	}
	if !withdraw.IsZero() {
		v.WithdrawAddress = withdraw
	}
	return s.setValidator(v)
}

// MarkSlashed moves the validator to its terminal state.
func (s *Service) MarkSlashed(id plume.ValidatorID) error {
	v, err := s.GetExistingValidator(id)
	if err != nil {
		return err
	}
	if v.Slashed {
		return reverts.ErrValidatorAlreadySlashed.Withf("validator %v", id)
	}
	v.Slashed = true
	v.Active = false
	v.SlashedAt = s.sctx.Now()
	return s.setValidator(v)
}

// UserStake returns the active stake of user on the validator.
func (s *Service) UserStake(user plume.Address, id plume.ValidatorID) (*big.Int, error) {
	return s.userStakes.Get(solidity.NewKey(user, id))
}

// IncreaseStake adds to the stake of user on the validator and to the validator total.
func (s *Service) IncreaseStake(user plume.Address, id plume.ValidatorID, amount *big.Int) error {
	v, err := s.GetExistingValidator(id)
	if err != nil {
		return err
	}
	staked, err := s.UserStake(user, id)
	if err != nil {
		return err
	}
	if err := s.userStakes.Set(solidity.NewKey(user, id), staked.Add(staked, amount)); err != nil {
		return err
	}
	v.TotalDelegated.Add(v.TotalDelegated, amount)
	return s.setValidator(v)
}

// DecreaseStake removes from the stake of user on the validator and from the validator total.
func (s *Service) DecreaseStake(user plume.Address, id plume.ValidatorID, amount *big.Int) error {
	v, err := s.GetExistingValidator(id)
	if err != nil {
		return err
	}
	staked, err := s.UserStake(user, id)
	if err != nil {
		return err
	}
	if staked.Cmp(amount) < 0 {
		return reverts.ErrInsufficientFunds.Withf("staked %v, requested %v", staked, amount)
	}
	if err := s.userStakes.Set(solidity.NewKey(user, id), staked.Sub(staked, amount)); err != nil {
		return err
	}
	v.TotalDelegated = floorSub(v.TotalDelegated, amount)
	return s.setValidator(v)
}

// AdjustCooling changes the cooling total of the validator by delta, clamping at zero.
func (s *Service) AdjustCooling(id plume.ValidatorID, delta *big.Int) error {
	v, err := s.GetExistingValidator(id)
	if err != nil {
		return err
	}
	if delta.Sign() >= 0 {
		v.TotalCooling.Add(v.TotalCooling, delta)
	} else {
		v.TotalCooling = floorSub(v.TotalCooling, new(big.Int).Neg(delta))
	}
	return s.setValidator(v)
}

func floorSub(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}
