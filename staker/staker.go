// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/plumestake/stakerd/bank"
	"github.com/plumestake/stakerd/log"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/checkpoints"
	"github.com/plumestake/stakerd/staker/globalstats"
	"github.com/plumestake/stakerd/staker/ledger"
	"github.com/plumestake/stakerd/staker/params"
	"github.com/plumestake/stakerd/staker/rewards"
	"github.com/plumestake/stakerd/staker/validation"
	"github.com/plumestake/stakerd/state"
)

var (
	logger = log.WithContext("pkg", "staker")

	// Address owns the staking storage.
	Address = plume.BytesToAddress([]byte("staker"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Staker is the staking engine. It orders every operation so that rewards are settled
// before the stake they accrue on changes, and applies each mutating operation atomically.
type Staker struct {
	sctx  *solidity.Context
	state *state.State
	bank  *bank.Bank

	params             *params.Params
	checkpointService  *checkpoints.Service
	globalStatsService *globalstats.Service
	validationService  *validation.Service
	rewardService      *rewards.Service
	ledgerService      *ledger.Service
}

// New creates a staker over state at block time now. Emitted events go to emit, which may be nil.
func New(state *state.State, now uint64, emit solidity.EmitFunc) *Staker {
	sctx := solidity.NewContext(Address, state, now, emit)

	p := params.New(sctx)
	b := bank.New(sctx)
	cps := checkpoints.New(sctx)
	stats := globalstats.New(sctx)
	validations := validation.New(sctx, p)

	return &Staker{
		sctx:   sctx,
		state:  state,
		bank:   b,
		params: p,

		checkpointService:  cps,
		globalStatsService: stats,
		validationService:  validations,
		rewardService:      rewards.New(sctx, p, cps, validations, stats, bank.NewTreasury(b, plume.TreasuryAccount)),
		ledgerService:      ledger.New(sctx, p, validations, stats),
	}
}

// atomic runs fn on a state checkpoint, reverted if fn fails.
func (s *Staker) atomic(fn func() error) error {
	rev := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(rev)
		return err
	}
	return nil
}

// view runs fn on a state checkpoint that is always reverted.
func (s *Staker) view(fn func() error) error {
	rev := s.state.NewCheckpoint()
	defer s.state.RevertTo(rev)
	return fn()
}

//
// Getters - no state change
//

// Params returns the governance params.
func (s *Staker) Params() *params.Params {
	return s.params
}

// Bank returns the balances the staker moves funds through.
func (s *Staker) Bank() *bank.Bank {
	return s.bank
}

// GetValidator returns a validator, empty if not registered.
func (s *Staker) GetValidator(id plume.ValidatorID) (*validation.Validator, error) {
	return s.validationService.GetValidator(id)
}

// Validators lists the ids of all registered validators.
func (s *Staker) Validators() ([]plume.ValidatorID, error) {
	return s.validationService.Validators()
}

// ValidatorByAdmin returns the validator administered by admin, zero if none.
func (s *Staker) ValidatorByAdmin(admin plume.Address) (plume.ValidatorID, error) {
	return s.validationService.ValidatorByAdmin(admin)
}

// Stakers returns a page of the stakers of a validator and the cursor of the next page.
func (s *Staker) Stakers(id plume.ValidatorID, cursor plume.Address, limit int) ([]plume.Address, plume.Address, error) {
	return s.validationService.Stakers(id, cursor, limit)
}

// AllStakers returns a page of every user with a stake relation and the cursor of the next page.
func (s *Staker) AllStakers(cursor plume.Address, limit int) ([]plume.Address, plume.Address, error) {
	return s.validationService.AllStakers(cursor, limit)
}

// UserValidators returns the validators user has a stake relation with.
func (s *Staker) UserValidators(user plume.Address) ([]plume.ValidatorID, error) {
	return s.validationService.UserValidators(user)
}

// UserStake returns the active stake of user on a validator.
func (s *Staker) UserStake(user plume.Address, id plume.ValidatorID) (*big.Int, error) {
	return s.validationService.UserStake(user, id)
}

// StakeInfo returns the principal of user summed over all validators.
func (s *Staker) StakeInfo(user plume.Address) (*ledger.StakeInfo, error) {
	return s.ledgerService.GetStakeInfo(user)
}

// Cooldown returns the cooldown of user on a validator.
func (s *Staker) Cooldown(user plume.Address, id plume.ValidatorID) (*ledger.Cooldown, error) {
	return s.ledgerService.GetCooldown(user, id)
}

// Withdrawable returns what Withdraw would pay user now.
func (s *Staker) Withdrawable(user plume.Address) (*big.Int, error) {
	return s.ledgerService.Withdrawable(user)
}

// Totals returns the contract-wide principal totals.
func (s *Staker) Totals() (*globalstats.Totals, error) {
	return s.globalStatsService.Totals()
}

// TotalClaimable returns the settled, unpaid rewards of token.
func (s *Staker) TotalClaimable(token plume.Address) (*big.Int, error) {
	return s.globalStatsService.TotalClaimable(token)
}

// RewardTokens lists every registered reward token, removed ones included.
func (s *Staker) RewardTokens() ([]plume.Address, error) {
	return s.rewardService.Tokens()
}

// RewardToken returns the reward configuration of token.
func (s *Staker) RewardToken(token plume.Address) (*rewards.Token, error) {
	return s.rewardService.GetToken(token)
}

// CheckpointCount returns the length of a checkpoint history.
func (s *Staker) CheckpointCount(kind checkpoints.Kind, id plume.ValidatorID, token plume.Address) (uint64, error) {
	return s.checkpointService.Count(kind, id, token)
}

// Checkpoint returns one checkpoint of a history.
func (s *Staker) Checkpoint(kind checkpoints.Kind, id plume.ValidatorID, token plume.Address, index uint64) (*checkpoints.Checkpoint, error) {
	return s.checkpointService.Get(kind, id, token, index)
}

// ValidatorReward returns the accrual state of (validator, token) brought up to now.
func (s *Staker) ValidatorReward(id plume.ValidatorID, token plume.Address) (vr *rewards.ValidatorReward, err error) {
	err = s.view(func() error {
		vr, err = s.rewardService.UpdateRewardPerToken(id, token)
		return err
	})
	return
}

// UserReward returns the settlement state of (user, validator, token) as of its last settlement.
func (s *Staker) UserReward(user plume.Address, id plume.ValidatorID, token plume.Address) (*rewards.UserReward, error) {
	return s.rewardService.GetUserReward(user, id, token)
}

// PendingReward returns what Claim would pay user in token now.
func (s *Staker) PendingReward(user plume.Address, token plume.Address) (amount *big.Int, err error) {
	err = s.view(func() error {
		amount, err = s.rewardService.PendingReward(user, token)
		return err
	})
	return
}

// PendingCommissionClaim returns the pending commission claim of a validator for token.
func (s *Staker) PendingCommissionClaim(id plume.ValidatorID, token plume.Address) (*rewards.CommissionClaim, error) {
	return s.rewardService.PendingCommissionClaim(id, token)
}

// SlashVote returns the expiration of the vote of voter against malicious, zero if none.
func (s *Staker) SlashVote(voter, malicious plume.ValidatorID) (uint64, error) {
	return s.validationService.VoteExpiration(voter, malicious)
}
