// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package executor

import (
	"bytes"
	"encoding/json"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/plumestake/stakerd/acl"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker"
	"github.com/plumestake/stakerd/staker/params"
	"github.com/plumestake/stakerd/staker/reverts"
)

// Command is a state changing request. Sender is trusted as given; authenticating it is
// left to whatever submits commands.
type Command struct {
	Op     string          `json:"op"`
	Sender plume.Address   `json:"sender"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// env is what a command handler operates on.
type env struct {
	engine *staker.Staker
	roles  *acl.ACL
}

type handler struct {
	role *plume.Bytes32 // required role of the sender, nil if none
	run  func(e *env, sender plume.Address, args json.RawMessage) (any, error)
}

// op builds a handler decoding its args strictly into A.
func op[A any](role *plume.Bytes32, fn func(e *env, sender plume.Address, args *A) (any, error)) handler {
	return handler{
		role: role,
		run: func(e *env, sender plume.Address, raw json.RawMessage) (any, error) {
			var args A
			if len(raw) > 0 {
				decoder := json.NewDecoder(bytes.NewReader(raw))
				decoder.DisallowUnknownFields()
				if err := decoder.Decode(&args); err != nil {
					return nil, reverts.ErrInvalidParam.Withf("args: %v", err)
				}
			}
			return fn(e, sender, &args)
		},
	}
}

// Amount is a big integer in JSON, either hex with 0x prefix or decimal, always quoted.
type Amount = math.HexOrDecimal256

func bigOf(a *Amount) *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

func amountOf(v *big.Int) *Amount {
	if v == nil {
		v = new(big.Int)
	}
	return (*Amount)(new(big.Int).Set(v))
}

type (
	stakeArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		Amount      *Amount           `json:"amount"`
	}
	stakeOnBehalfArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		User        plume.Address     `json:"user"`
		Amount      *Amount           `json:"amount"`
	}
	validatorArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
	}
	claimArgs struct {
		Token       plume.Address      `json:"token"`
		ValidatorID *plume.ValidatorID `json:"validatorId,omitempty"`
	}
	addValidatorArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		Commission  *Amount           `json:"commission"`
		Admin       plume.Address     `json:"admin"`
		Withdraw    plume.Address     `json:"withdraw"`
		MaxCapacity *Amount           `json:"maxCapacity"`
	}
	statusArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		Active      bool              `json:"active"`
	}
	commissionArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		Commission  *Amount           `json:"commission"`
	}
	capacityArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		MaxCapacity *Amount           `json:"maxCapacity"`
	}
	addressesArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		Admin       plume.Address     `json:"admin"`
		Withdraw    plume.Address     `json:"withdraw"`
	}
	voteArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		Expiration  uint64            `json:"expiration"`
	}
	commissionClaimArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		Token       plume.Address     `json:"token"`
	}
	tokenArgs struct {
		Token   plume.Address `json:"token"`
		Rate    *Amount       `json:"rate,omitempty"`
		MaxRate *Amount       `json:"maxRate,omitempty"`
	}
	paramArgs struct {
		Name  string  `json:"name"`
		Value *Amount `json:"value"`
	}
	clearArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		Users       []plume.Address   `json:"users"`
	}
	clearPageArgs struct {
		ValidatorID plume.ValidatorID `json:"validatorId"`
		Cursor      plume.Address     `json:"cursor"`
		Limit       int               `json:"limit"`
	}
	roleArgs struct {
		Role    string        `json:"role"`
		Account plume.Address `json:"account"`
	}
	transferArgs struct {
		Token   plume.Address `json:"token"`
		Account plume.Address `json:"account"`
		Amount  *Amount       `json:"amount"`
	}
)

// ClaimedOutput is the output of a claim.
type ClaimedOutput struct {
	Token  plume.Address `json:"token"`
	Amount *Amount       `json:"amount"`
}

// CooldownOutput is the output of unstake.
type CooldownOutput struct {
	Amount  *Amount `json:"amount"`
	EndTime uint64  `json:"endTime"`
}

// ClearPageOutput is the output of a paged cleanup.
type ClearPageOutput struct {
	Next plume.Address `json:"next"`
}

func roleOf(name string) (plume.Bytes32, error) {
	role, ok := acl.Names[name]
	if !ok {
		return plume.Bytes32{}, reverts.ErrInvalidParam.Withf("unknown role %q", name)
	}
	return role, nil
}

var handlers = map[string]handler{
	"stake": op(nil, func(e *env, sender plume.Address, a *stakeArgs) (any, error) {
		return nil, e.engine.Stake(sender, a.ValidatorID, bigOf(a.Amount))
	}),
	"stakeOnBehalf": op(nil, func(e *env, sender plume.Address, a *stakeOnBehalfArgs) (any, error) {
		return nil, e.engine.StakeOnBehalf(sender, a.User, a.ValidatorID, bigOf(a.Amount))
	}),
	"unstake": op(nil, func(e *env, sender plume.Address, a *stakeArgs) (any, error) {
		cd, err := e.engine.Unstake(sender, a.ValidatorID, bigOf(a.Amount))
		if err != nil {
			return nil, err
		}
		return &CooldownOutput{amountOf(cd.Amount), cd.EndTime}, nil
	}),
	"restake": op(nil, func(e *env, sender plume.Address, a *stakeArgs) (any, error) {
		return nil, e.engine.Restake(sender, a.ValidatorID, bigOf(a.Amount))
	}),
	"restakeRewards": op(nil, func(e *env, sender plume.Address, a *validatorArgs) (any, error) {
		amount, err := e.engine.RestakeRewards(sender, a.ValidatorID)
		return amountOf(amount), err
	}),
	"withdraw": op(nil, func(e *env, sender plume.Address, _ *struct{}) (any, error) {
		amount, err := e.engine.Withdraw(sender)
		return amountOf(amount), err
	}),
	"claim": op(nil, func(e *env, sender plume.Address, a *claimArgs) (any, error) {
		var (
			amount *big.Int
			err    error
		)
		if a.ValidatorID != nil {
			amount, err = e.engine.ClaimFromValidator(sender, a.Token, *a.ValidatorID)
		} else {
			amount, err = e.engine.Claim(sender, a.Token)
		}
		if err != nil {
			return nil, err
		}
		return &ClaimedOutput{a.Token, amountOf(amount)}, nil
	}),
	"claimAll": op(nil, func(e *env, sender plume.Address, _ *struct{}) (any, error) {
		claimed, err := e.engine.ClaimAll(sender)
		if err != nil {
			return nil, err
		}
		out := make([]*ClaimedOutput, 0, len(claimed))
		for _, c := range claimed {
			out = append(out, &ClaimedOutput{c.Token, amountOf(c.Amount)})
		}
		return out, nil
	}),

	"addValidator": op(&acl.AdminRole, func(e *env, _ plume.Address, a *addValidatorArgs) (any, error) {
		return nil, e.engine.AddValidator(a.ValidatorID, bigOf(a.Commission), a.Admin, a.Withdraw, bigOf(a.MaxCapacity))
	}),
	"setValidatorStatus": op(&acl.AdminRole, func(e *env, _ plume.Address, a *statusArgs) (any, error) {
		return nil, e.engine.SetValidatorStatus(a.ValidatorID, a.Active)
	}),
	"setValidatorCommission": op(nil, func(e *env, sender plume.Address, a *commissionArgs) (any, error) {
		return nil, e.engine.SetValidatorCommission(sender, a.ValidatorID, bigOf(a.Commission))
	}),
	"setValidatorCapacity": op(&acl.AdminRole, func(e *env, _ plume.Address, a *capacityArgs) (any, error) {
		return nil, e.engine.SetValidatorCapacity(a.ValidatorID, bigOf(a.MaxCapacity))
	}),
	"setValidatorAddresses": op(nil, func(e *env, sender plume.Address, a *addressesArgs) (any, error) {
		return nil, e.engine.SetValidatorAddresses(sender, a.ValidatorID, a.Admin, a.Withdraw)
	}),
	"setMaxAllowedValidatorCommission": op(&acl.TimelockRole, func(e *env, _ plume.Address, a *commissionArgs) (any, error) {
		return nil, e.engine.SetMaxAllowedValidatorCommission(bigOf(a.Commission))
	}),
	"voteToSlash": op(nil, func(e *env, sender plume.Address, a *voteArgs) (any, error) {
		return nil, e.engine.VoteToSlash(sender, a.ValidatorID, a.Expiration)
	}),
	"slashValidator": op(&acl.AdminRole, func(e *env, _ plume.Address, a *validatorArgs) (any, error) {
		return nil, e.engine.Slash(a.ValidatorID)
	}),
	"requestCommissionClaim": op(nil, func(e *env, sender plume.Address, a *commissionClaimArgs) (any, error) {
		claim, err := e.engine.RequestCommissionClaim(sender, a.ValidatorID, a.Token)
		if err != nil {
			return nil, err
		}
		return &CooldownOutput{amountOf(claim.Amount), claim.ReadyAt}, nil
	}),
	"finalizeCommissionClaim": op(nil, func(e *env, sender plume.Address, a *commissionClaimArgs) (any, error) {
		amount, err := e.engine.FinalizeCommissionClaim(sender, a.ValidatorID, a.Token)
		if err != nil {
			return nil, err
		}
		return &ClaimedOutput{a.Token, amountOf(amount)}, nil
	}),

	"addRewardToken": op(&acl.RewardManagerRole, func(e *env, _ plume.Address, a *tokenArgs) (any, error) {
		return nil, e.engine.AddRewardToken(a.Token, bigOf(a.Rate), bigOf(a.MaxRate))
	}),
	"removeRewardToken": op(&acl.RewardManagerRole, func(e *env, _ plume.Address, a *tokenArgs) (any, error) {
		return nil, e.engine.RemoveRewardToken(a.Token)
	}),
	"setRewardRate": op(&acl.RewardManagerRole, func(e *env, _ plume.Address, a *tokenArgs) (any, error) {
		return nil, e.engine.SetRewardRate(a.Token, bigOf(a.Rate))
	}),
	"setMaxRewardRate": op(&acl.RewardManagerRole, func(e *env, _ plume.Address, a *tokenArgs) (any, error) {
		return nil, e.engine.SetMaxRewardRate(a.Token, bigOf(a.MaxRate))
	}),
	"setParam": op(&acl.TimelockRole, func(e *env, _ plume.Address, a *paramArgs) (any, error) {
		key, ok := params.Names[a.Name]
		if !ok {
			return nil, reverts.ErrInvalidParam.Withf("unknown param %q", a.Name)
		}
		return nil, e.engine.SetParam(key, bigOf(a.Value))
	}),

	"adminClearValidatorRecord": op(&acl.AdminRole, func(e *env, _ plume.Address, a *clearArgs) (any, error) {
		if len(a.Users) != 1 {
			return nil, reverts.ErrInvalidParam.Withf("expected one user, got %d", len(a.Users))
		}
		return nil, e.engine.AdminClearValidatorRecord(a.Users[0], a.ValidatorID)
	}),
	"adminBatchClearValidatorRecords": op(&acl.AdminRole, func(e *env, _ plume.Address, a *clearArgs) (any, error) {
		return nil, e.engine.AdminBatchClearValidatorRecords(a.Users, a.ValidatorID)
	}),
	"adminClearSlashedStakers": op(&acl.AdminRole, func(e *env, _ plume.Address, a *clearPageArgs) (any, error) {
		next, err := e.engine.AdminClearSlashedStakers(a.ValidatorID, a.Cursor, a.Limit)
		if err != nil {
			return nil, err
		}
		return &ClearPageOutput{next}, nil
	}),

	"grantRole": op(&acl.AdminRole, func(e *env, sender plume.Address, a *roleArgs) (any, error) {
		role, err := roleOf(a.Role)
		if err != nil {
			return nil, err
		}
		return e.roles.GrantBy(sender, role, a.Account)
	}),
	"revokeRole": op(&acl.AdminRole, func(e *env, sender plume.Address, a *roleArgs) (any, error) {
		role, err := roleOf(a.Role)
		if err != nil {
			return nil, err
		}
		return e.roles.RevokeBy(sender, role, a.Account)
	}),
	"transfer": op(nil, func(e *env, sender plume.Address, a *transferArgs) (any, error) {
		return nil, e.engine.Bank().Transfer(a.Token, sender, a.Account, bigOf(a.Amount))
	}),
	"mint": op(&acl.AdminRole, func(e *env, _ plume.Address, a *transferArgs) (any, error) {
		return nil, e.engine.Bank().Mint(a.Token, a.Account, bigOf(a.Amount))
	}),
}

// Ops returns the names of the supported commands, sorted.
func Ops() []string {
	ops := make([]string, 0, len(handlers))
	for name := range handlers {
		ops = append(ops, name)
	}
	sort.Strings(ops)
	return ops
}
