// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package acl keeps role memberships in state.
package acl

import (
	"github.com/plumestake/stakerd/log"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/linkedlist"
	"github.com/plumestake/stakerd/staker/reverts"
)

var (
	logger = log.WithContext("pkg", "acl")

	// Address owns the role storage.
	Address = plume.BytesToAddress([]byte("acl"))

	slotMembers = plume.BytesToBytes32([]byte("role-members"))
)

// Roles, identified by the keccak256 hash of their names.
var (
	AdminRole         = plume.Keccak256([]byte("ADMIN_ROLE"))
	ValidatorRole     = plume.Keccak256([]byte("VALIDATOR_ROLE"))
	RewardManagerRole = plume.Keccak256([]byte("REWARD_MANAGER_ROLE"))
	TimelockRole      = plume.Keccak256([]byte("TIMELOCK_ROLE"))
)

// Names maps role names used in configuration to role ids.
var Names = map[string]plume.Bytes32{
	"ADMIN_ROLE":          AdminRole,
	"VALIDATOR_ROLE":      ValidatorRole,
	"REWARD_MANAGER_ROLE": RewardManagerRole,
	"TIMELOCK_ROLE":       TimelockRole,
}

// ACL binds the role storage. AdminRole administers every role.
type ACL struct {
	sctx    *solidity.Context
	members *solidity.Mapping[solidity.CompositeKey, bool]
}

func New(sctx *solidity.Context) *ACL {
	sctx = sctx.WithAddress(Address)
	return &ACL{
		sctx:    sctx,
		members: solidity.NewMapping[solidity.CompositeKey, bool](sctx, slotMembers),
	}
}

func (a *ACL) list(role plume.Bytes32) *linkedlist.LinkedList[plume.Address] {
	return linkedlist.New[plume.Address](a.sctx, "role-list", role.Bytes())
}

// HasRole reports whether account holds role.
func (a *ACL) HasRole(role plume.Bytes32, account plume.Address) (bool, error) {
	return a.members.Get(solidity.NewKey(role, account))
}

// Require returns ErrUnauthorized unless account holds role.
func (a *ACL) Require(role plume.Bytes32, account plume.Address) error {
	ok, err := a.HasRole(role, account)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrUnauthorized.Withf("%v lacks role %v", account, role.AbbrevString())
	}
	return nil
}

// Members returns the holders of role, in grant order.
func (a *ACL) Members(role plume.Bytes32) ([]plume.Address, error) {
	var members []plume.Address
	err := a.list(role).Iter(func(account plume.Address) error {
		members = append(members, account)
		return nil
	})
	return members, err
}

// Grant gives role to account. It returns false if the account already holds it.
func (a *ACL) Grant(role plume.Bytes32, account plume.Address) (bool, error) {
	if account.IsZero() {
		return false, reverts.ErrZeroAddress
	}
	has, err := a.HasRole(role, account)
	if err != nil || has {
		return false, err
	}
	if err := a.members.Set(solidity.NewKey(role, account), true); err != nil {
		return false, err
	}
	if _, err := a.list(role).Add(account); err != nil {
		return false, err
	}
	logger.Debug("role granted", "role", role.AbbrevString(), "account", account)
	return true, nil
}

// Revoke takes role from account. It returns false if the account did not hold it.
func (a *ACL) Revoke(role plume.Bytes32, account plume.Address) (bool, error) {
	has, err := a.HasRole(role, account)
	if err != nil || !has {
		return false, err
	}
	a.members.Delete(solidity.NewKey(role, account))
	if _, err := a.list(role).Remove(account); err != nil {
		return false, err
	}
	logger.Debug("role revoked", "role", role.AbbrevString(), "account", account)
	return true, nil
}

// GrantBy grants role on behalf of caller, who must hold AdminRole.
func (a *ACL) GrantBy(caller plume.Address, role plume.Bytes32, account plume.Address) (bool, error) {
	if err := a.Require(AdminRole, caller); err != nil {
		return false, err
	}
	return a.Grant(role, account)
}

// RevokeBy revokes role on behalf of caller, who must hold AdminRole.
func (a *ACL) RevokeBy(caller plume.Address, role plume.Bytes32, account plume.Address) (bool, error) {
	if err := a.Require(AdminRole, caller); err != nil {
		return false, err
	}
	return a.Revoke(role, account)
}
