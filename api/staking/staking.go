// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/plumestake/stakerd/acl"
	"github.com/plumestake/stakerd/api/utils"
	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker"
	"github.com/plumestake/stakerd/staker/params"
)

// Staking serves the contract-wide views: totals, params, reward tokens and roles.
type Staking struct {
	exec *executor.Executor
}

func New(exec *executor.Executor) *Staking {
	return &Staking{exec}
}

func (s *Staking) handleGetTotals(w http.ResponseWriter, _ *http.Request) error {
	var result *Totals
	if err := s.exec.View(func(engine *staker.Staker, _ *acl.ACL) error {
		totals, err := engine.Totals()
		if err != nil {
			return err
		}
		pool, err := engine.Bank().Balance(plume.NativeToken, plume.StakingPool)
		if err != nil {
			return err
		}
		result = &Totals{amount(totals.Staked), amount(totals.Cooling), amount(totals.Withdrawable), amount(pool)}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (s *Staking) handleGetParams(w http.ResponseWriter, _ *http.Request) error {
	result := make(map[string]string, len(params.Names))
	if err := s.exec.View(func(engine *staker.Staker, _ *acl.ACL) error {
		for name, key := range params.Names {
			val, err := engine.Params().Get(key)
			if err != nil {
				return err
			}
			result[name] = val.String()
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (s *Staking) handleGetTokens(w http.ResponseWriter, _ *http.Request) error {
	list := []*Token{}
	if err := s.exec.View(func(engine *staker.Staker, _ *acl.ACL) error {
		tokens, err := engine.RewardTokens()
		if err != nil {
			return err
		}
		for _, token := range tokens {
			rt, err := engine.RewardToken(token)
			if err != nil {
				return err
			}
			claimable, err := engine.TotalClaimable(token)
			if err != nil {
				return err
			}
			treasury, err := engine.Bank().Balance(token, plume.TreasuryAccount)
			if err != nil {
				return err
			}
			list = append(list, &Token{
				Address:        token,
				Active:         rt.Active,
				RewardRate:     amount(rt.RewardRate),
				MaxRewardRate:  amount(rt.MaxRewardRate),
				AddedAt:        rt.AddedAt,
				TotalClaimable: amount(claimable),
				Treasury:       amount(treasury),
			})
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (s *Staking) handleGetRoleMembers(w http.ResponseWriter, req *http.Request) error {
	name := mux.Vars(req)["role"]
	role, ok := acl.Names[name]
	if !ok {
		names := make([]string, 0, len(acl.Names))
		for n := range acl.Names {
			names = append(names, n)
		}
		sort.Strings(names)
		return utils.BadRequest(fmt.Errorf("unknown role %q, want one of %v", name, names))
	}

	var members []plume.Address
	if err := s.exec.View(func(_ *staker.Staker, roles *acl.ACL) (err error) {
		members, err = roles.Members(role)
		return
	}); err != nil {
		return err
	}
	if members == nil {
		members = []plume.Address{}
	}
	return utils.WriteJSON(w, members)
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/totals").
		Methods(http.MethodGet).
		Name("GET /staking/totals").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTotals))
	sub.Path("/params").
		Methods(http.MethodGet).
		Name("GET /staking/params").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetParams))
	sub.Path("/tokens").
		Methods(http.MethodGet).
		Name("GET /staking/tokens").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTokens))
	sub.Path("/roles/{role}").
		Methods(http.MethodGet).
		Name("GET /staking/roles/{role}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetRoleMembers))
}
