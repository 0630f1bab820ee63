// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/acl"
	"github.com/plumestake/stakerd/api/utils"
	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker"
	"github.com/plumestake/stakerd/staker/linkedlist"
)

type Stakers struct {
	exec  *executor.Executor
	limit int
}

func New(exec *executor.Executor, pageLimit int) *Stakers {
	return &Stakers{
		exec,
		pageLimit,
	}
}

func (s *Stakers) handleGetStakers(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	cursor, err := utils.ParseAddress(query.Get("cursor"), true)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "cursor"))
	}
	limit, err := utils.ParseLimit(query.Get("limit"), s.limit)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "limit"))
	}

	page := &Page{Stakers: []plume.Address{}}
	if err := s.exec.View(func(engine *staker.Staker, _ *acl.ACL) error {
		users, next, err := engine.AllStakers(cursor, limit)
		if errors.Is(err, linkedlist.ErrCursorNotFound) {
			return utils.BadRequest(errors.WithMessage(err, "cursor"))
		}
		if err != nil {
			return err
		}
		page.Stakers = append(page.Stakers, users...)
		if !next.IsZero() {
			page.Next = &next
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, page)
}

func (s *Stakers) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.ParseAddress(mux.Vars(req)["address"], false)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}

	acc := &Account{Address: user, Positions: []*Position{}, Rewards: []*Pending{}}
	if err := s.exec.View(func(engine *staker.Staker, _ *acl.ACL) error {
		info, err := engine.StakeInfo(user)
		if err != nil {
			return err
		}
		acc.Staked, acc.Cooling, acc.Parked = amount(info.Staked), amount(info.Cooled), amount(info.Parked)

		withdrawable, err := engine.Withdrawable(user)
		if err != nil {
			return err
		}
		acc.Withdrawable = amount(withdrawable)

		ids, err := engine.UserValidators(user)
		if err != nil {
			return err
		}
		for _, id := range ids {
			stake, err := engine.UserStake(user, id)
			if err != nil {
				return err
			}
			cd, err := engine.Cooldown(user, id)
			if err != nil {
				return err
			}
			acc.Positions = append(acc.Positions, &Position{
				ValidatorID:     id,
				Stake:           amount(stake),
				CooldownAmount:  amount(cd.Amount),
				CooldownEndTime: cd.EndTime,
			})
		}

		tokens, err := engine.RewardTokens()
		if err != nil {
			return err
		}
		for _, token := range tokens {
			pending, err := engine.PendingReward(user, token)
			if err != nil {
				return err
			}
			acc.Rewards = append(acc.Rewards, &Pending{token, amount(pending)})
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (s *Stakers) handleGetSettlement(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	user, err := utils.ParseAddress(vars["address"], false)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	id, err := utils.ParseValidatorID(vars["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	token, err := utils.ParseAddress(vars["token"], false)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "token"))
	}

	var result *Settlement
	if err := s.exec.View(func(engine *staker.Staker, _ *acl.ACL) error {
		ur, err := engine.UserReward(user, id, token)
		if err != nil {
			return err
		}
		result = &Settlement{
			Paid:             amount(ur.Paid),
			LastSettlement:   ur.LastSettlement,
			CommissionCursor: ur.CommissionCursor,
			Claimable:        amount(ur.Claimable),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (s *Stakers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /stakers").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStakers))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetAccount))
	sub.Path("/{address}/settlements/{id}/{token}").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/settlements/{id}/{token}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetSettlement))
}
