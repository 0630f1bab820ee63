// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/acl"
	"github.com/plumestake/stakerd/api/utils"
	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker"
	"github.com/plumestake/stakerd/staker/checkpoints"
	"github.com/plumestake/stakerd/staker/linkedlist"
	"github.com/plumestake/stakerd/staker/validation"
)

type Validators struct {
	exec  *executor.Executor
	limit int
}

func New(exec *executor.Executor, pageLimit int) *Validators {
	return &Validators{
		exec,
		pageLimit,
	}
}

// view runs fn on the validator named by the request path, responding 404 if it is not registered.
func (v *Validators) view(req *http.Request, fn func(engine *staker.Staker, val *validation.Validator) error) error {
	id, err := utils.ParseValidatorID(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return v.exec.View(func(engine *staker.Staker, _ *acl.ACL) error {
		val, err := engine.GetValidator(id)
		if err != nil {
			return err
		}
		if val.IsEmpty() {
			return utils.NotFound(fmt.Errorf("validator %v not found", id))
		}
		return fn(engine, val)
	})
}

func (v *Validators) handleGetValidators(w http.ResponseWriter, _ *http.Request) error {
	var list []*Validator
	err := v.exec.View(func(engine *staker.Staker, _ *acl.ACL) error {
		ids, err := engine.Validators()
		if err != nil {
			return err
		}
		list = make([]*Validator, 0, len(ids))
		for _, id := range ids {
			val, err := engine.GetValidator(id)
			if err != nil {
				return err
			}
			list = append(list, convertValidator(val))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (v *Validators) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	var result *Validator
	if err := v.view(req, func(_ *staker.Staker, val *validation.Validator) error {
		result = convertValidator(val)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (v *Validators) handleGetStakers(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	cursor, err := utils.ParseAddress(query.Get("cursor"), true)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "cursor"))
	}
	limit, err := utils.ParseLimit(query.Get("limit"), v.limit)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "limit"))
	}

	page := &StakersPage{Stakers: []*Staker{}}
	if err := v.view(req, func(engine *staker.Staker, val *validation.Validator) error {
		users, next, err := engine.Stakers(val.ID, cursor, limit)
		if errors.Is(err, linkedlist.ErrCursorNotFound) {
			return utils.BadRequest(errors.WithMessage(err, "cursor"))
		}
		if err != nil {
			return err
		}
		for _, user := range users {
			stake, err := engine.UserStake(user, val.ID)
			if err != nil {
				return err
			}
			cd, err := engine.Cooldown(user, val.ID)
			if err != nil {
				return err
			}
			page.Stakers = append(page.Stakers, &Staker{user, amount(stake), convertCooldown(cd)})
		}
		if !next.IsZero() {
			page.Next = &next
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, page)
}

func (v *Validators) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	var list []*Reward
	if err := v.view(req, func(engine *staker.Staker, val *validation.Validator) error {
		tokens, err := engine.RewardTokens()
		if err != nil {
			return err
		}
		list = make([]*Reward, 0, len(tokens))
		for _, token := range tokens {
			vr, err := engine.ValidatorReward(val.ID, token)
			if err != nil {
				return err
			}
			claim, err := engine.PendingCommissionClaim(val.ID, token)
			if err != nil {
				return err
			}
			list = append(list, convertReward(token, vr, claim))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func parseKind(s string) (checkpoints.Kind, error) {
	for _, kind := range []checkpoints.Kind{checkpoints.KindRewardRate, checkpoints.KindCommission} {
		if kind.String() == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

func (v *Validators) handleGetCheckpoints(w http.ResponseWriter, req *http.Request) error {
	kind, err := parseKind(mux.Vars(req)["kind"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "kind"))
	}
	token, err := utils.ParseAddress(mux.Vars(req)["token"], false)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "token"))
	}

	var list []*Checkpoint
	if err := v.view(req, func(engine *staker.Staker, val *validation.Validator) error {
		count, err := engine.CheckpointCount(kind, val.ID, token)
		if err != nil {
			return err
		}
		// newest first
		from := uint64(0)
		if count > uint64(v.limit) {
			from = count - uint64(v.limit)
		}
		list = make([]*Checkpoint, 0, count-from)
		for i := count; i > from; i-- {
			cp, err := engine.Checkpoint(kind, val.ID, token, i-1)
			if err != nil {
				return err
			}
			list = append(list, convertCheckpoint(cp))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (v *Validators) handleGetVotes(w http.ResponseWriter, req *http.Request) error {
	votes := []*Vote{}
	if err := v.view(req, func(engine *staker.Staker, val *validation.Validator) error {
		ids, err := engine.Validators()
		if err != nil {
			return err
		}
		for _, voter := range ids {
			if voter == val.ID {
				continue
			}
			exp, err := engine.SlashVote(voter, val.ID)
			if err != nil {
				return err
			}
			if exp != 0 {
				votes = append(votes, &Vote{voter, exp})
			}
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, votes)
}

func (v *Validators) handleGetByAdmin(w http.ResponseWriter, req *http.Request) error {
	admin, err := utils.ParseAddress(mux.Vars(req)["address"], false)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var id plume.ValidatorID
	if err := v.exec.View(func(engine *staker.Staker, _ *acl.ACL) error {
		id, err = engine.ValidatorByAdmin(admin)
		return err
	}); err != nil {
		return err
	}
	if id.IsZero() {
		return utils.NotFound(fmt.Errorf("no validator administered by %v", admin))
	}
	return utils.WriteJSON(w, utils.M{"id": id})
}

func (v *Validators) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /validators").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetValidators))
	sub.Path("/admin/{address}").
		Methods(http.MethodGet).
		Name("GET /validators/admin/{address}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetByAdmin))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /validators/{id}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetValidator))
	sub.Path("/{id}/stakers").
		Methods(http.MethodGet).
		Name("GET /validators/{id}/stakers").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetStakers))
	sub.Path("/{id}/rewards").
		Methods(http.MethodGet).
		Name("GET /validators/{id}/rewards").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetRewards))
	sub.Path("/{id}/checkpoints/{kind}/{token}").
		Methods(http.MethodGet).
		Name("GET /validators/{id}/checkpoints/{kind}/{token}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetCheckpoints))
	sub.Path("/{id}/votes").
		Methods(http.MethodGet).
		Name("GET /validators/{id}/votes").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetVotes))
}
