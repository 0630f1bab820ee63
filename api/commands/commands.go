// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/api/blocks"
	"github.com/plumestake/stakerd/api/utils"
	"github.com/plumestake/stakerd/executor"
)

// Result is the response to a submitted command, once its block is sealed.
type Result struct {
	BlockNumber uint64 `json:"blockNumber"`
	*blocks.JSONReceipt
}

type Commands struct {
	exec    *executor.Executor
	timeout time.Duration
}

func New(exec *executor.Executor, timeout time.Duration) *Commands {
	return &Commands{
		exec,
		timeout,
	}
}

func (c *Commands) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	var cmd executor.Command
	if err := utils.ParseJSON(req.Body, &cmd); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if cmd.Sender.IsZero() {
		return utils.BadRequest(errors.New("sender: zero address"))
	}

	ctx, cancel := context.WithTimeout(req.Context(), c.timeout)
	defer cancel()

	receipt, err := c.exec.Submit(ctx, &cmd)
	if err != nil {
		switch {
		case errors.Is(err, executor.ErrUnknownOp):
			return utils.BadRequest(err)
		case errors.Is(err, context.DeadlineExceeded):
			return utils.HTTPError(errors.New("command not sealed in time"), http.StatusServiceUnavailable)
		case errors.Is(err, executor.ErrClosed):
			return utils.HTTPError(err, http.StatusServiceUnavailable)
		}
		return err
	}
	return utils.WriteJSON(w, &Result{receipt.BlockNumber, blocks.ConvertReceipt(receipt)})
}

func (c *Commands) handleGetOps(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, executor.Ops())
}

func (c *Commands) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /commands").
		HandlerFunc(utils.WrapHandlerFunc(c.handleSubmit))
	sub.Path("/ops").
		Methods(http.MethodGet).
		Name("GET /commands/ops").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetOps))
}
