// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/api/utils"
	"github.com/plumestake/stakerd/executor"
)

type Blocks struct {
	exec *executor.Executor
}

func New(exec *executor.Executor) *Blocks {
	return &Blocks{exec}
}

func (b *Blocks) getBlock(req *http.Request) (*executor.Block, *executor.Header, error) {
	number, ok, err := utils.ParseBlockNumber(mux.Vars(req)["revision"])
	if err != nil {
		return nil, nil, utils.BadRequest(errors.WithMessage(err, "revision"))
	}
	best := b.exec.Best()
	if !ok {
		number = best.Number
	}
	blk, err := b.exec.GetBlock(number)
	if err != nil {
		if b.exec.IsNotFound(err) {
			return nil, nil, utils.NotFound(fmt.Errorf("block %d not found", number))
		}
		return nil, nil, err
	}
	return blk, best, nil
}

func (b *Blocks) handleGetBlock(w http.ResponseWriter, req *http.Request) error {
	expanded := req.URL.Query().Get("expanded")
	if expanded != "" && expanded != "false" && expanded != "true" {
		return utils.BadRequest(errors.WithMessage(errors.New("should be boolean"), "expanded"))
	}

	blk, best, err := b.getBlock(req)
	if err != nil {
		return err
	}
	summary := convertSummary(blk.Header, best)
	if expanded == "true" {
		cmds := blk.Commands
		if cmds == nil {
			cmds = []*executor.Command{}
		}
		return utils.WriteJSON(w, &JSONExpandedBlock{summary, cmds})
	}

	ops := make([]string, 0, len(blk.Commands))
	for _, cmd := range blk.Commands {
		ops = append(ops, cmd.Op)
	}
	return utils.WriteJSON(w, &JSONCollapsedBlock{summary, ops})
}

func (b *Blocks) handleGetReceipts(w http.ResponseWriter, req *http.Request) error {
	blk, _, err := b.getBlock(req)
	if err != nil {
		return err
	}
	receipts, err := b.exec.GetReceipts(blk.Header.Number)
	if err != nil {
		return err
	}
	list := make([]*JSONReceipt, 0, len(receipts))
	for _, r := range receipts {
		list = append(list, ConvertReceipt(r))
	}
	return utils.WriteJSON(w, list)
}

func (b *Blocks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/{revision}").
		Methods(http.MethodGet).
		Name("GET /blocks/{revision}").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBlock))
	sub.Path("/{revision}/receipts").
		Methods(http.MethodGet).
		Name("GET /blocks/{revision}/receipts").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetReceipts))
}
