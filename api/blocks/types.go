// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
)

type JSONBlockSummary struct {
	Number       uint64        `json:"number"`
	ID           plume.Bytes32 `json:"id"`
	ParentID     plume.Bytes32 `json:"parentID"`
	Timestamp    uint64        `json:"timestamp"`
	CommandsRoot plume.Bytes32 `json:"commandsRoot"`
	ReceiptsRoot plume.Bytes32 `json:"receiptsRoot"`
	StateChanges uint64        `json:"stateChanges"`
	IsBest       bool          `json:"isBest"`
}

type JSONCollapsedBlock struct {
	*JSONBlockSummary
	Commands []string `json:"commands"`
}

type JSONExpandedBlock struct {
	*JSONBlockSummary
	Commands []*executor.Command `json:"commands"`
}

type JSONEvent struct {
	Name      string                `json:"name"`
	Validator plume.ValidatorID     `json:"validator,omitempty"`
	Account   plume.Address         `json:"account"`
	Token     plume.Address         `json:"token"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

type JSONReceipt struct {
	CommandIndex uint32          `json:"commandIndex"`
	Op           string          `json:"op"`
	Reverted     bool            `json:"reverted"`
	Error        string          `json:"error,omitempty"`
	Output       json.RawMessage `json:"output,omitempty"`
	Events       []*JSONEvent    `json:"events"`
}

func convertSummary(h *executor.Header, best *executor.Header) *JSONBlockSummary {
	return &JSONBlockSummary{
		Number:       h.Number,
		ID:           h.ID(),
		ParentID:     h.ParentID,
		Timestamp:    h.Timestamp,
		CommandsRoot: h.CommandsRoot,
		ReceiptsRoot: h.ReceiptsRoot,
		StateChanges: h.StateChanges,
		IsBest:       h.Number == best.Number,
	}
}

// ConvertEvent converts an emitted event into its JSON form.
func ConvertEvent(ev *solidity.Event) *JSONEvent {
	amount := ev.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	return &JSONEvent{
		Name:      ev.Name,
		Validator: ev.Validator,
		Account:   ev.Account,
		Token:     ev.Token,
		Amount:    (*math.HexOrDecimal256)(amount),
	}
}

// ConvertReceipt converts a receipt into its JSON form.
func ConvertReceipt(r *executor.Receipt) *JSONReceipt {
	events := make([]*JSONEvent, 0, len(r.Events))
	for _, ev := range r.Events {
		events = append(events, ConvertEvent(ev))
	}
	jr := &JSONReceipt{
		CommandIndex: r.CommandIndex,
		Op:           r.Op,
		Reverted:     r.Reverted,
		Error:        r.Error,
		Events:       events,
	}
	if len(r.Output) > 0 {
		jr.Output = r.Output
	}
	return jr
}
