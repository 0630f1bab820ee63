// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package executor

import (
	"encoding/json"

	"github.com/plumestake/stakerd/solidity"
)

// Receipt is the outcome of a command. A reverted command leaves no state change and no events.
type Receipt struct {
	BlockNumber  uint64
	CommandIndex uint32
	Op           string
	Reverted     bool
	Error        string
	Output       json.RawMessage
	Events       []*solidity.Event
}
