// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/plume"
)

type BlockIngestion struct {
	Number    uint64        `json:"number"`
	ID        plume.Bytes32 `json:"id"`
	Timestamp *time.Time    `json:"timestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	BlockIngestion *BlockIngestion `json:"blockIngestion"`
	QueueLength    int             `json:"queueLength"`
	Ready          bool            `json:"ready"`
}

// Health watches block production. A node with queued commands must keep sealing blocks.
type Health struct {
	lock         sync.RWMutex
	newBestBlock time.Time
	best         *executor.Header
	ready        bool
	exec         *executor.Executor
}

func New(exec *executor.Executor) *Health {
	return &Health{
		exec:         exec,
		best:         exec.Best(),
		newBestBlock: time.Now(),
	}
}

// Run follows new blocks until done is closed.
func (h *Health) Run(done <-chan struct{}) {
	for {
		waiter := h.exec.NewWaiter()
		if best := h.exec.Best(); best.ID() != h.bestID() {
			h.NewBestBlock(best)
		}
		select {
		case <-done:
			return
		case <-waiter.C():
		}
	}
}

func (h *Health) bestID() plume.Bytes32 {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.best.ID()
}

func (h *Health) NewBestBlock(header *executor.Header) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.newBestBlock = time.Now()
	h.best = header
}

// Ready marks the node as serving: genesis loaded and the executor running.
func (h *Health) Ready(ready bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.ready = ready
}

func (h *Health) Status(maxTimeBetweenBlocks time.Duration) *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	queued := h.exec.QueueLen()
	healthy := h.ready && (queued == 0 || time.Since(h.newBestBlock) <= maxTimeBetweenBlocks)
	seen := h.newBestBlock

	return &Status{
		Healthy: healthy,
		BlockIngestion: &BlockIngestion{
			Number:    h.best.Number,
			ID:        h.best.ID(),
			Timestamp: &seen,
		},
		QueueLength: queued,
		Ready:       h.ready,
	}
}
