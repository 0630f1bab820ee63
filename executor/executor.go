// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package executor serializes commands into blocks and applies them to the staking engine,
// one block at a time.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/acl"
	"github.com/plumestake/stakerd/bank"
	"github.com/plumestake/stakerd/co"
	"github.com/plumestake/stakerd/eventdb"
	"github.com/plumestake/stakerd/genesis"
	"github.com/plumestake/stakerd/kv"
	"github.com/plumestake/stakerd/log"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/state"
)

var logger = log.WithContext("pkg", "executor")

var (
	// ErrUnknownOp is returned when submitting a command no handler serves.
	ErrUnknownOp = errors.New("unknown op")
	// ErrClosed is returned to commands still queued when the executor stops.
	ErrClosed = errors.New("executor closed")
)

type Options struct {
	BlockInterval    time.Duration
	MaxBlockCommands int
	QueueSize        int
	StateCacheSize   int           // in bytes
	NTPServer        string        // empty disables the clock check
	Clock            func() uint64 // unix seconds, defaults to the wall clock
}

func (o *Options) normalize() {
	if o.BlockInterval <= 0 {
		o.BlockInterval = time.Duration(plume.BlockInterval) * time.Second
	}
	if o.MaxBlockCommands <= 0 {
		o.MaxBlockCommands = 1000
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 4096
	}
	if o.Clock == nil {
		o.Clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
}

type result struct {
	receipt *Receipt
	err     error
}

type request struct {
	cmd    *Command
	result chan result
}

// Executor is the single writer of the engine state. Commands submitted concurrently are
// queued, sealed into a block every block interval, and executed in submission order.
// Each command is atomic: a failing command is reverted and reported in its receipt.
type Executor struct {
	store  kv.Store
	stater *state.Stater
	events *eventdb.EventDB
	opts   Options

	writeMu sync.Mutex   // serializes block execution
	mu      sync.RWMutex // guards committed state and best
	best    *Block

	queue    chan *request
	newBlock co.Signal
}

// New creates an executor over store. Events are recorded in events, which may be nil.
func New(store kv.Store, events *eventdb.EventDB, opts Options) *Executor {
	opts.normalize()
	return &Executor{
		store:  store,
		stater: state.NewStater(store, opts.StateCacheSize),
		events: events,
		opts:   opts,
		queue:  make(chan *request, opts.QueueSize),
	}
}

// Initialize loads the sealed chain, or builds block 0 from gen on an empty store.
// The genesis must be the one the store was created with.
func (e *Executor) Initialize(gen *genesis.Genesis) (*Header, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := e.stater.CheckSchema(); err != nil {
		return nil, err
	}

	best, err := loadBest(e.store)
	if err != nil {
		return nil, errors.Wrap(err, "load best block")
	}
	if best != nil {
		first, err := loadBlock(e.store, 0)
		if err != nil {
			return nil, errors.Wrap(err, "load block 0")
		}
		if first.Header.ParentID != gen.ID() {
			return nil, fmt.Errorf("genesis mismatch: store has %v, given %v", first.Header.ParentID, gen.ID())
		}
		e.setBest(best)
		logger.Info("loaded chain", "number", best.Header.Number, "id", best.Header.ID())
		return best.Header, nil
	}

	st := e.stater.NewState()
	if err := gen.Build(st); err != nil {
		return nil, errors.Wrap(err, "build genesis")
	}
	stage := st.Stage()
	blk := &Block{
		Header: &Header{
			Number:       0,
			ParentID:     gen.ID(),
			Timestamp:    gen.Timestamp,
			CommandsRoot: rootOf([]*Command{}),
			ReceiptsRoot: rootOf([]*Receipt{}),
			StateChanges: uint64(stage.Len()),
		},
	}
	if err := e.commit(stage, blk, nil); err != nil {
		return nil, err
	}
	logger.Info("built genesis", "name", gen.Name, "id", blk.Header.ID())
	return blk.Header, nil
}

func (e *Executor) setBest(blk *Block) {
	e.mu.Lock()
	e.best = blk
	e.mu.Unlock()
	metricBestBlock().Set(int64(blk.Header.Number))
}

// Best returns the header of the newest sealed block.
func (e *Executor) Best() *Header {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.best == nil {
		return nil
	}
	return e.best.Header
}

// GetBlock returns a sealed block by number.
func (e *Executor) GetBlock(number uint64) (*Block, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return loadBlock(e.store, number)
}

// GetReceipts returns the receipts of a sealed block.
func (e *Executor) GetReceipts(number uint64) ([]*Receipt, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return loadReceipts(e.store, number)
}

// IsNotFound tells whether err reports a missing block.
func (e *Executor) IsNotFound(err error) bool {
	return e.store.IsNotFound(err)
}

// NewWaiter returns a waiter fired when the next block is sealed.
func (e *Executor) NewWaiter() co.Waiter {
	return e.newBlock.NewWaiter()
}

// QueueLen returns the number of submitted commands not yet picked for a block.
func (e *Executor) QueueLen() int {
	return len(e.queue)
}

// View runs fn against the committed state. The clock is the later of the wall clock
// and the best block time, so pending rewards include time since the last block.
// Changes fn makes are discarded.
func (e *Executor) View(fn func(engine *staker.Staker, roles *acl.ACL) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.best == nil {
		return errors.New("executor not initialized")
	}
	now := max(e.opts.Clock(), e.best.Header.Timestamp)
	st := e.stater.NewState()
	return fn(staker.New(st, now, nil), acl.New(solidity.NewContext(plume.Address{}, st, now, nil)))
}

// Submit queues cmd and waits for the receipt of its execution.
func (e *Executor) Submit(ctx context.Context, cmd *Command) (*Receipt, error) {
	if _, ok := handlers[cmd.Op]; !ok {
		return nil, errors.Wrap(ErrUnknownOp, cmd.Op)
	}
	req := &request{cmd: cmd, result: make(chan result, 1)}
	select {
	case e.queue <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	metricQueueLength().Set(int64(len(e.queue)))

	select {
	case res := <-req.result:
		return res.receipt, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run seals queued commands into blocks until ctx is done.
func (e *Executor) Run(ctx context.Context) error {
	var goes co.Goes
	defer goes.Wait()
	goes.GoCtx(ctx, e.clockLoop)

	ticker := time.NewTicker(e.opts.BlockInterval)
	defer ticker.Stop()

	var pending []*request
	seal := func() {
		if len(pending) == 0 {
			return
		}
		batch := pending
		pending = nil

		cmds := make([]*Command, len(batch))
		for i, req := range batch {
			cmds[i] = req.cmd
		}
		timestamp := max(e.opts.Clock(), e.Best().Timestamp+1)
		_, receipts, err := e.ExecuteBlock(timestamp, cmds)
		for i, req := range batch {
			if err != nil {
				req.result <- result{err: err}
			} else {
				req.result <- result{receipt: receipts[i]}
			}
		}
		if err != nil {
			logger.Error("failed to seal block", "err", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			for _, req := range pending {
				req.result <- result{err: ErrClosed}
			}
			return nil
		case req := <-e.queue:
			pending = append(pending, req)
			if len(pending) >= e.opts.MaxBlockCommands {
				seal()
			}
		case <-ticker.C:
			seal()
		}
	}
}

// ExecuteBlock executes cmds on top of the best block and seals the result.
// The timestamp must be later than the best block's.
func (e *Executor) ExecuteBlock(timestamp uint64, cmds []*Command) (*Block, []*Receipt, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	start := time.Now()
	parent := e.Best()
	if parent == nil {
		return nil, nil, errors.New("executor not initialized")
	}
	if timestamp <= parent.Timestamp {
		return nil, nil, fmt.Errorf("timestamp %d not after parent %d", timestamp, parent.Timestamp)
	}
	number := parent.Number + 1

	st := e.stater.NewState()
	receipts := make([]*Receipt, 0, len(cmds))
	for i, cmd := range cmds {
		receipt, err := e.execute(st, number, timestamp, uint32(i), cmd)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "command %d", i)
		}
		receipts = append(receipts, receipt)
	}

	stage := st.Stage()
	blk := &Block{
		Header: &Header{
			Number:       number,
			ParentID:     parent.ID(),
			Timestamp:    timestamp,
			CommandsRoot: rootOf(cmds),
			ReceiptsRoot: rootOf(receipts),
			StateChanges: uint64(stage.Len()),
		},
		Commands: cmds,
	}
	if err := e.commit(stage, blk, receipts); err != nil {
		return nil, nil, err
	}

	metricBlockDuration().Observe(time.Since(start).Milliseconds())
	logger.Debug("sealed block", "number", number, "commands", len(cmds), "changes", stage.Len(), "elapsed", time.Since(start))
	return blk, receipts, nil
}

func (e *Executor) commit(stage *state.Stage, blk *Block, receipts []*Receipt) error {
	e.mu.Lock()
	err := e.stater.Commit(stage, func(w kv.Putter) error {
		return saveBlock(w, blk, receipts)
	})
	if err == nil {
		e.best = blk
	}
	e.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "commit block")
	}
	metricBestBlock().Set(int64(blk.Header.Number))

	if e.events != nil {
		if err := e.events.Write(BlockEvents(blk, receipts)); err != nil {
			// state is ahead of the event db, which can be rebuilt with the verify command
			logger.Error("failed to write events", "number", blk.Header.Number, "err", err)
		}
	}
	e.newBlock.Broadcast()
	return nil
}

// BlockEvents flattens the receipt events of blk into event db rows.
func BlockEvents(blk *Block, receipts []*Receipt) []*eventdb.Event {
	var events []*eventdb.Event
	id := blk.Header.ID()
	for _, r := range receipts {
		for _, ev := range r.Events {
			events = append(events, eventdb.NewEvent(blk.Header.Number, id, blk.Header.Timestamp, r.CommandIndex, uint32(len(events)), ev))
		}
	}
	return events
}

// execute runs one command on a checkpoint of st. Failures of the command revert the
// checkpoint and are reported in the receipt; storage failures abort the block.
func (e *Executor) execute(st *state.State, number, timestamp uint64, index uint32, cmd *Command) (*Receipt, error) {
	receipt := &Receipt{
		BlockNumber:  number,
		CommandIndex: index,
		Op:           cmd.Op,
	}

	var events []*solidity.Event
	engine := staker.New(st, timestamp, func(ev *solidity.Event) {
		events = append(events, ev)
	})
	x := &env{engine: engine, roles: acl.New(solidity.NewContext(plume.Address{}, st, timestamp, nil))}

	rev := st.NewCheckpoint()
	output, err := e.run(x, cmd)

	var stateErr *state.Error
	if errors.As(err, &stateErr) {
		return nil, err
	}
	if err != nil {
		st.RevertTo(rev)
		receipt.Reverted = true
		receipt.Error = err.Error()
		metricCommands().AddWithLabel(1, map[string]string{"op": cmd.Op, "status": "reverted"})
		if !reverts.IsRevertErr(err) && !errors.Is(err, bank.ErrTransferFailed) {
			logger.Warn("command failed", "op", cmd.Op, "sender", cmd.Sender, "err", err)
		}
		return receipt, nil
	}

	if output != nil {
		if receipt.Output, err = json.Marshal(output); err != nil {
			return nil, errors.Wrap(err, "encode output")
		}
	}
	receipt.Events = events
	metricCommands().AddWithLabel(1, map[string]string{"op": cmd.Op, "status": "ok"})
	return receipt, nil
}

func (e *Executor) run(x *env, cmd *Command) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("command panicked", "op", cmd.Op, "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	h, ok := handlers[cmd.Op]
	if !ok {
		return nil, errors.Wrap(ErrUnknownOp, cmd.Op)
	}
	if h.role != nil {
		if err := x.roles.Require(*h.role, cmd.Sender); err != nil {
			return nil, err
		}
	}
	return h.run(x, cmd.Sender, cmd.Args)
}
