// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/plumestake/stakerd/eventdb"
	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/genesis"
	"github.com/plumestake/stakerd/log"
	"github.com/plumestake/stakerd/lvldb"
)

// eventStep is the number of blocks whose events are fetched in one query.
const eventStep = uint64(100)

func verifyAction(ctx *cli.Context) error {
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	initLogger(ctx)
	gen, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	instanceDir, err := makeInstanceDir(ctx, gen)
	if err != nil {
		return err
	}

	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer mainDB.Close()

	eventDB, err := openEventDB(instanceDir)
	if err != nil {
		return err
	}
	defer eventDB.Close()

	exec := executor.New(mainDB, nil, executor.Options{})
	if _, err := exec.Initialize(gen); err != nil {
		return err
	}
	return verifyChain(exitCtx, gen, exec, eventDB, ctx.Bool(rebuildEventsFlag.Name))
}

// verifyChain replays every sealed block of exec on a fresh in-memory store and checks
// the replayed headers and receipts against the sealed ones, then the events in eventDB
// against the receipts. With rebuild, the event database is rewritten from the first
// block whose events differ instead of failing.
func verifyChain(ctx context.Context, gen *genesis.Genesis, exec *executor.Executor, eventDB *eventdb.EventDB, rebuild bool) error {
	memDB, err := lvldb.NewMem()
	if err != nil {
		return err
	}
	defer memDB.Close()

	replay := executor.New(memDB, nil, executor.Options{})
	genesisHeader, err := replay.Initialize(gen)
	if err != nil {
		return err
	}

	first, err := exec.GetBlock(0)
	if err != nil {
		return err
	}
	if first.Header.ID() != genesisHeader.ID() {
		return errors.New("genesis block mismatch")
	}

	best := exec.Best().Number
	fmt.Println(">> Verifying chain <<")
	bar := pb.New64(int64(best)).
		Set64(0).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	var (
		stored     map[uint64][]*eventdb.Event
		fetchedTo  uint64
		rebuilding bool
	)
	for n := uint64(1); n <= best; n++ {
		blk, err := exec.GetBlock(n)
		if err != nil {
			return err
		}
		receipts, err := exec.GetReceipts(n)
		if err != nil {
			return err
		}

		replayed, replayedReceipts, err := replay.ExecuteBlock(blk.Header.Timestamp, blk.Commands)
		if err != nil {
			return errors.WithMessagef(err, "replay block %d", n)
		}
		if replayed.Header.ID() != blk.Header.ID() {
			fmt.Printf("\nDiff block %d\n", n)
			fmt.Println(jsonDiff(blk.Header, replayed.Header))
			fmt.Println(jsonDiff(receipts, replayedReceipts))
			return fmt.Errorf("block %d does not replay", n)
		}

		expected := executor.BlockEvents(blk, receipts)
		if rebuilding {
			if err := eventDB.Write(expected); err != nil {
				return err
			}
		} else {
			if n > fetchedTo {
				fetchedTo = n + eventStep - 1
				if stored, err = fetchEvents(ctx, eventDB, n, fetchedTo); err != nil {
					return err
				}
			}
			if diff := jsonDiff(expected, stored[n]); diff != "" {
				if !rebuild {
					fmt.Printf("\nDiff events of block %d\n", n)
					fmt.Println(diff)
					return errors.New("incorrect events")
				}
				log.Warn("rebuilding event database", "from", n)
				if err := eventDB.Truncate(n); err != nil {
					return err
				}
				if err := eventDB.Write(expected); err != nil {
					return err
				}
				rebuilding = true
			}
		}
		bar.Add64(1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	bar.Finish()
	return nil
}

func fetchEvents(ctx context.Context, eventDB *eventdb.EventDB, from, to uint64) (map[uint64][]*eventdb.Event, error) {
	events, err := eventDB.FilterEvents(ctx, &eventdb.EventFilter{
		Range: &eventdb.Range{Unit: eventdb.Block, From: from, To: to},
	})
	if err != nil {
		return nil, err
	}
	byBlock := make(map[uint64][]*eventdb.Event)
	for _, ev := range events {
		byBlock[ev.BlockNumber] = append(byBlock[ev.BlockNumber], ev)
	}
	return byBlock, nil
}

// jsonDiff returns the unified diff of the indented JSON forms, empty if they are equal.
func jsonDiff(expected, actual any) string {
	e, _ := json.MarshalIndent(expected, "", "  ")
	a, _ := json.MarshalIndent(actual, "", "  ")
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(e)),
		B:        difflib.SplitLines(string(a)),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  3,
	})
	return diff
}
