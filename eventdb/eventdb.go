// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb stores the history of engine events in sqlite.
package eventdb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/cache"
	"github.com/plumestake/stakerd/log"
	"github.com/plumestake/stakerd/plume"
)

var logger = log.WithContext("pkg", "eventdb")

const stmtCacheSize = 64

type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmts         *cache.LRU[string, *sql.Stmt]
}

// New creates or opens the event db at the given path.
func New(path string) (*EventDB, error) {
	return open(path, path+"?_journal=wal")
}

// NewMem creates an event db in ram.
func NewMem() (*EventDB, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (edb *EventDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if edb == nil {
			db.Close()
		}
	}()
	// an in-memory db lives in its only connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	stmts, err := cache.NewLRUWithEvict(stmtCacheSize, func(query string, stmt *sql.Stmt) {
		if err := stmt.Close(); err != nil {
			logger.Debug("failed to close statement", "query", query, "err", err)
		}
	})
	if err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmts:         stmts,
	}, nil
}

// Close closes the event db.
func (db *EventDB) Close() error {
	db.stmts.Purge()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

func (db *EventDB) prepare(query string) (*sql.Stmt, error) {
	return db.stmts.GetOrLoad(query, func(query string) (*sql.Stmt, error) {
		return db.db.Prepare(query)
	})
}

// Write appends the events of sealed blocks in one transaction.
func (db *EventDB) Write(events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	insert, err := db.prepare("INSERT OR REPLACE INTO event(seq, blockNumber, blockID, blockTime, commandIndex, eventIndex, name, validator, account, token, amount) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	stmt := tx.Stmt(insert)
	for _, ev := range events {
		amount := "0"
		if ev.Amount != nil {
			amount = ev.Amount.String()
		}
		if _, err := stmt.Exec(
			newSequence(ev.BlockNumber, ev.Index),
			ev.BlockNumber,
			ev.BlockID.Bytes(),
			ev.BlockTime,
			ev.CommandIndex,
			ev.Index,
			ev.Name,
			uint16(ev.Validator),
			ev.Account.Bytes(),
			ev.Token.Bytes(),
			amount,
		); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "insert event")
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricWrittenEvents().Add(int64(len(events)))
	return nil
}

// Truncate deletes the events of blocks numbered from and above.
func (db *EventDB) Truncate(from uint64) error {
	stmt, err := db.prepare("DELETE FROM event WHERE seq >= ?")
	if err != nil {
		return err
	}
	_, err = stmt.Exec(newSequence(from, 0))
	return err
}

// NewestBlockNumber returns the number of the newest block having events.
func (db *EventDB) NewestBlockNumber() (uint64, bool, error) {
	stmt, err := db.prepare("SELECT seq FROM event ORDER BY seq DESC LIMIT 1")
	if err != nil {
		return 0, false, err
	}
	var seq sequence
	if err := stmt.QueryRow().Scan(&seq); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return seq.BlockNumber(), true, nil
}

// FilterEvents queries events, nil filter returns all events.
func (db *EventDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		filter = &EventFilter{}
	}
	metricsHandleFilter(filter)
	defer func(start time.Time) {
		metricQueryDuration().Observe(time.Since(start).Milliseconds())
	}(time.Now())

	var args []any
	stmt := "SELECT seq, blockID, blockTime, commandIndex, name, validator, account, token, amount FROM event WHERE 1"

	if filter.Range != nil {
		if filter.Range.Unit == Time {
			args = append(args, filter.Range.From)
			stmt += " AND blockTime >= ?"
			if filter.Range.To >= filter.Range.From {
				args = append(args, filter.Range.To)
				stmt += " AND blockTime <= ?"
			}
		} else {
			args = append(args, newSequence(filter.Range.From, 0))
			stmt += " AND seq >= ?"
			if filter.Range.To >= filter.Range.From {
				args = append(args, newSequence(filter.Range.To, maxIndex))
				stmt += " AND seq <= ?"
			}
		}
	}

	for i, c := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if c.Name != nil {
			args = append(args, *c.Name)
			stmt += " AND name = ?"
		}
		if c.Validator != nil {
			args = append(args, uint16(*c.Validator))
			stmt += " AND validator = ?"
		}
		if c.Account != nil {
			args = append(args, c.Account.Bytes())
			stmt += " AND account = ?"
		}
		if c.Token != nil {
			args = append(args, c.Token.Bytes())
			stmt += " AND token = ?"
		}
		stmt += " )"
		if i == len(filter.CriteriaSet)-1 {
			stmt += " )"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *EventDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq          sequence
			blockID      []byte
			blockTime    uint64
			commandIndex uint32
			name         string
			validator    uint16
			account      []byte
			token        []byte
			amount       string
		)
		if err := rows.Scan(&seq, &blockID, &blockTime, &commandIndex, &name, &validator, &account, &token, &amount); err != nil {
			return nil, err
		}
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return nil, fmt.Errorf("corrupted amount %q at %v", amount, seq)
		}
		events = append(events, &Event{
			BlockNumber:  seq.BlockNumber(),
			BlockID:      plume.BytesToBytes32(blockID),
			BlockTime:    blockTime,
			CommandIndex: commandIndex,
			Index:        seq.Index(),
			Name:         name,
			Validator:    plume.ValidatorID(validator),
			Account:      plume.BytesToAddress(account),
			Token:        plume.BytesToAddress(token),
			Amount:       value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Stats returns the hit/miss counters of the statement cache.
func (db *EventDB) Stats() *cache.Stats {
	return db.stmts.Stats()
}
