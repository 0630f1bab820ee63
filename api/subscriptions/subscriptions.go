// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/api/blocks"
	"github.com/plumestake/stakerd/api/utils"
	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/log"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 7) / 10
	writeWait  = 10 * time.Second
)

// Subscriptions pushes sealed blocks and their events over websocket.
type Subscriptions struct {
	exec           *executor.Executor
	backtraceLimit uint64
	upgrader       *websocket.Upgrader
	done           chan struct{}
	wg             sync.WaitGroup
}

func New(exec *executor.Executor, allowedOrigins []string, backtraceLimit uint64) *Subscriptions {
	return &Subscriptions{
		exec:           exec,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		done: make(chan struct{}),
	}
}

// parsePos returns the number of the first block to push, bounded by the backtrace limit.
func (s *Subscriptions) parsePos(req *http.Request) (uint64, error) {
	best := s.exec.Best().Number
	posStr := req.URL.Query().Get("pos")
	if posStr == "" {
		return best, nil
	}
	pos, ok, err := utils.ParseBlockNumber(posStr)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if !ok {
		return best, nil
	}
	if pos > best+1 {
		return 0, utils.BadRequest(errors.New("pos: beyond the next block"))
	}
	if best > pos && best-pos > s.backtraceLimit {
		return 0, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	return pos, nil
}

func parseEventFilter(req *http.Request) (*EventFilter, error) {
	query := req.URL.Query()
	filter := &EventFilter{Name: query.Get("name")}
	if v := query.Get("validator"); v != "" {
		id, err := utils.ParseValidatorID(v)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "validator"))
		}
		filter.Validator = &id
	}
	if v := query.Get("account"); v != "" {
		addr, err := utils.ParseAddress(v, false)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "account"))
		}
		filter.Account = &addr
	}
	if v := query.Get("token"); v != "" {
		addr, err := utils.ParseAddress(v, false)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "token"))
		}
		filter.Token = &addr
	}
	return filter, nil
}

// messagesFunc converts one sealed block to the messages to push.
type messagesFunc func(blk *executor.Block, receipts []*executor.Receipt) []any

func (s *Subscriptions) handleSubscribeBlocks(w http.ResponseWriter, req *http.Request) error {
	pos, err := s.parsePos(req)
	if err != nil {
		return err
	}
	return s.serve(w, req, pos, func(blk *executor.Block, receipts []*executor.Receipt) []any {
		return []any{newBlockMessage(blk, receipts)}
	})
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	pos, err := s.parsePos(req)
	if err != nil {
		return err
	}
	filter, err := parseEventFilter(req)
	if err != nil {
		return err
	}
	return s.serve(w, req, pos, func(blk *executor.Block, receipts []*executor.Receipt) []any {
		var msgs []any
		id := blk.Header.ID()
		for _, r := range receipts {
			for _, ev := range r.Events {
				if filter.Match(ev) {
					msgs = append(msgs, &EventMessage{blocks.ConvertEvent(ev), blk.Header.Number, id, r.CommandIndex})
				}
			}
		}
		return msgs
	})
}

func (s *Subscriptions) serve(w http.ResponseWriter, req *http.Request, pos uint64, messages messagesFunc) error {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Debug("upgrade failed", "err", err)
		// the upgrader already replied
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.pipe(conn, pos, messages, closed); err != nil {
		logger.Debug("subscription ended", "err", err)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		return nil
	}
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, pos uint64, messages messagesFunc, closed <-chan struct{}) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		// take the waiter before reading best, so no block is missed in between
		waiter := s.exec.NewWaiter()
		for best := s.exec.Best().Number; pos <= best; pos++ {
			blk, err := s.exec.GetBlock(pos)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("get block %d", pos))
			}
			receipts, err := s.exec.GetReceipts(pos)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("get receipts %d", pos))
			}
			for _, msg := range messages(blk, receipts) {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					return err
				}
			}
		}

		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case <-waiter.C():
		}
	}
}

// Close ends all subscriptions, waiting for their connections to close.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/block").
		Methods(http.MethodGet).
		Name("WS /subscriptions/block").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeBlocks))
	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
