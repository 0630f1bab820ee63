// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/plumestake/stakerd/api/blocks"
	"github.com/plumestake/stakerd/api/commands"
	"github.com/plumestake/stakerd/api/events"
	"github.com/plumestake/stakerd/api/stakers"
	"github.com/plumestake/stakerd/api/staking"
	"github.com/plumestake/stakerd/api/subscriptions"
	"github.com/plumestake/stakerd/api/validators"
	"github.com/plumestake/stakerd/eventdb"
	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	BacktraceLimit  uint64
	LogsLimit       uint64
	PageLimit       int
	CommandTimeout  time.Duration
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router
func New(
	exec *executor.Executor,
	eventDB *eventdb.EventDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	validators.New(exec, opts.PageLimit).
		Mount(router, "/validators")
	stakers.New(exec, opts.PageLimit).
		Mount(router, "/stakers")
	staking.New(exec).
		Mount(router, "/staking")
	blocks.New(exec).
		Mount(router, "/blocks")
	commands.New(exec, opts.CommandTimeout).
		Mount(router, "/commands")
	if eventDB != nil {
		events.New(eventDB, opts.LogsLimit).
			Mount(router, "/events")
	}
	subs := subscriptions.New(exec, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
