// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/plumestake/stakerd/log"
)

// maxLoggedBody caps the request body kept in a log record.
const maxLoggedBody = 4096

// RequestLoggerHandler logs every request with its body, response status and latency.
// The body is restored so the wrapped handler can still read it.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			var err error
			if body, err = io.ReadAll(r.Body); err != nil {
				logger.Warn("unexpected body read error", "err", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}

		start := time.Now()
		rw := newMetricsResponseWriter(w)
		handler.ServeHTTP(rw, r)

		logger.Info("API Request",
			"timestamp", start.Unix(),
			"URI", r.URL.String(),
			"Method", r.Method,
			"Body", string(body),
			"Status", rw.statusCode,
			"elapsed", time.Since(start),
		)
	})
}
