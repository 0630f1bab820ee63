// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package executor

import (
	"context"
	"time"

	"github.com/beevik/ntp"
)

const clockCheckInterval = 10 * time.Minute

// checkClockOffset warns when the local clock drifts from the NTP server by more than
// half a block interval, since block timestamps come from the local clock.
func (e *Executor) checkClockOffset() {
	resp, err := ntp.Query(e.opts.NTPServer)
	if err != nil {
		logger.Debug("failed to access NTP", "server", e.opts.NTPServer, "err", err)
		return
	}
	metricClockOffset().Set(resp.ClockOffset.Milliseconds())
	if resp.ClockOffset.Abs() > e.opts.BlockInterval/2 {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}

func (e *Executor) clockLoop(ctx context.Context) {
	if e.opts.NTPServer == "" {
		return
	}
	ticker := time.NewTicker(clockCheckInterval)
	defer ticker.Stop()

	e.checkClockOffset()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.checkClockOffset()
		}
	}
}
