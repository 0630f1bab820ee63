// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package executor

import "github.com/plumestake/stakerd/metrics"

var (
	metricBestBlock     = metrics.LazyLoadGauge("executor_best_block")
	metricBlockDuration = metrics.LazyLoadHistogram("executor_block_duration_ms", metrics.BucketExecution)
	metricCommands      = metrics.LazyLoadCounterVec("executor_commands_count", []string{"op", "status"})
	metricQueueLength   = metrics.LazyLoadGauge("executor_queue_length")
	metricClockOffset   = metrics.LazyLoadGauge("executor_clock_offset_ms")
)
