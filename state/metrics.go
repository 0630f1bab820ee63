// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/plumestake/stakerd/metrics"
)

var metricCacheHitMiss = metrics.LazyLoadCounterVec("state_cache_hit_miss_count", []string{"type"})

type cacheStatsT struct{}

func (cacheStatsT) Hit()  { metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": "hit"}) }
func (cacheStatsT) Miss() { metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": "miss"}) }

var cacheStats cacheStatsT
