// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"strings"

	"github.com/plumestake/stakerd/metrics"
)

var (
	metricQueryParameters = metrics.LazyLoadCounterVec("eventdb_query_parameters", []string{"parameters"})
	metricQueryOrder      = metrics.LazyLoadCounterVec("eventdb_query_order", []string{"order"})
	metricQueryDuration   = metrics.LazyLoadHistogram("eventdb_query_duration_ms", metrics.BucketExecution)
	metricWrittenEvents   = metrics.LazyLoadCounter("eventdb_written_events")
)

func metricsHandleFilter(filter *EventFilter) {
	order := "asc"
	if filter.Order == DESC {
		order = "desc"
	}
	metricQueryOrder().AddWithLabel(1, map[string]string{"order": order})

	for _, c := range filter.CriteriaSet {
		var used []string
		if c.Name != nil {
			used = append(used, "name")
		}
		if c.Validator != nil {
			used = append(used, "validator")
		}
		if c.Account != nil {
			used = append(used, "account")
		}
		if c.Token != nil {
			used = append(used, "token")
		}
		metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(used, ",")})
	}
}
