// Package metrics documents the Prometheus metrics exported by the client.
// The metrics themselves are defined in pkg/rest via promauto to keep the
// transport self-contained.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by the client. All
// metrics register automatically via promauto.
var Registry = prometheus.DefaultRegisterer

// Exported metrics (pkg/rest):
//
//   - ww_requests_total{path, status} (Counter): requests by path and HTTP
//     status; network failures count under status="network_error"
//   - ww_request_duration_seconds{path} (Histogram): request duration
//   - ww_errors_total{kind} (Counter): failures by kind
//     (caller, transport, status)
//   - ww_throttle_wait_seconds (Histogram): time spent waiting on the
//     outgoing request rate limiter
//
// Example queries:
//
//   # Request error rate
//   rate(ww_errors_total[5m])
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(ww_request_duration_seconds_bucket[5m]))
//
//   # Share of wall-clock time lost to throttling
//   rate(ww_throttle_wait_seconds_sum[5m])
