// Package metrics defines and registers the custom Prometheus metrics of the
// user service. HTTP request metrics come from echoprometheus; the counters
// here cover authentication and user lifecycle events.
//
// All metrics register with the default registry at package init through
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "usersvc"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthenticationsTotal counts per-request token checks made by the authenticator.
// Label:
//   - result: "anonymous", "authenticated" or "rejected"
var AuthenticationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_authentications_total",
		Help:      "Total number of request authentications, by result.",
	},
	[]string{"result"},
)

// PrincipalCacheTotal counts principal cache lookups.
// Label:
//   - result: "hit" or "miss"
var PrincipalCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "principal_cache_total",
		Help:      "Total number of principal cache lookups, by result.",
	},
	[]string{"result"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UserOperationsTotal counts completed user operations.
// Labels:
//   - operation: "create", "update", "change_password" or "delete"
//   - result: "ok" or "error"
var UserOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_operations_total",
		Help:      "Total number of user write operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// Result maps an error to the "result" label value used by UserOperationsTotal.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// LoginResult maps a login error to the LoginAttemptsTotal label value.
func LoginResult(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
