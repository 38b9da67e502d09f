// Package metrics defines and registers all custom Prometheus metrics for the
// StackIt Q&A API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init via promauto. HTTP request metrics come from the echoprometheus
// middleware installed by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stackit"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts POST /token outcomes.
// Label:
//   - result: "success", "invalid_credentials", "rate_limited" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts requests refused by the session resolver.
// Label:
//   - reason: "missing", "malformed", "tampered", "expired" or "unknown_identity"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_token_rejections_total",
		Help:      "Total number of bearer tokens rejected, by reason.",
	},
	[]string{"reason"},
)

// ForbiddenTotal counts authenticated requests denied by the role gate.
var ForbiddenTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_forbidden_total",
		Help:      "Total number of requests denied for insufficient role.",
	},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// UsersRegisteredTotal counts identities created through POST /users.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered identities.",
	},
)

// QuestionsPostedTotal counts questions created.
var QuestionsPostedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_posted_total",
		Help:      "Total number of questions posted.",
	},
)

// AnswersPostedTotal counts answers created.
var AnswersPostedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_posted_total",
		Help:      "Total number of answers posted.",
	},
)

// VotesCastTotal counts votes.
// Label:
//   - direction: "up" or "down"
var VotesCastTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of votes cast, by direction.",
	},
	[]string{"direction"},
)

// ── Activity queue ────────────────────────────────────────────────────────────

// ActivitySource is the view of the activity dispatcher the gauges read from.
type ActivitySource interface {
	Depth() int
	Dropped() uint64
}

// RegisterActivityQueue exposes queue depth and drop count for src.
// Call once at startup.
func RegisterActivityQueue(reg prometheus.Registerer, src ActivitySource) error {
	depth := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "activity_queue_depth",
			Help:      "Current number of activity events waiting to be persisted.",
		},
		func() float64 { return float64(src.Depth()) },
	)
	dropped := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_dropped_total",
			Help:      "Total number of activity events dropped because the queue was full.",
		},
		func() float64 { return float64(src.Dropped()) },
	)
	if err := reg.Register(depth); err != nil {
		return err
	}
	return reg.Register(dropped)
}
