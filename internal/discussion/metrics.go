package discussion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/VitaminP8/discuss/internal/model"
)

var (
	// mutationsTotal считает изменения комментариев.
	// Labels: op (submit, edit, delete), outcome (ok или вид ошибки)
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discuss",
		Subsystem: "comments",
		Name:      "mutations_total",
		Help:      "Comment mutations by operation and outcome",
	}, []string{"op", "outcome"})

	// reactionTogglesTotal. Labels: outcome (ok, discarded или вид ошибки)
	reactionTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discuss",
		Subsystem: "reactions",
		Name:      "toggles_total",
		Help:      "Reaction toggles by outcome",
	}, []string{"outcome"})

	// treePromotionsTotal - записи, поднятые в корень. Labels: reason (orphan, cycle)
	treePromotionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discuss",
		Subsystem: "tree",
		Name:      "promotions_total",
		Help:      "Comments promoted to root while building the reply tree",
	}, []string{"reason"})

	// staleResultsTotal - результаты, пришедшие после закрытия Thread
	staleResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discuss",
		Subsystem: "thread",
		Name:      "stale_results_total",
		Help:      "Results discarded because the owning thread was torn down",
	}, []string{"kind"})
)

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return model.KindOf(err).String()
}
