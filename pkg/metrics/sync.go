package metrics

import "github.com/prometheus/client_golang/prometheus"

// SyncMetrics records cart synchronizer activity.
type SyncMetrics struct {
	refetches    prometheus.Counter
	refetchFails prometheus.Counter
	resubscribes prometheus.Counter
}

// NewSyncMetrics registers the synchronizer metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	refetches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_refetch_total",
		Help: "Authoritative cart refetches triggered by change events.",
	})
	refetchFails := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_refetch_failure_total",
		Help: "Cart refetches that failed.",
	})
	resubscribes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_resubscribe_total",
		Help: "Change stream resubscription attempts after an error.",
	})
	reg.MustRegister(refetches, refetchFails, resubscribes)
	return &SyncMetrics{
		refetches:    refetches,
		refetchFails: refetchFails,
		resubscribes: resubscribes,
	}
}

// IncRefetch counts one triggered refetch.
func (s *SyncMetrics) IncRefetch() {
	if s == nil || s.refetches == nil {
		return
	}
	s.refetches.Inc()
}

// IncRefetchFailure counts one failed refetch.
func (s *SyncMetrics) IncRefetchFailure() {
	if s == nil || s.refetchFails == nil {
		return
	}
	s.refetchFails.Inc()
}

// IncResubscribe counts one resubscription attempt.
func (s *SyncMetrics) IncResubscribe() {
	if s == nil || s.resubscribes == nil {
		return
	}
	s.resubscribes.Inc()
}
