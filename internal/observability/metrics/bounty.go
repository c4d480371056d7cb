// Package metrics provides Prometheus instrumentation for connectx.
package metrics

// BountyOperation records one bounty lifecycle operation and its outcome.
func BountyOperation(operation, status string) {
	if !enabled {
		return
	}
	bountyOperationsTotal.WithLabelValues(operation, status).Inc()
}

// Payout records value leaving escrow, split by recipient kind
// ("developer", "fee", "refund").
func Payout(kind string, micros int64) {
	if !enabled {
		return
	}
	payoutMicrosTotal.WithLabelValues(kind).Add(float64(micros))
}

// CollaboratorCall records one outbound collaborator service call.
func CollaboratorCall(service, status string) {
	if !enabled {
		return
	}
	collaboratorCallsTotal.WithLabelValues(service, status).Inc()
}
