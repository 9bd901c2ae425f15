package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncTransactionCreated is a no-op.
func (n *NoopRecorder) IncTransactionCreated() {}

// IncTransactionUpdated is a no-op.
func (n *NoopRecorder) IncTransactionUpdated() {}

// IncTransactionDeleted is a no-op.
func (n *NoopRecorder) IncTransactionDeleted() {}

// IncBudgetCreated is a no-op.
func (n *NoopRecorder) IncBudgetCreated() {}

// IncBudgetUpdated is a no-op.
func (n *NoopRecorder) IncBudgetUpdated() {}

// IncBudgetDeleted is a no-op.
func (n *NoopRecorder) IncBudgetDeleted() {}

// IncReportGenerated is a no-op.
func (n *NoopRecorder) IncReportGenerated(source string) {}

// ObserveReportDuration is a no-op.
func (n *NoopRecorder) ObserveReportDuration(duration time.Duration) {}

// IncSignup is a no-op.
func (n *NoopRecorder) IncSignup() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncEventPublished is a no-op.
func (n *NoopRecorder) IncEventPublished(status string) {}
