// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Ledger metrics
	IncTransactionCreated()
	IncTransactionUpdated()
	IncTransactionDeleted()
	IncBudgetCreated()
	IncBudgetUpdated()
	IncBudgetDeleted()

	// Report metrics
	IncReportGenerated(source string) // source: "ledger" or "adhoc"
	ObserveReportDuration(duration time.Duration)

	// Auth metrics
	IncSignup()
	IncLogin(status string) // status: "success" or "failed"

	// Event pipeline metrics
	IncEventPublished(status string) // status: "success" or "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
