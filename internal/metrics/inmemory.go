package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TransactionsCreated   uint64
	TransactionsUpdated   uint64
	TransactionsDeleted   uint64
	BudgetsCreated        uint64
	BudgetsUpdated        uint64
	BudgetsDeleted        uint64
	ReportsLedger         uint64
	ReportsAdhoc          uint64
	ReportDurationCount   uint64
	ReportDurationTotalNs int64
	Signups               uint64
	LoginsSucceeded       uint64
	LoginsFailed          uint64
	EventsPublished       uint64
	EventsDropped         uint64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and tests.
type InMemoryRecorder struct {
	transactionsCreated   uint64
	transactionsUpdated   uint64
	transactionsDeleted   uint64
	budgetsCreated        uint64
	budgetsUpdated        uint64
	budgetsDeleted        uint64
	reportsLedger         uint64
	reportsAdhoc          uint64
	reportDurationCount   uint64
	reportDurationTotalNs int64
	signups               uint64
	loginsSucceeded       uint64
	loginsFailed          uint64
	eventsPublished       uint64
	eventsDropped         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		TransactionsCreated:   atomic.LoadUint64(&m.transactionsCreated),
		TransactionsUpdated:   atomic.LoadUint64(&m.transactionsUpdated),
		TransactionsDeleted:   atomic.LoadUint64(&m.transactionsDeleted),
		BudgetsCreated:        atomic.LoadUint64(&m.budgetsCreated),
		BudgetsUpdated:        atomic.LoadUint64(&m.budgetsUpdated),
		BudgetsDeleted:        atomic.LoadUint64(&m.budgetsDeleted),
		ReportsLedger:         atomic.LoadUint64(&m.reportsLedger),
		ReportsAdhoc:          atomic.LoadUint64(&m.reportsAdhoc),
		ReportDurationCount:   atomic.LoadUint64(&m.reportDurationCount),
		ReportDurationTotalNs: atomic.LoadInt64(&m.reportDurationTotalNs),
		Signups:               atomic.LoadUint64(&m.signups),
		LoginsSucceeded:       atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:          atomic.LoadUint64(&m.loginsFailed),
		EventsPublished:       atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:         atomic.LoadUint64(&m.eventsDropped),
	}
}

// IncTransactionCreated increments transaction created counter.
func (m *InMemoryRecorder) IncTransactionCreated() {
	atomic.AddUint64(&m.transactionsCreated, 1)
}

// IncTransactionUpdated increments transaction updated counter.
func (m *InMemoryRecorder) IncTransactionUpdated() {
	atomic.AddUint64(&m.transactionsUpdated, 1)
}

// IncTransactionDeleted increments transaction deleted counter.
func (m *InMemoryRecorder) IncTransactionDeleted() {
	atomic.AddUint64(&m.transactionsDeleted, 1)
}

// IncBudgetCreated increments budget created counter.
func (m *InMemoryRecorder) IncBudgetCreated() {
	atomic.AddUint64(&m.budgetsCreated, 1)
}

// IncBudgetUpdated increments budget updated counter.
func (m *InMemoryRecorder) IncBudgetUpdated() {
	atomic.AddUint64(&m.budgetsUpdated, 1)
}

// IncBudgetDeleted increments budget deleted counter.
func (m *InMemoryRecorder) IncBudgetDeleted() {
	atomic.AddUint64(&m.budgetsDeleted, 1)
}

// IncReportGenerated counts a report by source.
func (m *InMemoryRecorder) IncReportGenerated(source string) {
	if source == "adhoc" {
		atomic.AddUint64(&m.reportsAdhoc, 1)
		return
	}
	atomic.AddUint64(&m.reportsLedger, 1)
}

// ObserveReportDuration records report computation time.
func (m *InMemoryRecorder) ObserveReportDuration(duration time.Duration) {
	atomic.AddUint64(&m.reportDurationCount, 1)
	atomic.AddInt64(&m.reportDurationTotalNs, duration.Nanoseconds())
}

// IncSignup increments the signup counter.
func (m *InMemoryRecorder) IncSignup() {
	atomic.AddUint64(&m.signups, 1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == "success" {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncEventPublished counts a ledger event by delivery outcome.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.eventsPublished, 1)
		return
	}
	atomic.AddUint64(&m.eventsDropped, 1)
}
