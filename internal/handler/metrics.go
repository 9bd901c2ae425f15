package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/paisa/paisa/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus text exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	counter(w, "paisa_transactions_total", "Transaction writes by operation.",
		labeled{`op="created"`, snap.TransactionsCreated},
		labeled{`op="updated"`, snap.TransactionsUpdated},
		labeled{`op="deleted"`, snap.TransactionsDeleted},
	)
	counter(w, "paisa_budgets_total", "Budget writes by operation.",
		labeled{`op="created"`, snap.BudgetsCreated},
		labeled{`op="updated"`, snap.BudgetsUpdated},
		labeled{`op="deleted"`, snap.BudgetsDeleted},
	)
	counter(w, "paisa_reports_generated_total", "Insight reports by input source.",
		labeled{`source="ledger"`, snap.ReportsLedger},
		labeled{`source="adhoc"`, snap.ReportsAdhoc},
	)
	counter(w, "paisa_signups_total", "Accounts registered.",
		labeled{"", snap.Signups},
	)
	counter(w, "paisa_logins_total", "Login attempts by outcome.",
		labeled{`status="success"`, snap.LoginsSucceeded},
		labeled{`status="failed"`, snap.LoginsFailed},
	)
	counter(w, "paisa_events_published_total", "Ledger events by delivery outcome.",
		labeled{`status="success"`, snap.EventsPublished},
		labeled{`status="dropped"`, snap.EventsDropped},
	)

	_, _ = fmt.Fprintf(w, "# HELP paisa_report_duration_seconds Time spent building insight reports.\n")
	_, _ = fmt.Fprintf(w, "# TYPE paisa_report_duration_seconds summary\n")
	_, _ = fmt.Fprintf(w, "paisa_report_duration_seconds_count %d\n", snap.ReportDurationCount)
	_, _ = fmt.Fprintf(w, "paisa_report_duration_seconds_sum %.6f\n", float64(snap.ReportDurationTotalNs)/1e9)
}

type labeled struct {
	labels string
	value  uint64
}

func counter(w io.Writer, name, help string, series ...labeled) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", name, help, name)
	for _, s := range series {
		if s.labels == "" {
			_, _ = fmt.Fprintf(w, "%s %d\n", name, s.value)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s{%s} %d\n", name, s.labels, s.value)
	}
}
