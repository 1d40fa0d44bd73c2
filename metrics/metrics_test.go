package metrics

import (
	"errors"
	"testing"
	"time"

	"storemonitor/models"
	"storemonitor/services"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReportObserver(t *testing.T) {
	Register()
	Register()

	complete := testutil.ToFloat64(ReportsFinishedTotal.WithLabelValues("Complete"))
	failed := testutil.ToFloat64(ReportsFinishedTotal.WithLabelValues("Failed"))

	var o ReportObserver
	o.ReportFinished(services.Outcome{
		ReportID: "r-1",
		Status:   models.ReportComplete,
		Rows:     []models.ReportRow{{StoreID: "S1"}, {StoreID: "S2"}},
		Duration: time.Second,
	})
	o.ReportFinished(services.Outcome{
		ReportID: "r-2",
		Status:   models.ReportFailed,
		Err:      errors.New("boom"),
		Duration: time.Second,
	})

	if got := testutil.ToFloat64(ReportsFinishedTotal.WithLabelValues("Complete")); got != complete+1 {
		t.Errorf("expected %v complete reports, got %v", complete+1, got)
	}
	if got := testutil.ToFloat64(ReportsFinishedTotal.WithLabelValues("Failed")); got != failed+1 {
		t.Errorf("expected %v failed reports, got %v", failed+1, got)
	}
	if got := testutil.ToFloat64(ReportStores); got != 2 {
		t.Errorf("expected 2 stores, got %v", got)
	}
}
