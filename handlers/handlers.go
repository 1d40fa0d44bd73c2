package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"storemonitor/metrics"
	"storemonitor/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Reports starts and reads report runs
type Reports interface {
	Start(ctx context.Context) (*models.Report, error)
	Get(ctx context.Context, reportID string) (*models.Report, error)
}

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handlers
type Handlers struct {
	reports Reports
	db      Pinger
}

// NewHandlers creates a new handlers instance
func NewHandlers(reports Reports, db Pinger) *Handlers {
	return &Handlers{reports: reports, db: db}
}

// TriggerReport starts a report generation and returns its id
func (h *Handlers) TriggerReport(c *gin.Context) {
	report, err := h.reports.Start(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to start report generation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to start report generation",
		})
		return
	}
	metrics.ReportsStartedTotal.Inc()

	c.JSON(http.StatusOK, models.TriggerReportResponse{ReportID: report.ID})
}

// GetReport returns the status of a report, or its CSV once complete
func (h *Handlers) GetReport(c *gin.Context) {
	reportID := strings.TrimSpace(c.Query("report_id"))
	if reportID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "report_id is required",
		})
		return
	}

	report, err := h.reports.Get(c.Request.Context(), reportID)
	if err != nil {
		log.Errorf("Failed to get report %s: %v", reportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to get report",
		})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success":   false,
			"message":   "Report not found",
			"report_id": reportID,
		})
		return
	}

	if report.Status != models.ReportComplete {
		c.JSON(http.StatusOK, models.ReportStatusResponse{ReportID: report.ID, Status: report.Status})
		return
	}

	var buf bytes.Buffer
	if err := models.WriteReportCSV(&buf, report.Data); err != nil {
		log.Errorf("Failed to render report %s: %v", reportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to render report",
		})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=report.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// HealthCheck reports whether the service and its database are up
func (h *Handlers) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		log.Warnf("Health check failed: %v", err)
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, models.HealthResponse{
		Status:    status,
		Service:   "store-monitor",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func Help(c *gin.Context) {
	c.String(http.StatusOK, `
	Store Monitor:
	POST /trigger_report          start a report, returns {"report_id": ...}
	GET  /get_report?report_id=   report status, or the CSV once complete
	`)
}
