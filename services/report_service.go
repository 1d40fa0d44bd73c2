package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storemonitor/models"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// ReportStore persists report runs
type ReportStore interface {
	CreateReport(ctx context.Context, id string, createdAt time.Time) (*models.Report, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
	UpdateReport(ctx context.Context, id string, status models.ReportStatus, rows []models.ReportRow, completedAt time.Time) error
}

// Outcome is the result of one run: rows on success, the cause on failure
type Outcome struct {
	ReportID string
	Status   models.ReportStatus
	Rows     []models.ReportRow
	Err      error
	Duration time.Duration
}

// Observer is told about every finished run, including the cause of failures
// that the stored report does not expose.
type Observer interface {
	ReportFinished(outcome Outcome)
}

// LogObserver logs finished runs
type LogObserver struct{}

func (LogObserver) ReportFinished(o Outcome) {
	ctx := log.WithFields(log.Fields{
		"report_id": o.ReportID,
		"status":    o.Status,
		"stores":    len(o.Rows),
		"duration":  o.Duration.String(),
	})
	if o.Err != nil {
		ctx.WithError(o.Err).Error("Report generation failed")
		return
	}
	ctx.Info("Report generation finished")
}

// ReportService drives the Running -> Complete|Failed lifecycle of reports
type ReportService struct {
	reports   ReportStore
	generator Generator
	observers []Observer

	clock func() time.Time
	newID func() string
	wg    sync.WaitGroup
}

func NewReportService(reports ReportStore, generator Generator, observers ...Observer) *ReportService {
	return &ReportService{
		reports:   reports,
		generator: generator,
		observers: observers,
		clock:     time.Now,
		newID:     uuid.NewString,
	}
}

// Start stores a Running report and generates it in the background. The
// report is committed before Start returns, so polling it never misses.
func (s *ReportService) Start(ctx context.Context) (*models.Report, error) {
	now := s.clock().UTC()
	report, err := s.reports.CreateReport(ctx, s.newID(), now)
	if err != nil {
		return nil, err
	}
	log.WithField("report_id", report.ID).Info("Report generation started")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(context.Background(), report.ID, now)
	}()
	return report, nil
}

// Run generates a Running report at the reference instant now and stores
// its terminal status. Failures are not returned to the caller; they are
// handed to the observers and the report is marked Failed without rows.
func (s *ReportService) Run(ctx context.Context, reportID string, now time.Time) Outcome {
	started := s.clock()
	rows, err := s.generate(ctx, now)

	outcome := Outcome{ReportID: reportID, Status: models.ReportComplete, Rows: rows, Err: err}
	if err != nil {
		outcome.Status = models.ReportFailed
		outcome.Rows = nil
	}

	if uerr := s.reports.UpdateReport(ctx, reportID, outcome.Status, outcome.Rows, s.clock().UTC()); uerr != nil {
		if outcome.Err == nil {
			outcome.Err = uerr
			// the rows could not be stored, keep the report from staying Running
			if ferr := s.reports.UpdateReport(ctx, reportID, models.ReportFailed, nil, s.clock().UTC()); ferr != nil {
				log.WithField("report_id", reportID).Errorf("Failed to mark report as failed: %v", ferr)
			}
		} else {
			outcome.Err = fmt.Errorf("%w (and failed to store the failure: %v)", outcome.Err, uerr)
		}
		outcome.Status = models.ReportFailed
		outcome.Rows = nil
	}

	outcome.Duration = s.clock().Sub(started)
	for _, o := range s.observers {
		o.ReportFinished(outcome)
	}
	return outcome
}

func (s *ReportService) generate(ctx context.Context, now time.Time) (rows []models.ReportRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("report generation panicked: %v", r)
		}
	}()
	return s.generator.Generate(ctx, now)
}

// Get returns a report, or nil when the id is unknown
func (s *ReportService) Get(ctx context.Context, reportID string) (*models.Report, error) {
	return s.reports.GetReport(ctx, reportID)
}

// Wait blocks until every run launched by Start has finished
func (s *ReportService) Wait() {
	s.wg.Wait()
}
