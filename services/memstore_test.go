package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"storemonitor/models"
)

// memStore is an in-memory implementation of every store interface
type memStore struct {
	mu           sync.Mutex
	observations map[string][]models.Observation
	rules        map[string][]models.BusinessHourRule
	timezones    map[string]string
	reports      map[string]*models.Report

	updateErr error
	updates   int
}

func newMemStore() *memStore {
	return &memStore{
		observations: map[string][]models.Observation{},
		rules:        map[string][]models.BusinessHourRule{},
		timezones:    map[string]string{},
		reports:      map[string]*models.Report{},
	}
}

func (m *memStore) ListStoreIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range m.observations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memStore) ListObservations(ctx context.Context, storeID string) ([]models.Observation, error) {
	return m.observations[storeID], nil
}

func (m *memStore) ListBusinessHours(ctx context.Context, storeID string) ([]models.BusinessHourRule, error) {
	return m.rules[storeID], nil
}

func (m *memStore) GetTimezone(ctx context.Context, storeID string) (*models.StoreTimezone, error) {
	tz, ok := m.timezones[storeID]
	if !ok {
		return nil, nil
	}
	return &models.StoreTimezone{StoreID: storeID, TimezoneStr: tz}, nil
}

func (m *memStore) CreateReport(ctx context.Context, id string, createdAt time.Time) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &models.Report{ID: id, Status: models.ReportRunning, CreatedAt: createdAt}
	m.reports[id] = r
	copied := *r
	return &copied, nil
}

func (m *memStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (m *memStore) UpdateReport(ctx context.Context, id string, status models.ReportStatus, rows []models.ReportRow, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updateErr != nil {
		return m.updateErr
	}
	r, ok := m.reports[id]
	if !ok || r.Status != models.ReportRunning {
		return errors.New("report is not running")
	}
	r.Status = status
	r.CompletedAt = &completedAt
	if status == models.ReportComplete {
		r.Data = rows
	}
	return nil
}
