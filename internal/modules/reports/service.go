package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/rs/zerolog"
)

// ObjectInfo describes an archived object
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectStore is the object storage the reports are archived to
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// EventEmitter publishes archive events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// ReportInfo is an archived report as listed from the store
type ReportInfo struct {
	Key       string    `json:"key"`
	RunID     string    `json:"run_id"`
	SizeBytes int64     `json:"size_bytes"`
	Timestamp time.Time `json:"timestamp"`
	AgeHours  int64     `json:"age_hours"`
}

// Service archives screening reports
type Service struct {
	store   ObjectStore
	prefix  string
	emitter EventEmitter
	log     zerolog.Logger
	now     func() time.Time
}

// NewService creates a report archive service. Keys are written under prefix.
func NewService(store ObjectStore, prefix string, emitter EventEmitter, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		prefix:  strings.Trim(prefix, "/"),
		emitter: emitter,
		log:     log.With().Str("service", "reports").Logger(),
		now:     time.Now,
	}
}

// KeyFor returns the object key for a run: <prefix>/<yyyy-mm-dd>/<run-id>.csv
func (s *Service) KeyFor(run *results.Run) string {
	return path.Join(s.prefix, run.CreatedAt.UTC().Format("2006-01-02"), run.ID+".csv")
}

// ArchiveRun renders the run as CSV and uploads it. Returns the stored location.
func (s *Service) ArchiveRun(ctx context.Context, run *results.Run) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, run.Results); err != nil {
		return "", fmt.Errorf("failed to render report for run %s: %w", run.ID, err)
	}
	size := int64(buf.Len())

	key := s.KeyFor(run)
	location, err := s.store.Upload(ctx, key, &buf, "text/csv")
	if err != nil {
		if s.emitter != nil {
			s.emitter.EmitTyped("reports", &events.ErrorEventData{
				Error:   err.Error(),
				Context: map[string]interface{}{"run_id": run.ID, "key": key},
			})
		}
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	s.log.Info().
		Str("run_id", run.ID).
		Str("location", location).
		Int64("bytes", size).
		Msg("Archived screening report")

	if s.emitter != nil {
		s.emitter.EmitTyped("reports", &events.ReportArchivedData{
			RunID:    run.ID,
			Location: location,
			Bytes:    size,
		})
	}
	return location, nil
}

// ListReports returns archived reports, newest first
func (s *Service) ListReports(ctx context.Context) ([]ReportInfo, error) {
	listPrefix := s.prefix
	if listPrefix != "" {
		listPrefix += "/"
	}

	objects, err := s.store.List(ctx, listPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	now := s.now()
	reports := make([]ReportInfo, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".csv") {
			continue
		}
		reports = append(reports, ReportInfo{
			Key:       obj.Key,
			RunID:     strings.TrimSuffix(path.Base(obj.Key), ".csv"),
			SizeBytes: obj.Size,
			Timestamp: obj.LastModified,
			AgeHours:  int64(now.Sub(obj.LastModified).Hours()),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})
	return reports, nil
}

// RotateOldReports deletes reports older than retentionDays, always keeping
// the newest keepMin. A retentionDays of 0 disables rotation.
func (s *Service) RotateOldReports(ctx context.Context, retentionDays, keepMin int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	s.log.Info().Int("retention_days", retentionDays).Msg("Starting report rotation")

	reports, err := s.ListReports(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for i, report := range reports {
		if i < keepMin || !report.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, report.Key); err != nil {
			s.log.Error().Err(err).Str("key", report.Key).Msg("Failed to delete old report")
			continue
		}
		deleted++
	}

	s.log.Info().Int("deleted", deleted).Msg("Report rotation completed")
	return deleted, nil
}
