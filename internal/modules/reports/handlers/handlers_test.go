package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/reports"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	archived []string
	listed   []reports.ReportInfo
	err      error
}

func (f *fakeArchive) ArchiveRun(ctx context.Context, run *results.Run) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.archived = append(f.archived, run.ID)
	return "s3://reports/" + run.ID + ".csv", nil
}

func (f *fakeArchive) ListReports(ctx context.Context) ([]reports.ReportInfo, error) {
	return f.listed, f.err
}

type fakeRuns map[string]*results.Run

func (f fakeRuns) GetRun(ctx context.Context, id string) (*results.Run, error) {
	if run, ok := f[id]; ok {
		return run, nil
	}
	return nil, fmt.Errorf("%w: %s", results.ErrRunNotFound, id)
}

func setupRouter(archive *fakeArchive) chi.Router {
	runs := fakeRuns{"run-1": {ID: "run-1", CreatedAt: time.Now()}}
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		NewHandler(archive, runs, zerolog.New(nil).Level(zerolog.Disabled)).RegisterRoutes(r)
	})
	return router
}

func TestHandleListReports(t *testing.T) {
	archive := &fakeArchive{listed: []reports.ReportInfo{
		{Key: "screening-reports/2024-06-01/run-1.csv", RunID: "run-1", SizeBytes: 512},
	}}

	w := httptest.NewRecorder()
	setupRouter(archive).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Reports []reports.ReportInfo `json:"reports"`
			Count   int                  `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Count)
	assert.Equal(t, "run-1", body.Data.Reports[0].RunID)
}

func TestHandleArchiveRun(t *testing.T) {
	tests := []struct {
		name       string
		runID      string
		archiveErr error
		wantStatus int
	}{
		{"archives stored run", "run-1", nil, http.StatusCreated},
		{"unknown run", "run-404", nil, http.StatusNotFound},
		{"store failure", "run-1", errors.New("bucket unreachable"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := &fakeArchive{err: tt.archiveErr}
			w := httptest.NewRecorder()
			setupRouter(archive).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reports/"+tt.runID, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, []string{"run-1"}, archive.archived)
				assert.Contains(t, w.Body.String(), "s3://reports/run-1.csv")
			}
		})
	}
}
