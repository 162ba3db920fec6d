package reports

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	modified  map[string]time.Time
	uploadErr error
	deleted   []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, modified: map[string]time.Time{}}
}

func (m *memoryStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	if _, ok := m.modified[key]; !ok {
		m.modified[key] = time.Now()
	}
	return "mem://" + key, nil
}

func (m *memoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, ObjectInfo{Key: k, Size: int64(len(v)), LastModified: m.modified[k]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type recordingEmitter struct {
	events []events.EventData
}

func (r *recordingEmitter) EmitTyped(module string, data events.EventData) {
	r.events = append(r.events, data)
}

func testRun(id string, created time.Time) *results.Run {
	return &results.Run{
		ID:        id,
		CreatedAt: created,
		Results: []backtest.AnalysisResult{
			{AssetCode: "WEGE3", TradingDays: 20},
		},
	}
}

func TestService_ArchiveRun(t *testing.T) {
	store := newMemoryStore()
	emitter := &recordingEmitter{}
	svc := NewService(store, "/screening/", emitter, zerolog.New(nil).Level(zerolog.Disabled))

	run := testRun("run-1", time.Date(2024, 5, 6, 18, 0, 0, 0, time.UTC))
	location, err := svc.ArchiveRun(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, "screening/2024-05-06/run-1.csv", svc.KeyFor(run))
	assert.Equal(t, "mem://screening/2024-05-06/run-1.csv", location)

	body := string(store.objects["screening/2024-05-06/run-1.csv"])
	assert.True(t, strings.HasPrefix(body, "rank,asset_code,"))
	assert.Contains(t, body, "1,WEGE3,20,")

	require.Len(t, emitter.events, 1)
	archived := emitter.events[0].(*events.ReportArchivedData)
	assert.Equal(t, "run-1", archived.RunID)
	assert.Equal(t, int64(len(body)), archived.Bytes)
}

func TestService_ArchiveRunUploadError(t *testing.T) {
	store := newMemoryStore()
	store.uploadErr = errors.New("forbidden")
	emitter := &recordingEmitter{}
	svc := NewService(store, "", emitter, zerolog.New(nil).Level(zerolog.Disabled))

	_, err := svc.ArchiveRun(context.Background(), testRun("run-1", time.Now()))
	assert.ErrorContains(t, err, "forbidden")
	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.ErrorOccurred, emitter.events[0].EventType())
}

func TestService_ListAndRotate(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, "reports", nil, zerolog.New(nil).Level(zerolog.Disabled))
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i, age := range []int{1, 10, 40, 90} {
		run := testRun([]string{"a", "b", "c", "d"}[i], now.AddDate(0, 0, -age))
		key := svc.KeyFor(run)
		store.modified[key] = run.CreatedAt
		_, err := svc.ArchiveRun(context.Background(), run)
		require.NoError(t, err)
	}
	store.objects["reports/notes.txt"] = []byte("x")

	reports, err := svc.ListReports(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 4)
	assert.Equal(t, "a", reports[0].RunID)
	assert.Equal(t, int64(24), reports[0].AgeHours)
	assert.Equal(t, "d", reports[3].RunID)

	deleted, err := svc.RotateOldReports(context.Background(), 30, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.ElementsMatch(t, []string{
		"reports/" + now.AddDate(0, 0, -40).Format("2006-01-02") + "/c.csv",
		"reports/" + now.AddDate(0, 0, -90).Format("2006-01-02") + "/d.csv",
	}, store.deleted)

	deleted, err = svc.RotateOldReports(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
