package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"FinBoard/internal/fetcher"
	"FinBoard/internal/model"
	"FinBoard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func registerTest(t *testing.T, s *store.Store, symbol, region string) model.Instrument {
	t.Helper()
	inst := model.Instrument{
		Symbol:         symbol,
		Name:           symbol,
		Classification: model.ClassEquity,
		Region:         region,
		Currency:       "USD",
	}
	id, err := s.Register(inst)
	require.NoError(t, err)
	inst.ID = id
	return inst
}

func newTestEngine(s *store.Store, mock *fetcher.MockFetcher, floor, now time.Time) *Engine {
	e := NewEngine(s, mock, floor, time.Second)
	e.Now = func() time.Time { return now }
	return e
}

func TestSyncAll_WritesNewRows(t *testing.T) {
	s := newTestStore(t)
	inst := registerTest(t, s, "AAPL", "US")

	floor := model.Date(2024, 3, 4) // Monday
	now := model.Date(2024, 3, 8)   // Friday
	mock := &fetcher.MockFetcher{
		Tables: map[string]*fetcher.Table{
			"AAPL": fetcher.DailyTable(floor, 5, 100),
		},
	}
	e := newTestEngine(s, mock, floor, now)

	report, err := e.SyncAll(context.Background(), []model.Instrument{inst})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)

	out := report.Outcomes[0]
	assert.Equal(t, StatusSynced, out.Status)
	assert.Equal(t, 5, out.RowsWritten)

	points, err := s.ReadPrices(inst.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, points, 5)
}

func TestSyncAll_UpToDateSkipsFetch(t *testing.T) {
	s := newTestStore(t)
	inst := registerTest(t, s, "AAPL", "US")

	now := model.Date(2024, 3, 8)
	_, err := s.UpsertPrices(inst.ID, []model.PricePoint{
		{Date: now, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
	})
	require.NoError(t, err)

	mock := &fetcher.MockFetcher{}
	e := newTestEngine(s, mock, model.Date(2024, 3, 4), now)

	report, err := e.SyncAll(context.Background(), []model.Instrument{inst})
	require.NoError(t, err)

	out := report.Outcomes[0]
	assert.Equal(t, StatusSkipped, out.Status)
	assert.Equal(t, "up to date", out.Reason)
	assert.Empty(t, mock.Calls, "no upstream call for an up-to-date instrument")
}

func TestSyncAll_IncrementalFromLatestDate(t *testing.T) {
	s := newTestStore(t)
	inst := registerTest(t, s, "AAPL", "US")

	floor := model.Date(2024, 3, 4)
	mock := &fetcher.MockFetcher{
		Tables: map[string]*fetcher.Table{
			"AAPL": fetcher.DailyTable(floor, 3, 100),
		},
	}

	e := newTestEngine(s, mock, floor, model.Date(2024, 3, 6))
	report, err := e.SyncAll(context.Background(), []model.Instrument{inst})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Outcomes[0].RowsWritten)

	// A later run over an overlapping fetch window writes only new dates.
	mock.Tables["AAPL"] = fetcher.DailyTable(floor, 5, 100)
	e = newTestEngine(s, mock, floor, model.Date(2024, 3, 8))
	report, err = e.SyncAll(context.Background(), []model.Instrument{inst})
	require.NoError(t, err)

	out := report.Outcomes[0]
	assert.Equal(t, StatusSynced, out.Status)
	assert.Equal(t, 2, out.RowsWritten)
}

func TestSyncAll_FailureDoesNotAbortRun(t *testing.T) {
	s := newTestStore(t)
	bad := registerTest(t, s, "BROKEN", "US")
	good := registerTest(t, s, "MSFT", "US")

	floor := model.Date(2024, 3, 4)
	mock := &fetcher.MockFetcher{
		Tables: map[string]*fetcher.Table{
			"MSFT": fetcher.DailyTable(floor, 3, 400),
		},
		Errs: map[string]error{
			"BROKEN": errors.New("upstream returned 500"),
		},
	}
	e := newTestEngine(s, mock, floor, model.Date(2024, 3, 8))

	report, err := e.SyncAll(context.Background(), []model.Instrument{bad, good})
	require.NoError(t, err, "a fetch failure is confined to its instrument")
	require.Len(t, report.Outcomes, 2)

	assert.Equal(t, StatusFailed, report.Outcomes[0].Status)
	assert.Error(t, report.Outcomes[0].Err)
	assert.Equal(t, StatusSynced, report.Outcomes[1].Status)

	synced, skipped, failed := report.Counts()
	assert.Equal(t, 1, synced)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 1, failed)
}

func TestSyncAll_AllRowsInvalidIsFailure(t *testing.T) {
	s := newTestStore(t)
	inst := registerTest(t, s, "DEAD", "US")

	floor := model.Date(2024, 3, 4)
	mock := &fetcher.MockFetcher{
		Tables: map[string]*fetcher.Table{
			"DEAD": {
				Columns: []string{"Date", "Open", "High", "Low", "Close", "Volume"},
				Rows: [][]any{
					{model.Date(2024, 3, 4), nil, nil, nil, nil, nil},
					{model.Date(2024, 3, 5), nil, nil, nil, nil, nil},
				},
			},
		},
	}
	e := newTestEngine(s, mock, floor, model.Date(2024, 3, 8))

	report, err := e.SyncAll(context.Background(), []model.Instrument{inst})
	require.NoError(t, err)

	out := report.Outcomes[0]
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorContains(t, out.Err, "invalid")
}

func TestSyncAll_EmptyFetchIsSkip(t *testing.T) {
	s := newTestStore(t)
	inst := registerTest(t, s, "QUIET", "US")

	// No canned table: the mock returns a nil table, i.e. no data.
	mock := &fetcher.MockFetcher{}
	e := newTestEngine(s, mock, model.Date(2024, 3, 4), model.Date(2024, 3, 8))

	report, err := e.SyncAll(context.Background(), []model.Instrument{inst})
	require.NoError(t, err)

	out := report.Outcomes[0]
	assert.Equal(t, StatusSkipped, out.Status)
	assert.Equal(t, "no new data", out.Reason)
}

func TestSyncAll_WeekendWindowSkipsFetch(t *testing.T) {
	s := newTestStore(t)
	inst := registerTest(t, s, "URTH", "Global")

	mock := &fetcher.MockFetcher{}
	// Saturday through Sunday: no session anywhere.
	e := newTestEngine(s, mock, model.Date(2024, 3, 9), model.Date(2024, 3, 10))

	report, err := e.SyncAll(context.Background(), []model.Instrument{inst})
	require.NoError(t, err)

	out := report.Outcomes[0]
	assert.Equal(t, StatusSkipped, out.Status)
	assert.Equal(t, "no trading days in window", out.Reason)
	assert.Empty(t, mock.Calls)
}

func TestSyncAll_AliasFetchesUpstreamSymbol(t *testing.T) {
	s := newTestStore(t)
	inst := model.Instrument{
		Symbol:         "USD_TWD",
		Name:           "USD/TWD",
		Classification: model.ClassCurrencyPair,
		Region:         "TW",
		Currency:       "TWD",
	}
	id, err := s.Register(inst)
	require.NoError(t, err)
	inst.ID = id

	floor := model.Date(2024, 3, 4)
	mock := &fetcher.MockFetcher{
		Tables: map[string]*fetcher.Table{
			"USDTWD=X": fetcher.DailyTable(floor, 3, 31.5),
		},
	}
	e := newTestEngine(s, mock, floor, model.Date(2024, 3, 8))
	e.Aliases = map[string]string{"USD_TWD": "USDTWD=X"}

	report, err := e.SyncAll(context.Background(), []model.Instrument{inst})
	require.NoError(t, err)

	assert.Equal(t, StatusSynced, report.Outcomes[0].Status)
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, "USDTWD=X", mock.Calls[0], "fetch uses the upstream symbol, not the stored alias")
}
