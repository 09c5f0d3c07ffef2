package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yahooServer(t *testing.T, status int, body string) *YahooFetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := NewYahooFetcher("", 5*time.Second)
	f.BaseURL = srv.URL
	return f
}

const chartOK = `{"chart":{"result":[{
	"timestamp":[1709510400,1709596800],
	"indicators":{
		"quote":[{
			"open":[99.5,null],"high":[101.0,null],"low":[99.0,null],
			"close":[100.0,null],"volume":[5000,null]
		}],
		"adjclose":[{"adjclose":[99.8,null]}]
	}
}],"error":null}}`

func TestYahooFetch_ParsesChart(t *testing.T) {
	f := yahooServer(t, http.StatusOK, chartOK)

	table, err := f.Fetch(context.Background(), "AAPL",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, table)

	assert.Equal(t, []string{"Date", "Open", "High", "Low", "Close", "Volume", "Adj Close"}, table.Columns)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), first[0])
	assert.Equal(t, 100.0, first[4])
	assert.Equal(t, 99.8, first[6])

	// Holiday rows come back as nulls, passed through as nil cells.
	second := table.Rows[1]
	assert.Nil(t, second[1])
	assert.Nil(t, second[4])
}

func TestYahooFetch_NotFoundIsNoData(t *testing.T) {
	f := yahooServer(t, http.StatusNotFound, `{}`)

	table, err := f.Fetch(context.Background(), "NOPE", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	assert.True(t, table.Empty())
}

func TestYahooFetch_APIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`
	f := yahooServer(t, http.StatusOK, body)

	_, err := f.Fetch(context.Background(), "BAD", time.Now().AddDate(0, 0, -5), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestYahooFetch_ServerError(t *testing.T) {
	f := yahooServer(t, http.StatusTooManyRequests, ``)

	_, err := f.Fetch(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestYahooFetch_MisalignedArrays(t *testing.T) {
	body := `{"chart":{"result":[{
		"timestamp":[1709510400,1709596800],
		"indicators":{"quote":[{"open":[99.5],"high":[101.0],"low":[99.0],"close":[100.0],"volume":[5000]}]}
	}],"error":null}}`
	f := yahooServer(t, http.StatusOK, body)

	_, err := f.Fetch(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "misaligned")
}

func TestYahooFetch_EmptyResultIsNoData(t *testing.T) {
	f := yahooServer(t, http.StatusOK, `{"chart":{"result":[],"error":null}}`)

	table, err := f.Fetch(context.Background(), "QUIET", time.Now().AddDate(0, 0, -5), time.Now())
	require.NoError(t, err)
	assert.True(t, table.Empty())
}
