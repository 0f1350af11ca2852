package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dailyBody = `{
  "Meta Data": {"2. Symbol": "AMZN"},
  "Time Series (Daily)": {
    "2024-03-04": {
      "1. open": "175.0", "2. high": "178.1", "3. low": "174.2",
      "4. close": "177.5", "5. adjusted close": "177.5", "6. volume": "31000000"
    },
    "2024-03-01": {
      "1. open": "171.0", "2. high": "172.9", "3. low": "170.5",
      "4. close": "172.0", "5. adjusted close": "172.0", "6. volume": "28000000"
    },
    "2024-03-05": {
      "1. open": "177.0", "2. high": "177.8", "3. low": "175.0",
      "4. close": "", "5. adjusted close": "176.1", "6. volume": "27000000"
    }
  }
}`

func TestDailyBarsSortedOldestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "TIME_SERIES_DAILY_ADJUSTED", r.URL.Query().Get("function"))
		assert.Equal(t, "AMZN", r.URL.Query().Get("symbol"))
		assert.Equal(t, "k", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(dailyBody))
	}))
	defer srv.Close()

	src := New(srv.URL, "k", time.Second)
	bars, err := src.DailyBars(context.Background(), "AMZN")
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.True(t, bars[0].Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, bars[2].Date.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 172.0, bars[0].Close.Float64)
	assert.False(t, bars[2].Close.Valid, "empty close must stay null")
	assert.Equal(t, int64(31000000), bars[1].Volume)
}

func TestDailyBarsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Error Message": "Invalid API call"}`))
	}))
	defer srv.Close()

	src := New(srv.URL, "k", time.Second)
	_, err := src.DailyBars(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API call")
}

func TestDailyBarsThrottleNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Note": "API call frequency exceeded"}`))
	}))
	defer srv.Close()

	src := New(srv.URL, "k", time.Second)
	_, err := src.DailyBars(context.Background(), "AMZN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestDailyBarsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := New(srv.URL, "k", time.Second)
	_, err := src.DailyBars(context.Background(), "AMZN")
	require.Error(t, err)
}
