package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SectorPulse/internal/domain/models"
	"SectorPulse/internal/usecase"
	xhttp "SectorPulse/pkg/http"
	xlogger "SectorPulse/pkg/logger"
)

type stubReturnStore struct {
	rows []models.ReturnRecord
}

func (s *stubReturnStore) StoreReturns(context.Context, []models.ReturnRecord) error { return nil }
func (s *stubReturnStore) StoreSectorReturns(context.Context, []models.SectorMonthlyReturn) error {
	return nil
}

func (s *stubReturnStore) QueryReturns(_ context.Context, ticker string, _, _ time.Time, _ int) ([]models.ReturnRecord, error) {
	out := []models.ReturnRecord{}
	for _, r := range s.rows {
		if r.Ticker == ticker {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubReturnStore) QuerySectorReturns(context.Context, string, time.Time, time.Time, int) ([]models.SectorMonthlyReturn, error) {
	return nil, nil
}

type stubPriceHealth struct {
	err error
}

func (s *stubPriceHealth) StoreBars(context.Context, []models.PriceBar) error { return nil }
func (s *stubPriceHealth) AllBars(context.Context) ([]models.PriceBar, error) { return nil, nil }
func (s *stubPriceHealth) MaxDates(context.Context, []string) (map[string]time.Time, error) {
	return nil, nil
}
func (s *stubPriceHealth) Health(context.Context) error { return s.err }

func newTestHandler(store *stubReturnStore, prices *stubPriceHealth) *MarketEchoHandler {
	l, _ := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stdout"})
	return NewMarketEchoHandler(l, usecase.NewMarketQuery(store), nil, nil, prices, nil)
}

func doRequest(t *testing.T, h func(echo.Context) error, target string) (*httptest.ResponseRecorder, xhttp.APIResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	var body xhttp.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestReturnsEndpoint(t *testing.T) {
	store := &stubReturnStore{rows: []models.ReturnRecord{
		{Ticker: "AAPL", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Close: 12, PrevClose: 10, DailyReturn: null.FloatFrom(0.2)},
	}}
	h := newTestHandler(store, &stubPriceHealth{})

	rec, body := doRequest(t, h.Returns, "/api/returns?ticker=AAPL")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, body.Status)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "AAPL", data["ticker"])
	assert.EqualValues(t, 1, data["count"])
}

func TestReturnsEndpointRequiresTicker(t *testing.T) {
	h := newTestHandler(&stubReturnStore{}, &stubPriceHealth{})

	_, body := doRequest(t, h.Returns, "/api/returns")
	assert.Equal(t, http.StatusBadRequest, body.Status)
}

func TestSectorsEndpoint(t *testing.T) {
	h := newTestHandler(&stubReturnStore{}, &stubPriceHealth{})

	_, body := doRequest(t, h.Sectors, "/api/sectors?sector=Energy")
	assert.Equal(t, http.StatusOK, body.Status)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(&stubReturnStore{}, &stubPriceHealth{})
	_, body := doRequest(t, h.Health, "/api/health")
	assert.Equal(t, http.StatusOK, body.Status)

	degraded := newTestHandler(&stubReturnStore{}, &stubPriceHealth{err: errors.New("connection refused")})
	_, body = doRequest(t, degraded.Health, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, body.Status)
}
