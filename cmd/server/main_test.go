package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	analyticsdto "barfer_analytics/internal/api/analytics/dto"
	analyticshdl "barfer_analytics/internal/api/analytics/handler"
	analyticssvc "barfer_analytics/internal/api/analytics/service"
	"barfer_analytics/internal/common"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReports chỉ cài các báo cáo mà test gọi; gọi báo cáo khác sẽ panic
type stubReports struct {
	analyticshdl.Reports
	last analyticssvc.Filter
}

func (s *stubReports) Location() *time.Location { return time.UTC }

func (s *stubReports) AverageOrderValue(_ context.Context, f analyticssvc.Filter) (analyticssvc.AverageOrderValue, error) {
	s.last = f
	return analyticssvc.AverageOrderValue{AverageOrderValue: 200, TotalOrders: 3, TotalRevenue: 600}, nil
}

func (s *stubReports) StatusBreakdown(_ context.Context, f analyticssvc.Filter) ([]analyticssvc.StatusBreakdownRow, error) {
	s.last = f
	return nil, errors.New("cursor failed")
}

func TestReportRunners_MatchMetricList(t *testing.T) {
	runners := reportRunners(&stubReports{})
	names := make([]string, 0, len(runners))
	for name := range runners {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, metricNames(), names)
}

func TestRunReport(t *testing.T) {
	r := &stubReports{}

	data, err := runReport(context.Background(), r, "average-order-value", analyticsdto.AnalyticsQueryParams{From: "2024-01-01", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, analyticssvc.AverageOrderValue{AverageOrderValue: 200, TotalOrders: 3, TotalRevenue: 600}, data)
	require.NotNil(t, r.last.From)
	assert.Equal(t, 10, r.last.Limit)

	_, err = runReport(context.Background(), r, "status-breakdown", analyticsdto.AnalyticsQueryParams{})
	assert.EqualError(t, err, "cursor failed")
}

func TestRunReport_Rejects(t *testing.T) {
	r := &stubReports{}

	_, err := runReport(context.Background(), r, "lifetime-value", analyticsdto.AnalyticsQueryParams{})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = runReport(context.Background(), r, "summary", analyticsdto.AnalyticsQueryParams{Period: "yearly"})
	var customErr *common.Error
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, common.ErrCodeValidationInput.Code, customErr.Code.Code)
}

func TestParseCORSOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, parseCORSOrigins(""))
	assert.Equal(t, []string{"*"}, parseCORSOrigins(" * "))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, parseCORSOrigins("https://a.example, https://b.example,"))
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/conf", func(c fiber.Ctx) error { return common.ErrMissingConnectionURI })
	app.Get("/boom", func(c fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/conf", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
