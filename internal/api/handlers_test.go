package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacstat/internal/models"
)

func newServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}
	h.RegisterRoutes(e)
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func testReport() *models.Report {
	return &models.Report{
		Source:     "vacancies_by_year.csv",
		Profession: "Программист",
		Partitions: 1,
		Records:    3,
		Years: models.YearStats{
			SalaryByYear: models.YearSeries{{Year: 2022, Value: 100}},
			CountByYear:  models.YearSeries{{Year: 2022, Value: 3}},
		},
		Cities: models.CityStats{
			SalaryByCity: []models.CitySalary{{City: "Москва", Salary: 300}, {City: "Омск", Salary: 200}, {City: "Казань", Salary: 100}},
			ShareByCity:  []models.CityShare{{City: "Москва", Share: 0.5}, {City: "Омск", Share: 0.5}},
		},
	}
}

func TestLoadingReturns503(t *testing.T) {
	e := newServer(NewHandler(nil))
	for _, path := range []string{"/api/report", "/api/years", "/api/cities/salary", "/api/cities/share"} {
		rec := get(e, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}

	rec := get(e, "/api/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loading"`)
}

func TestReady(t *testing.T) {
	h := NewHandler(nil)
	e := newServer(h)
	h.SetData(testReport())

	rec := get(e, "/api/cities/salary?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var salaries []models.CitySalary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &salaries))
	assert.Equal(t, []models.CitySalary{{City: "Москва", Salary: 300}, {City: "Омск", Salary: 200}}, salaries)

	rec = get(e, "/api/cities/share?limit=abc")
	require.Equal(t, http.StatusOK, rec.Code)
	var shares []models.CityShare
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shares))
	assert.Len(t, shares, 2)

	rec = get(e, "/api/years")
	require.Equal(t, http.StatusOK, rec.Code)
	var years struct {
		Profession string           `json:"profession"`
		Data       models.YearStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &years))
	assert.Equal(t, "Программист", years.Profession)
	assert.Equal(t, models.YearSeries{{Year: 2022, Value: 100}}, years.Data.SalaryByYear)

	rec = get(e, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	var r models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, 3, r.Records)

	rec = get(e, "/api/status")
	assert.Contains(t, rec.Body.String(), `"ready"`)
}

func TestFailedStatus(t *testing.T) {
	h := NewHandler(nil)
	e := newServer(h)
	h.SetError(errors.New("partition 2019.csv: boom"))

	rec := get(e, "/api/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "partition 2019.csv: boom")
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/report").Code)
}
