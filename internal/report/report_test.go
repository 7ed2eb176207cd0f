package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacstat/internal/listing"
	"vacstat/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		Source:      "vacancies_by_year.csv",
		Profession:  "Программист",
		Partitions:  2,
		Records:     1234,
		GeneratedAt: time.Date(2022, 6, 21, 0, 0, 0, 0, time.UTC),
		Elapsed:     time.Second,
		Years: models.YearStats{
			SalaryByYear:           models.YearSeries{{Year: 2020, Value: 150000}, {Year: 2021, Value: 160000}},
			CountByYear:            models.YearSeries{{Year: 2020, Value: 10}, {Year: 2021, Value: 12}},
			ProfessionSalaryByYear: models.YearSeries{{Year: 2020, Value: 90000}, {Year: 2021, Value: 95000}},
			ProfessionCountByYear:  models.YearSeries{{Year: 2020, Value: 3}, {Year: 2021, Value: 4}},
		},
		Cities: models.CityStats{
			SalaryByCity: []models.CitySalary{{City: "Москва", Salary: 200000}, {City: "Казань", Salary: 80000}},
			ShareByCity:  []models.CityShare{{City: "Москва", Share: 0.4512}},
		},
	}
}

func TestConsole(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var buf bytes.Buffer
	require.NoError(t, Console(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "1,234 vacancies")
	assert.Contains(t, out, "Salary by year for Программист")
	assert.Contains(t, out, "150,000")
	assert.Contains(t, out, "Москва")
	assert.Contains(t, out, "45.12%")
}

func TestListingTable(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	rows, err := (&listing.Listing{}).Apply([]models.Record{{Name: "Аналитик", AreaName: "Омск"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ListingTable(&buf, rows, []listing.FieldID{listing.FieldName, listing.FieldArea}))
	assert.Contains(t, buf.String(), "Аналитик")
	assert.Contains(t, buf.String(), "Area")

	buf.Reset()
	require.NoError(t, ListingTable(&buf, nil, listing.AllFields))
	assert.Contains(t, buf.String(), "Nothing found")
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()
	require.NoError(t, WriteAll(dir, r))

	text, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "160000")
	assert.Contains(t, string(text), "45.12%")

	raw, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	var decoded models.Report
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, r.Years, decoded.Years)
	assert.Equal(t, r.Cities, decoded.Cities)

	years := readSheet(t, filepath.Join(dir, "years.csv"))
	assert.Equal(t, [][]string{
		{"year", "mean_salary", "vacancies", "profession_mean_salary", "profession_vacancies"},
		{"2020", "150000", "10", "90000", "3"},
		{"2021", "160000", "12", "95000", "4"},
	}, years)

	cities := readSheet(t, filepath.Join(dir, "cities.csv"))
	assert.Equal(t, [][]string{
		{"city", "mean_salary", "", "city", "share"},
		{"Москва", "200000", "", "Москва", "0.4512"},
		{"Казань", "80000", "", "", ""},
	}, cities)
}

func TestYearRowsMissingYear(t *testing.T) {
	rows := yearRows(models.YearStats{
		SalaryByYear: models.YearSeries{{Year: 2019, Value: 1}},
	})
	assert.Equal(t, [][]string{{"2019", "1", "", "", ""}}, rows)
}

func readSheet(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
