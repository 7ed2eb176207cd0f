package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"vacstat/internal/models"
)

// WriteText writes the report as plain text tables.
func WriteText(path string, r *models.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "Source: %s\nProfession: %s\nVacancies: %d\nPartitions: %d\n\n", r.Source, r.Profession, r.Records, r.Partitions)

	table := tablewriter.NewWriter(f)
	table.SetHeader([]string{"Year", "Mean salary", "Vacancies", "Mean salary (" + r.Profession + ")", "Vacancies (" + r.Profession + ")"})
	table.AppendBulk(yearRows(r.Years))
	table.Render()
	fmt.Fprintln(f)

	table = tablewriter.NewWriter(f)
	table.SetHeader([]string{"City", "Mean salary", "", "City", "Share"})
	table.AppendBulk(cityRows(r.Cities, formatPercent))
	table.Render()

	return f.Close()
}

// yearRows joins the four series on year. Years missing from a series get an
// empty cell.
func yearRows(y models.YearStats) [][]string {
	cell := func(s models.YearSeries, year int) string {
		if v, ok := s.Get(year); ok {
			return strconv.Itoa(v)
		}
		return ""
	}
	var rows [][]string
	for _, p := range y.SalaryByYear {
		rows = append(rows, []string{
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Value),
			cell(y.CountByYear, p.Year),
			cell(y.ProfessionSalaryByYear, p.Year),
			cell(y.ProfessionCountByYear, p.Year),
		})
	}
	return rows
}

// cityRows lays both city series side by side.
func cityRows(c models.CityStats, share func(float64) string) [][]string {
	n := len(c.SalaryByCity)
	if len(c.ShareByCity) > n {
		n = len(c.ShareByCity)
	}
	rows := make([][]string, n)
	for i := range rows {
		row := make([]string, 5)
		if i < len(c.SalaryByCity) {
			row[0] = c.SalaryByCity[i].City
			row[1] = strconv.Itoa(c.SalaryByCity[i].Salary)
		}
		if i < len(c.ShareByCity) {
			row[3] = c.ShareByCity[i].City
			row[4] = share(c.ShareByCity[i].Share)
		}
		rows[i] = row
	}
	return rows
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(path string, r *models.Report) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// WriteCSV writes years.csv and cities.csv into dir.
func WriteCSV(dir string, r *models.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	years := append([][]string{{"year", "mean_salary", "vacancies", "profession_mean_salary", "profession_vacancies"}}, yearRows(r.Years)...)
	if err := writeSheet(filepath.Join(dir, "years.csv"), years); err != nil {
		return err
	}
	shareCell := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	cities := append([][]string{{"city", "mean_salary", "", "city", "share"}}, cityRows(r.Cities, shareCell)...)
	return writeSheet(filepath.Join(dir, "cities.csv"), cities)
}

func writeSheet(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteAll writes report.txt, report.json and the csv sheets into dir.
func WriteAll(dir string, r *models.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := WriteText(filepath.Join(dir, "report.txt"), r); err != nil {
		return err
	}
	if err := WriteJSON(filepath.Join(dir, "report.json"), r); err != nil {
		return err
	}
	return WriteCSV(dir, r)
}
