// Package report renders a pipeline Report for terminals and files.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"vacstat/internal/listing"
	"vacstat/internal/models"
)

// Console prints the four year series and both city series as pterm tables.
func Console(w io.Writer, r *models.Report) error {
	fmt.Fprintln(w, pterm.LightCyan(fmt.Sprintf("%s: %s vacancies, %d partitions, %v",
		r.Source, humanize.Comma(int64(r.Records)), r.Partitions, r.Elapsed)))

	sections := []struct {
		title string
		data  pterm.TableData
	}{
		{"Salary by year", yearTable(r.Years.SalaryByYear, "Mean salary", true)},
		{"Vacancies by year", yearTable(r.Years.CountByYear, "Vacancies", false)},
		{"Salary by year for " + r.Profession, yearTable(r.Years.ProfessionSalaryByYear, "Mean salary", true)},
		{"Vacancies by year for " + r.Profession, yearTable(r.Years.ProfessionCountByYear, "Vacancies", false)},
		{"Salary by city", citySalaryTable(r.Cities.SalaryByCity)},
		{"Share of vacancies by city", cityShareTable(r.Cities.ShareByCity)},
	}
	for _, s := range sections {
		fmt.Fprintln(w)
		fmt.Fprintln(w, pterm.Yellow(s.title))
		out, err := pterm.DefaultTable.WithHasHeader().WithData(s.data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	}
	return nil
}

func yearTable(s models.YearSeries, valueTitle string, money bool) pterm.TableData {
	data := pterm.TableData{{"Year", valueTitle}}
	for _, p := range s {
		v := strconv.Itoa(p.Value)
		if money {
			v = humanize.Comma(int64(p.Value))
		}
		data = append(data, []string{strconv.Itoa(p.Year), v})
	}
	return data
}

func citySalaryTable(s []models.CitySalary) pterm.TableData {
	data := pterm.TableData{{"City", "Mean salary"}}
	for _, c := range s {
		data = append(data, []string{c.City, humanize.Comma(int64(c.Salary))})
	}
	return data
}

func cityShareTable(s []models.CityShare) pterm.TableData {
	data := pterm.TableData{{"City", "Share"}}
	for _, c := range s {
		data = append(data, []string{c.City, formatPercent(c.Share)})
	}
	return data
}

func formatPercent(share float64) string {
	return strconv.FormatFloat(share*100, 'f', 2, 64) + "%"
}

// ListingTable prints numbered vacancy rows with the requested columns.
func ListingTable(w io.Writer, rows []listing.Row, fields []listing.FieldID) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, pterm.Red("Nothing found"))
		return nil
	}
	header := []string{"No"}
	for _, f := range fields {
		header = append(header, f.Title())
	}
	data := pterm.TableData{header}
	for _, row := range rows {
		data = append(data, row.Cells(fields))
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
