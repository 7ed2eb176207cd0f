package engine

import (
	"math"
	"sort"

	"vacstat/internal/currency"
	"vacstat/internal/models"
)

const (
	// MinCityShare is the vacancy share a city must exceed to be reported.
	MinCityShare = 0.01
	// TopCities caps both city series.
	TopCities = 10
)

type cityAcc struct {
	name   string
	salary float64
	count  int
}

// AggregateCitiesFile loads path and runs AggregateCities over it.
func AggregateCitiesFile(path string, rates currency.Table) (models.CityStats, int, error) {
	records, err := LoadRecords(path)
	if err != nil {
		return models.CityStats{}, 0, err
	}
	stats, err := AggregateCities(records, rates)
	return stats, len(records), err
}

// AggregateCities computes mean salary and vacancy share per city in one
// pass. Cities at or below MinCityShare are dropped, the rest sorted
// descending (ties keep first-seen order) and cut to TopCities.
func AggregateCities(records []models.Record, rates currency.Table) (models.CityStats, error) {
	store, err := BuildColumnStore(records, rates)
	if err != nil {
		return models.CityStats{}, err
	}
	defer store.Release()
	return store.cityStats(), nil
}

func (cs *ColumnStore) cityStats() models.CityStats {
	index := make(map[string]int)
	var cities []cityAcc
	total := 0

	for i, n := 0, cs.Len(); i < n; i++ {
		area := cs.Areas.Value(i)
		idx, ok := index[area]
		if !ok {
			idx = len(cities)
			index[area] = idx
			cities = append(cities, cityAcc{name: area})
		}
		cities[idx].salary += cs.Salaries.Value(i)
		cities[idx].count++
		total++
	}

	out := models.CityStats{
		SalaryByCity: make([]models.CitySalary, 0),
		ShareByCity:  make([]models.CityShare, 0),
	}
	if total == 0 {
		return out
	}

	for _, c := range cities {
		share := roundTo(float64(c.count)/float64(total), 4)
		if share <= MinCityShare {
			continue
		}
		out.SalaryByCity = append(out.SalaryByCity, models.CitySalary{City: c.name, Salary: int(c.salary / float64(c.count))})
	}
	for _, c := range cities {
		share := roundTo(float64(c.count)/float64(total), 4)
		if share <= MinCityShare {
			continue
		}
		out.ShareByCity = append(out.ShareByCity, models.CityShare{City: c.name, Share: share})
	}

	sort.SliceStable(out.SalaryByCity, func(i, j int) bool { return out.SalaryByCity[i].Salary > out.SalaryByCity[j].Salary })
	sort.SliceStable(out.ShareByCity, func(i, j int) bool { return out.ShareByCity[i].Share > out.ShareByCity[j].Share })

	if len(out.SalaryByCity) > TopCities {
		out.SalaryByCity = out.SalaryByCity[:TopCities]
	}
	if len(out.ShareByCity) > TopCities {
		out.ShareByCity = out.ShareByCity[:TopCities]
	}
	return out
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
