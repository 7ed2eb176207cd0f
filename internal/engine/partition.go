package engine

import (
	"strings"

	"vacstat/internal/currency"
	"vacstat/internal/models"
)

// AggregatePartition computes the statistics of one <year>.csv file. The year
// is taken from the file name. A mean over zero records is reported as 0.
func AggregatePartition(path, profession string, rates currency.Table) (models.PartialStats, error) {
	year, err := partitionYear(path)
	if err != nil {
		return models.PartialStats{}, err
	}
	records, err := LoadRecords(path)
	if err != nil {
		return models.PartialStats{}, err
	}
	store, err := BuildColumnStore(records, rates)
	if err != nil {
		return models.PartialStats{}, err
	}
	defer store.Release()

	stats := store.yearStats(profession)
	stats.Year = year
	return stats, nil
}

func (cs *ColumnStore) yearStats(profession string) models.PartialStats {
	var (
		sum, profSum     float64
		count, profCount int
	)
	for i, n := 0, cs.Len(); i < n; i++ {
		salary := cs.Salaries.Value(i)
		sum += salary
		count++
		if strings.Contains(cs.Names.Value(i), profession) {
			profSum += salary
			profCount++
		}
	}
	return models.PartialStats{
		MeanSalary:       mean(sum, count),
		Count:            count,
		ProfessionSalary: mean(profSum, profCount),
		ProfessionCount:  profCount,
	}
}

func mean(sum float64, count int) int {
	if count == 0 {
		return 0
	}
	return int(sum / float64(count))
}
