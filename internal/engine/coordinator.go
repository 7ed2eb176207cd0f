package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"vacstat/internal/currency"
	"vacstat/internal/models"
)

// ErrNoPartitions is returned when there is nothing to aggregate.
var ErrNoPartitions = errors.New("no partition files found")

// AggregateFunc computes the statistics of one partition file.
type AggregateFunc func(path, profession string, rates currency.Table) (models.PartialStats, error)

// Coordinator fans one aggregation task out per partition file and merges
// the partial results into year series.
type Coordinator struct {
	Dir     string
	Rates   currency.Table
	Workers int

	// Aggregate defaults to AggregatePartition.
	Aggregate AggregateFunc
	// OnPartitionDone, if set, is called from the worker goroutine after each
	// successful task.
	OnPartitionDone func(models.PartialStats)
}

// NewCoordinator uses AggregatePartition and runtime.NumCPU workers when
// workers is not positive.
func NewCoordinator(dir string, rates currency.Table, workers int) *Coordinator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Coordinator{Dir: dir, Rates: rates, Workers: workers, Aggregate: AggregatePartition}
}

// Run aggregates every partition found in Dir.
func (c *Coordinator) Run(ctx context.Context, profession string) (models.YearStats, error) {
	parts, err := ListPartitions(c.Dir)
	if err != nil {
		return models.YearStats{}, err
	}
	return c.RunPartitions(ctx, parts, profession)
}

// RunPartitions aggregates exactly parts. The first failing partition aborts
// the run; tasks that have not started yet are skipped and results of tasks
// still running are discarded.
func (c *Coordinator) RunPartitions(ctx context.Context, parts []Partition, profession string) (models.YearStats, error) {
	if len(parts) == 0 {
		return models.YearStats{}, fmt.Errorf("%s: %w", c.Dir, ErrNoPartitions)
	}
	partials, err := c.collect(ctx, parts, profession)
	if err != nil {
		return models.YearStats{}, err
	}
	return MergePartials(partials), nil
}

func (c *Coordinator) collect(ctx context.Context, parts []Partition, profession string) ([]models.PartialStats, error) {
	start := time.Now()
	aggregate := c.Aggregate
	if aggregate == nil {
		aggregate = AggregatePartition
	}

	results := make(chan models.PartialStats, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers)

	for _, part := range parts {
		path := part.Path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats, err := aggregate(path, profession, c.Rates)
			if err != nil {
				return fmt.Errorf("partition %s: %w", filepath.Base(path), err)
			}
			results <- stats
			if c.OnPartitionDone != nil {
				c.OnPartitionDone(stats)
			}
			return nil
		})
	}

	err := g.Wait()
	close(results)
	if err != nil {
		return nil, err
	}

	partials := make([]models.PartialStats, 0, len(parts))
	for stats := range results {
		partials = append(partials, stats)
	}
	log.Infof("aggregated %d partitions with %d workers in %v", len(partials), c.Workers, time.Since(start))
	return partials, nil
}

// MergePartials folds partial results into four year series sorted by year.
// When two partials carry the same year the later one wins.
func MergePartials(partials []models.PartialStats) models.YearStats {
	salary := make(map[int]int)
	count := make(map[int]int)
	profSalary := make(map[int]int)
	profCount := make(map[int]int)

	for _, p := range partials {
		if _, dup := count[p.Year]; dup {
			log.Warnf("year %d reported by more than one partition, keeping the later result", p.Year)
		}
		salary[p.Year] = p.MeanSalary
		count[p.Year] = p.Count
		profSalary[p.Year] = p.ProfessionSalary
		profCount[p.Year] = p.ProfessionCount
	}

	return models.YearStats{
		SalaryByYear:           toSeries(salary),
		CountByYear:            toSeries(count),
		ProfessionSalaryByYear: toSeries(profSalary),
		ProfessionCountByYear:  toSeries(profCount),
	}
}

func toSeries(m map[int]int) models.YearSeries {
	s := make(models.YearSeries, 0, len(m))
	for year, v := range m {
		s = append(s, models.YearPoint{Year: year, Value: v})
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Year < s[j].Year })
	return s
}
