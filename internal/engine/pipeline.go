package engine

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"vacstat/internal/currency"
	"vacstat/internal/models"
)

// Pipeline runs partitioning, year aggregation and city aggregation over one
// source file.
type Pipeline struct {
	Source       string
	Profession   string
	PartitionDir string
	SortInput    bool
	Workers      int
	Rates        currency.Table

	OnPartitions    func(n int)
	OnPartitionDone func(models.PartialStats)
}

func (p *Pipeline) Run(ctx context.Context) (*models.Report, error) {
	start := time.Now()
	log.Infof("starting pipeline for %s (profession %q)", p.Source, p.Profession)

	splitter, err := NewPartitioner(p.PartitionDir, p.SortInput)
	if err != nil {
		return nil, err
	}
	parts, err := splitter.Split(ctx, p.Source)
	if err != nil {
		return nil, err
	}
	if p.OnPartitions != nil {
		p.OnPartitions(len(parts))
	}

	coord := NewCoordinator(p.PartitionDir, p.Rates, p.Workers)
	coord.OnPartitionDone = p.OnPartitionDone
	years, err := coord.RunPartitions(ctx, parts, p.Profession)
	if err != nil {
		return nil, err
	}

	cities, n, err := AggregateCitiesFile(p.Source, p.Rates)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		Source:      p.Source,
		Profession:  p.Profession,
		Partitions:  len(parts),
		Records:     n,
		GeneratedAt: time.Now(),
		Elapsed:     time.Since(start),
		Years:       years,
		Cities:      cities,
	}
	log.Infof("pipeline complete in %v", report.Elapsed)
	return report, nil
}
