package engine

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// ErrYearNotContiguous is returned by Split when a year shows up again after
// rows of another year were read in between.
var ErrYearNotContiguous = errors.New("input is not grouped by year")

// Partition is one written <year>.csv file.
type Partition struct {
	Year int
	Path string
	Rows int
}

// Partitioner splits a year-ordered vacancy file into one file per year.
type Partitioner struct {
	Dir string
	// SortInput buffers the whole file and stable-sorts it by year first.
	// Without it, rows of one year must already be contiguous.
	SortInput bool
}

// NewPartitioner creates dir if needed.
func NewPartitioner(dir string, sortInput bool) (*Partitioner, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create partitions directory: %w", err)
	}
	return &Partitioner{Dir: dir, SortInput: sortInput}, nil
}

// PartitionPath returns <dir>/<year>.csv.
func (p *Partitioner) PartitionPath(year int) string {
	return filepath.Join(p.Dir, strconv.Itoa(year)+".csv")
}

type yearRow struct {
	year int
	row  []string
}

// Split streams src and writes a partition each time the year changes. Rows
// are not validated beyond reading their year; rows without a readable year
// are dropped. Partition files left in Dir by an earlier run are removed
// first, and the files written so far are removed again if Split fails.
func (p *Partitioner) Split(ctx context.Context, src string) ([]Partition, error) {
	start := time.Now()

	if err := p.clear(); err != nil {
		return nil, err
	}
	var parts []Partition
	done := false
	defer func() {
		if done {
			return
		}
		for _, part := range parts {
			os.Remove(part.Path)
		}
	}()

	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := newCSVReader(f)
	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", src, ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", src, err)
	}
	h, err := newHeader(head)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	yearCol := h.index["published_at"]

	dropped := 0
	next := func(int) (*yearRow, error) {
		for {
			row, err := cr.Read()
			if err != nil {
				return nil, err
			}
			field := row[len(row)-1]
			if yearCol < len(row) {
				field = row[yearCol]
			}
			year, err := parseYear(field)
			if err != nil {
				line, _ := cr.FieldPos(0)
				log.Debugf("%s line %d: dropping row: %v", src, line, err)
				dropped++
				continue
			}
			return &yearRow{year: year, row: row}, nil
		}
	}

	if p.SortInput {
		var rows []yearRow
		for line := 2; ; line++ {
			yr, err := next(line)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			rows = append(rows, *yr)
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].year < rows[j].year })
		i := 0
		next = func(int) (*yearRow, error) {
			if i == len(rows) {
				return nil, io.EOF
			}
			i++
			return &rows[i-1], nil
		}
	}

	var (
		pending [][]string
		current int
		closed  = make(map[int]bool)
	)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		part, err := p.write(current, h.names, pending)
		if err != nil {
			return err
		}
		parts = append(parts, part)
		closed[current] = true
		pending = nil
		return nil
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		yr, err := next(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if yr.year != current && len(pending) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		if closed[yr.year] {
			return nil, fmt.Errorf("%s line %d: %w: year %d appears again after its run ended", src, line, ErrYearNotContiguous, yr.year)
		}
		current = yr.year
		pending = append(pending, yr.row)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	done = true
	log.Infof("partitioned %s into %d files under %s in %v (%d rows without a year dropped)", src, len(parts), p.Dir, time.Since(start), dropped)
	return parts, nil
}

// clear removes <year>.csv files from Dir. Other files are left alone.
func (p *Partitioner) clear() error {
	stale, err := ListPartitions(p.Dir)
	if err != nil {
		return err
	}
	for _, part := range stale {
		if err := os.Remove(part.Path); err != nil {
			return fmt.Errorf("failed to remove stale partition: %w", err)
		}
	}
	if len(stale) > 0 {
		log.Debugf("removed %d stale partitions from %s", len(stale), p.Dir)
	}
	return nil
}

func (p *Partitioner) write(year int, head []string, rows [][]string) (Partition, error) {
	path := p.PartitionPath(year)
	out, err := os.Create(path)
	if err != nil {
		return Partition{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(head); err != nil {
		return Partition{}, fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return Partition{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := out.Sync(); err != nil {
		return Partition{}, fmt.Errorf("failed to sync %s: %w", path, err)
	}
	log.Debugf("wrote partition %s (%d rows)", path, len(rows))
	return Partition{Year: year, Path: path, Rows: len(rows)}, nil
}

// ListPartitions returns the <year>.csv files in dir, ordered by year.
func ListPartitions(dir string) ([]Partition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read partitions directory: %w", err)
	}
	var parts []Partition
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		year, err := partitionYear(e.Name())
		if err != nil {
			log.Warnf("skipping %s: %v", e.Name(), err)
			continue
		}
		parts = append(parts, Partition{Year: year, Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Year < parts[j].Year })
	return parts, nil
}

// partitionYear reads the year out of a "2019.csv" file name.
func partitionYear(name string) (int, error) {
	base := strings.TrimSuffix(filepath.Base(name), ".csv")
	if len(base) != 4 {
		return 0, fmt.Errorf("%w from file name %q", ErrBadYear, name)
	}
	return parseYear(base)
}
