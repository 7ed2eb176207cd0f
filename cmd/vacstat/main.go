package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/cheggaaa/pb/v3"
	"github.com/labstack/gommon/log"

	"vacstat/internal/config"
	"vacstat/internal/engine"
	"vacstat/internal/listing"
	"vacstat/internal/models"
	"vacstat/internal/report"
)

const usage = `usage:
  vacstat stats -input FILE -profession NAME [-config FILE] [-workers N] [-partitions DIR] [-sort-input] [-out DIR] [-quiet]
  vacstat list  -input FILE [-filter "field: value"] [-sort FIELD] [-reverse] [-from N] [-to N] [-columns a,b]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "stats":
		err = runStats(ctx, os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config")
	input := fs.String("input", "", "CSV file with vacancies sorted by year")
	profession := fs.String("profession", "", "Substring of the vacancy name to track")
	workers := fs.Int("workers", 0, "Number of partitions aggregated at once (default: CPU count)")
	partitions := fs.String("partitions", "", "Directory for per-year partition files (default: fresh temp dir)")
	sortInput := fs.Bool("sort-input", false, "Sort rows by year before partitioning instead of requiring sorted input")
	out := fs.String("out", "", "Directory for report files")
	quiet := fs.Bool("quiet", false, "Skip the console report and progress bar")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *input != "" {
		cfg.Input = *input
	}
	if *profession != "" {
		cfg.Profession = *profession
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *partitions != "" {
		cfg.PartitionDir = *partitions
	}
	if *sortInput {
		cfg.SortInput = true
	}
	if *out != "" {
		cfg.OutputDir = *out
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.SetLevel(cfg.Level())

	if cfg.PartitionDir == "" {
		defer os.RemoveAll(cfg.ResolvePartitionDir())
	}

	p := &engine.Pipeline{
		Source:       cfg.Input,
		Profession:   cfg.Profession,
		PartitionDir: cfg.ResolvePartitionDir(),
		SortInput:    cfg.SortInput,
		Workers:      cfg.Workers,
		Rates:        cfg.Rates,
	}

	var bar *pb.ProgressBar
	if !*quiet {
		p.OnPartitions = func(n int) { bar = pb.StartNew(n) }
		p.OnPartitionDone = func(models.PartialStats) { bar.Increment() }
	}

	r, err := p.Run(ctx)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if !*quiet {
		if err := report.Console(os.Stdout, r); err != nil {
			return err
		}
	}
	if err := report.WriteAll(cfg.OutputDir, r); err != nil {
		return err
	}
	log.Infof("reports written to %s", cfg.OutputDir)
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	input := fs.String("input", "", "CSV file with vacancies")
	filter := fs.String("filter", "", `Filter as "field: value", e.g. "key_skills: Git, SQL"`)
	sortBy := fs.String("sort", "", "Field to sort by")
	reverse := fs.Bool("reverse", false, "Sort in descending order")
	from := fs.Int("from", 0, "First row number to print (1-based)")
	to := fs.Int("to", 0, "Row number to stop before")
	columns := fs.String("columns", "", "Comma separated columns to print")
	fs.Parse(args)

	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	f, err := listing.ParseFilter(*filter)
	if err != nil {
		return err
	}
	key, err := listing.ParseSortKey(*sortBy)
	if err != nil {
		return err
	}
	fields, err := listing.ParseFields(*columns)
	if err != nil {
		return err
	}

	records, err := engine.LoadRecords(*input)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No data")
		return nil
	}

	l := &listing.Listing{
		Filter:  f,
		Sort:    key,
		Reverse: *reverse,
		Segment: listing.Segment{From: *from, To: *to},
	}
	rows, err := l.Apply(records)
	if err != nil {
		return err
	}
	return report.ListingTable(os.Stdout, rows, fields)
}
