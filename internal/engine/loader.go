package engine

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/gommon/log"

	"vacstat/internal/models"
)

var (
	// ErrMissingColumn means the header lacks one of RequiredColumns.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyInput means the file has no header row.
	ErrEmptyInput = errors.New("input has no header")
	// ErrBadYear means a date or partition file name has no leading YYYY.
	ErrBadYear = errors.New("cannot read year")
)

// RequiredColumns must all be present in the header of every input file.
var RequiredColumns = []string{"name", "salary_from", "salary_to", "salary_currency", "area_name", "published_at"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// --- 1. SMALL PARSERS ---

// parseYear reads the leading YYYY of "2007-12-03T17:34:36+0300".
func parseYear(s string) (int, error) {
	if len(s) < 4 {
		return 0, fmt.Errorf("%w from %q", ErrBadYear, s)
	}
	year := 0
	for i := 0; i < 4; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w from %q", ErrBadYear, s)
		}
		year = year*10 + int(c-'0')
	}
	return year, nil
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true")
}

// stripHTML drops markup and collapses whitespace runs.
func stripHTML(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func splitSkills(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.Split(s, "\n")
}

// --- 2. HEADER ---

type header struct {
	names []string
	index map[string]int
}

func newHeader(row []string) (*header, error) {
	h := &header{names: make([]string, len(row)), index: make(map[string]int, len(row))}
	for i, name := range row {
		if i == 0 {
			name = string(bytes.TrimPrefix([]byte(name), utf8BOM))
		}
		name = strings.TrimSpace(name)
		h.names[i] = name
		h.index[name] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := h.index[col]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}
	return h, nil
}

func (h *header) field(row []string, name string) string {
	if i, ok := h.index[name]; ok && i < len(row) {
		return row[i]
	}
	return ""
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// --- 3. RECORD READER ---

// LoadRecords parses a vacancy file into records, dropping malformed rows.
func LoadRecords(path string) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadRecords is LoadRecords over an arbitrary reader. A row is malformed when
// its field count differs from the header, any field is empty, or a salary
// bound is not a number.
func ReadRecords(r io.Reader) ([]models.Record, error) {
	start := time.Now()
	cr := newCSVReader(r)

	first, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h, err := newHeader(first)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	dropped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec, ok := h.record(row)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	log.Debugf("parsed %d records (%d malformed rows dropped) in %v", len(records), dropped, time.Since(start))
	return records, nil
}

func (h *header) record(row []string) (models.Record, bool) {
	if len(row) != len(h.names) {
		return models.Record{}, false
	}
	for _, v := range row {
		if v == "" {
			return models.Record{}, false
		}
	}

	from, err := strconv.ParseFloat(h.field(row, "salary_from"), 64)
	if err != nil {
		return models.Record{}, false
	}
	to, err := strconv.ParseFloat(h.field(row, "salary_to"), 64)
	if err != nil {
		return models.Record{}, false
	}
	published := h.field(row, "published_at")
	year, err := parseYear(published)
	if err != nil {
		return models.Record{}, false
	}

	rec := models.Record{
		Name:           stripHTML(h.field(row, "name")),
		SalaryFrom:     from,
		SalaryTo:       to,
		SalaryCurrency: h.field(row, "salary_currency"),
		AreaName:       h.field(row, "area_name"),
		PublishedAt:    published,
		Year:           year,
		Description:    stripHTML(h.field(row, "description")),
		ExperienceID:   h.field(row, "experience_id"),
		Premium:        parseBool(h.field(row, "premium")),
		EmployerName:   h.field(row, "employer_name"),
		SalaryGross:    h.field(row, "salary_gross"),
	}
	if skills := h.field(row, "key_skills"); skills != "" {
		rec.KeySkills = splitSkills(skills)
	}
	return rec, true
}
