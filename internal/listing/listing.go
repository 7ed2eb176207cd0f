// Package listing filters, sorts and windows vacancy records for tabular
// display.
package listing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"vacstat/internal/currency"
	"vacstat/internal/models"
)

var ErrBadFilter = errors.New("filter must look like \"field: value\"")

// SortKind enumerates the supported orderings.
type SortKind int

const (
	Unsorted SortKind = iota
	ByDate
	BySkillCount
	BySalary
	ByExperience
	ByField
)

// SortKey selects an ordering. Field is only read when Kind is ByField.
type SortKey struct {
	Kind  SortKind
	Field FieldID
}

// ParseSortKey maps a field name onto a sort key. The empty string leaves the
// input order unchanged.
func ParseSortKey(s string) (SortKey, error) {
	if strings.TrimSpace(s) == "" {
		return SortKey{Kind: Unsorted}, nil
	}
	f, err := ParseField(s)
	if err != nil {
		return SortKey{}, err
	}
	switch f {
	case FieldDate:
		return SortKey{Kind: ByDate}, nil
	case FieldSkills:
		return SortKey{Kind: BySkillCount}, nil
	case FieldSalary:
		return SortKey{Kind: BySalary}, nil
	case FieldExperience:
		return SortKey{Kind: ByExperience}, nil
	default:
		return SortKey{Kind: ByField, Field: f}, nil
	}
}

// sortValue is a precomputed comparison key for one record.
type sortValue struct {
	num float64
	str string
}

func (k SortKey) value(r *models.Record, rates currency.Table) (sortValue, error) {
	switch k.Kind {
	case Unsorted:
		return sortValue{}, nil
	case ByDate:
		if t, ok := publishedTime(r.PublishedAt); ok {
			return sortValue{num: float64(t.Unix())}, nil
		}
		return sortValue{str: r.PublishedAt}, nil
	case BySkillCount:
		return sortValue{num: float64(len(r.KeySkills))}, nil
	case BySalary:
		v, err := rates.Normalize(r.SalaryFrom, r.SalaryTo, r.SalaryCurrency)
		return sortValue{num: v}, err
	case ByExperience:
		return sortValue{num: float64(experienceWeight[r.ExperienceID])}, nil
	case ByField:
		if k.Field == FieldPremium {
			if r.Premium {
				return sortValue{num: 1}, nil
			}
			return sortValue{}, nil
		}
		return sortValue{str: Value(r, k.Field)}, nil
	}
	return sortValue{}, fmt.Errorf("unsupported sort kind %d", int(k.Kind))
}

func (a sortValue) less(b sortValue) bool {
	if a.num != b.num {
		return a.num < b.num
	}
	return a.str < b.str
}

// Filter keeps records whose Field matches Value.
type Filter struct {
	Field FieldID
	Value string
}

// ParseFilter reads "field: value". The empty string means no filter.
func ParseFilter(s string) (*Filter, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	name, value, ok := strings.Cut(s, ": ")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadFilter, s)
	}
	f, err := ParseField(name)
	if err != nil {
		return nil, err
	}
	return &Filter{Field: f, Value: strings.TrimSpace(value)}, nil
}

func (f *Filter) Match(r *models.Record) bool {
	switch f.Field {
	case FieldSkills:
		have := make(map[string]bool, len(r.KeySkills))
		for _, s := range r.KeySkills {
			have[s] = true
		}
		for _, want := range strings.Split(f.Value, ", ") {
			if !have[want] {
				return false
			}
		}
		return true
	case FieldSalary:
		v, err := strconv.ParseFloat(f.Value, 64)
		return err == nil && r.SalaryFrom <= v && v <= r.SalaryTo
	case FieldExperience:
		return f.Value == r.ExperienceID || f.Value == experienceName(r.ExperienceID)
	case FieldPremium:
		return strings.EqualFold(f.Value, yesNo(r.Premium)) || strings.EqualFold(f.Value, strconv.FormatBool(r.Premium))
	case FieldCurrency:
		return f.Value == r.SalaryCurrency || f.Value == currency.DisplayName(r.SalaryCurrency)
	case FieldDescription:
		return f.Value == r.Description
	default:
		return f.Value == Value(r, f.Field)
	}
}

// Segment is a 1-based half-open window [From, To) over numbered rows.
// Zero bounds are open.
type Segment struct {
	From int
	To   int
}

func (s Segment) contains(n int) bool {
	if s.From > 0 && n < s.From {
		return false
	}
	if s.To > 0 && n >= s.To {
		return false
	}
	return true
}

// Row is one numbered line of a listing.
type Row struct {
	Number int
	Record *models.Record
}

// Cells renders the requested columns, prefixed by the row number.
func (r Row) Cells(fields []FieldID) []string {
	out := make([]string, 0, len(fields)+1)
	out = append(out, strconv.Itoa(r.Number))
	for _, f := range fields {
		out = append(out, Value(r.Record, f))
	}
	return out
}

type Listing struct {
	Filter  *Filter
	Sort    SortKey
	Reverse bool
	Segment Segment
	Rates   currency.Table
}

// Apply sorts, then filters, then numbers and windows the records. The input
// slice is not modified.
func (l *Listing) Apply(records []models.Record) ([]Row, error) {
	rates := l.Rates
	if rates == nil {
		rates = currency.DefaultRates
	}

	type keyed struct {
		rec *models.Record
		key sortValue
	}
	items := make([]keyed, len(records))
	for i := range records {
		key, err := l.Sort.value(&records[i], rates)
		if err != nil {
			return nil, fmt.Errorf("vacancy %q: %w", records[i].Name, err)
		}
		items[i] = keyed{rec: &records[i], key: key}
	}

	if l.Sort.Kind != Unsorted {
		sort.SliceStable(items, func(i, j int) bool {
			if l.Reverse {
				return items[j].key.less(items[i].key)
			}
			return items[i].key.less(items[j].key)
		})
	}

	var rows []Row
	n := 0
	for _, it := range items {
		if l.Filter != nil && !l.Filter.Match(it.rec) {
			continue
		}
		n++
		if l.Segment.contains(n) {
			rows = append(rows, Row{Number: n, Record: it.rec})
		}
	}
	return rows, nil
}
