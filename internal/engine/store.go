package engine

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"vacstat/internal/currency"
	"vacstat/internal/models"
)

var salarySchema = arrow.NewSchema([]arrow.Field{
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "area_name", Type: arrow.BinaryTypes.String},
	{Name: "year", Type: arrow.PrimitiveTypes.Int32},
	{Name: "salary_rub", Type: arrow.PrimitiveTypes.Float64},
}, nil)

const (
	colName = iota
	colArea
	colYear
	colSalary
)

// ColumnStore keeps the aggregation inputs of a record set in columnar form,
// with every salary already converted to roubles.
type ColumnStore struct {
	rec arrow.Record

	Names    *array.String
	Areas    *array.String
	Years    *array.Int32
	Salaries *array.Float64
}

// BuildColumnStore normalizes each record's salary and packs the columns the
// aggregators read. It fails on the first unknown currency code.
func BuildColumnStore(records []models.Record, rates currency.Table) (*ColumnStore, error) {
	b := array.NewRecordBuilder(memory.NewGoAllocator(), salarySchema)
	defer b.Release()

	names := b.Field(colName).(*array.StringBuilder)
	areas := b.Field(colArea).(*array.StringBuilder)
	years := b.Field(colYear).(*array.Int32Builder)
	salaries := b.Field(colSalary).(*array.Float64Builder)

	names.Reserve(len(records))
	areas.Reserve(len(records))
	years.Reserve(len(records))
	salaries.Reserve(len(records))

	for i := range records {
		r := &records[i]
		salary, err := rates.Normalize(r.SalaryFrom, r.SalaryTo, r.SalaryCurrency)
		if err != nil {
			return nil, fmt.Errorf("vacancy %q: %w", r.Name, err)
		}
		names.Append(r.Name)
		areas.Append(r.AreaName)
		years.Append(int32(r.Year))
		salaries.Append(salary)
	}

	rec := b.NewRecord()
	return &ColumnStore{
		rec:      rec,
		Names:    rec.Column(colName).(*array.String),
		Areas:    rec.Column(colArea).(*array.String),
		Years:    rec.Column(colYear).(*array.Int32),
		Salaries: rec.Column(colSalary).(*array.Float64),
	}, nil
}

// Len is the number of rows.
func (cs *ColumnStore) Len() int {
	return int(cs.rec.NumRows())
}

// Release frees the underlying buffers.
func (cs *ColumnStore) Release() {
	cs.rec.Release()
}
