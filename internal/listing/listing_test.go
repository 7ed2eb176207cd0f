package listing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacstat/internal/currency"
	"vacstat/internal/models"
)

func vacancy(name, exp string, from, to float64, published string, skills ...string) models.Record {
	return models.Record{
		Name:           name,
		Description:    "Вам предстоит: :",
		KeySkills:      skills,
		ExperienceID:   exp,
		Premium:        true,
		EmployerName:   "URFU",
		SalaryFrom:     from,
		SalaryTo:       to,
		SalaryGross:    "True",
		SalaryCurrency: "RUR",
		AreaName:       "Ekat",
		PublishedAt:    published,
	}
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Record.Name
	}
	return out
}

func TestRowCells(t *testing.T) {
	rec := vacancy("Программист", "noExperience", 100, 200, "2022-06-21T17:33:46+0300", "Программирование")
	rows, err := (&Listing{}).Apply([]models.Record{rec})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{
		"1", "Программист", "Вам предстоит: :", "Программирование", "No experience", "Yes",
		"URFU", "100 - 200 (Roubles) (Before tax)", "Ekat", "21.06.2022",
	}, rows[0].Cells(AllFields))
}

func TestSortByDate(t *testing.T) {
	records := []models.Record{
		vacancy("new", "noExperience", 1, 2, "2023-06-21T17:33:46+0300"),
		vacancy("old", "noExperience", 1, 2, "2022-06-21T17:33:46+0300"),
	}
	key, err := ParseSortKey("published_at")
	require.NoError(t, err)
	assert.Equal(t, SortKey{Kind: ByDate}, key)

	rows, err := (&Listing{Sort: key}).Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new"}, names(rows))
	assert.Equal(t, "new", records[0].Name, "input left untouched")
}

func TestSortByExperience(t *testing.T) {
	records := []models.Record{
		vacancy("senior", "moreThan6", 1, 2, "2023-06-21T17:33:46+0300"),
		vacancy("middle", "between3And6", 1, 2, "2023-06-21T17:33:46+0300"),
		vacancy("junior", "noExperience", 1, 2, "2023-06-21T17:33:46+0300"),
	}
	rows, err := (&Listing{Sort: SortKey{Kind: ByExperience}}).Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"junior", "middle", "senior"}, names(rows))
}

func TestSortBySalaryAndReverse(t *testing.T) {
	records := []models.Record{
		vacancy("rich", "noExperience", 100000, 150000, "2023-06-21T17:33:46+0300"),
		vacancy("poor", "noExperience", 100, 200, "2022-06-21T17:33:46+0300"),
		{Name: "dollars", SalaryFrom: 100, SalaryTo: 200, SalaryCurrency: "USD"},
	}
	rows, err := (&Listing{Sort: SortKey{Kind: BySalary}}).Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"poor", "dollars", "rich"}, names(rows))

	rows, err = (&Listing{Sort: SortKey{Kind: BySalary}, Reverse: true}).Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"rich", "dollars", "poor"}, names(rows))
	assert.Equal(t, "100 000 - 150 000 (Roubles) (Before tax)", Value(rows[0].Record, FieldSalary))
}

func TestSortBySalaryUnknownCurrency(t *testing.T) {
	records := []models.Record{{Name: "x", SalaryCurrency: "XYZ"}}
	_, err := (&Listing{Sort: SortKey{Kind: BySalary}}).Apply(records)
	assert.True(t, errors.Is(err, currency.ErrUnknownCurrency))
}

func TestSortBySkillCountIsStable(t *testing.T) {
	records := []models.Record{
		vacancy("three", "noExperience", 1, 2, "", "a", "b", "c"),
		vacancy("one-a", "noExperience", 1, 2, "", "a"),
		vacancy("one-b", "noExperience", 1, 2, "", "b"),
	}
	rows, err := (&Listing{Sort: SortKey{Kind: BySkillCount}}).Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"one-a", "one-b", "three"}, names(rows))
}

func TestSortByOtherField(t *testing.T) {
	records := []models.Record{
		{Name: "b", AreaName: "Омск"},
		{Name: "a", AreaName: "Казань"},
	}
	key, err := ParseSortKey("area_name")
	require.NoError(t, err)
	assert.Equal(t, SortKey{Kind: ByField, Field: FieldArea}, key)

	rows, err := (&Listing{Sort: key}).Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(rows))
}

func TestFilter(t *testing.T) {
	records := []models.Record{
		vacancy("Программист", "noExperience", 100000, 150000, "2023-06-21T17:33:46+0300", "Go", "SQL"),
		vacancy("Аналитик", "between1And3", 100, 200, "2022-06-21T17:33:46+0300", "SQL"),
	}

	cases := []struct {
		filter string
		want   []string
	}{
		{"name: Программист", []string{"Программист"}},
		{"key_skills: SQL", []string{"Программист", "Аналитик"}},
		{"key_skills: Go, SQL", []string{"Программист"}},
		{"salary: 150", []string{"Аналитик"}},
		{"Experience: 1 to 3 years", []string{"Аналитик"}},
		{"published_at: 21.06.2022", []string{"Аналитик"}},
		{"salary_currency: Roubles", []string{"Программист", "Аналитик"}},
		{"premium: No", nil},
	}
	for _, tc := range cases {
		f, err := ParseFilter(tc.filter)
		require.NoError(t, err, tc.filter)
		rows, err := (&Listing{Filter: f}).Apply(records)
		require.NoError(t, err)
		if tc.want == nil {
			assert.Empty(t, rows, tc.filter)
			continue
		}
		assert.Equal(t, tc.want, names(rows), tc.filter)
	}
}

func TestParseFilterErrors(t *testing.T) {
	f, err := ParseFilter("")
	assert.NoError(t, err)
	assert.Nil(t, f)

	_, err = ParseFilter("name Программист")
	assert.True(t, errors.Is(err, ErrBadFilter))

	_, err = ParseFilter("colour: red")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestSegment(t *testing.T) {
	var records []models.Record
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		records = append(records, models.Record{Name: n})
	}

	rows, err := (&Listing{Segment: Segment{From: 2, To: 4}}).Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, names(rows))
	assert.Equal(t, 2, rows[0].Number)

	rows, err = (&Listing{Segment: Segment{From: 4}}).Apply(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "e"}, names(rows))
}

func TestShorten(t *testing.T) {
	long := make([]rune, 120)
	for i := range long {
		long[i] = 'ж'
	}
	got := shorten(string(long))
	assert.Equal(t, string(long[:100])+"...", got)
	assert.Equal(t, "short", shorten("short"))
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields("Name, salary,area_name")
	require.NoError(t, err)
	assert.Equal(t, []FieldID{FieldName, FieldSalary, FieldArea}, fields)

	fields, err = ParseFields("")
	require.NoError(t, err)
	assert.Equal(t, AllFields, fields)
}
