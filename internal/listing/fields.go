package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"vacstat/internal/currency"
	"vacstat/internal/models"
)

var ErrUnknownField = errors.New("unknown field")

// FieldID names a displayable vacancy column.
type FieldID int

const (
	FieldName FieldID = iota
	FieldDescription
	FieldSkills
	FieldExperience
	FieldPremium
	FieldEmployer
	FieldSalary
	FieldCurrency
	FieldArea
	FieldDate
)

var fieldKeys = []string{
	FieldName:        "name",
	FieldDescription: "description",
	FieldSkills:      "key_skills",
	FieldExperience:  "experience_id",
	FieldPremium:     "premium",
	FieldEmployer:    "employer_name",
	FieldSalary:      "salary",
	FieldCurrency:    "salary_currency",
	FieldArea:        "area_name",
	FieldDate:        "published_at",
}

var fieldTitles = []string{
	FieldName:        "Name",
	FieldDescription: "Description",
	FieldSkills:      "Skills",
	FieldExperience:  "Experience",
	FieldPremium:     "Premium",
	FieldEmployer:    "Employer",
	FieldSalary:      "Salary",
	FieldCurrency:    "Currency",
	FieldArea:        "Area",
	FieldDate:        "Published",
}

// AllFields is the default column order of a listing.
var AllFields = []FieldID{FieldName, FieldDescription, FieldSkills, FieldExperience, FieldPremium, FieldEmployer, FieldSalary, FieldArea, FieldDate}

func (f FieldID) String() string {
	if int(f) < len(fieldKeys) {
		return fieldKeys[f]
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Title is the column heading.
func (f FieldID) Title() string {
	if int(f) < len(fieldTitles) {
		return fieldTitles[f]
	}
	return f.String()
}

// ParseField accepts a column key ("area_name") or its title ("Area").
func ParseField(s string) (FieldID, error) {
	s = strings.TrimSpace(s)
	for i := range fieldKeys {
		if strings.EqualFold(s, fieldKeys[i]) || strings.EqualFold(s, fieldTitles[i]) {
			return FieldID(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownField, s)
}

// ParseFields parses a comma separated column list.
func ParseFields(s string) ([]FieldID, error) {
	if strings.TrimSpace(s) == "" {
		return AllFields, nil
	}
	var out []FieldID
	for _, part := range strings.Split(s, ",") {
		f, err := ParseField(part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

var experienceNames = map[string]string{
	"noExperience": "No experience",
	"between1And3": "1 to 3 years",
	"between3And6": "3 to 6 years",
	"moreThan6":    "More than 6 years",
}

var experienceWeight = map[string]int{
	"noExperience": 0,
	"between1And3": 1,
	"between3And6": 2,
	"moreThan6":    3,
}

func experienceName(id string) string {
	if name, ok := experienceNames[id]; ok {
		return name
	}
	return id
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func grossName(g string) string {
	switch strings.ToLower(g) {
	case "true":
		return "Before tax"
	case "false":
		return "After tax"
	}
	return g
}

// FormatSalary renders "100 000 - 150 000 (Roubles) (Before tax)".
func FormatSalary(r *models.Record) string {
	spaced := func(v float64) string {
		return strings.ReplaceAll(humanize.Comma(int64(v)), ",", " ")
	}
	s := fmt.Sprintf("%s - %s (%s)", spaced(r.SalaryFrom), spaced(r.SalaryTo), currency.DisplayName(r.SalaryCurrency))
	if r.SalaryGross != "" {
		s += " (" + grossName(r.SalaryGross) + ")"
	}
	return s
}

// FormatDate turns "2022-06-21T17:33:46+0300" into "21.06.2022".
func FormatDate(published string) string {
	if len(published) < 10 {
		return published
	}
	parts := strings.Split(published[:10], "-")
	if len(parts) != 3 {
		return published
	}
	return parts[2] + "." + parts[1] + "." + parts[0]
}

const publishedLayout = "2006-01-02T15:04:05-0700"

func publishedTime(published string) (time.Time, bool) {
	t, err := time.Parse(publishedLayout, published)
	return t, err == nil
}

const maxCellLen = 100

func shorten(s string) string {
	if utf8.RuneCountInString(s) <= maxCellLen {
		return s
	}
	return string([]rune(s)[:maxCellLen]) + "..."
}

// Value is the display text of field f for r.
func Value(r *models.Record, f FieldID) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldDescription:
		return shorten(r.Description)
	case FieldSkills:
		return shorten(strings.Join(r.KeySkills, "\n"))
	case FieldExperience:
		return experienceName(r.ExperienceID)
	case FieldPremium:
		return yesNo(r.Premium)
	case FieldEmployer:
		return r.EmployerName
	case FieldSalary:
		return FormatSalary(r)
	case FieldCurrency:
		return currency.DisplayName(r.SalaryCurrency)
	case FieldArea:
		return r.AreaName
	case FieldDate:
		return FormatDate(r.PublishedAt)
	}
	return ""
}
