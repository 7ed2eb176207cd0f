package models

import "time"

// Record is one parsed vacancy posting.
type Record struct {
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	KeySkills      []string `json:"key_skills,omitempty"`
	ExperienceID   string   `json:"experience_id,omitempty"`
	Premium        bool     `json:"premium,omitempty"`
	EmployerName   string   `json:"employer_name,omitempty"`
	SalaryFrom     float64  `json:"salary_from"`
	SalaryTo       float64  `json:"salary_to"`
	SalaryGross    string   `json:"salary_gross,omitempty"`
	SalaryCurrency string   `json:"salary_currency"`
	AreaName       string   `json:"area_name"`
	PublishedAt    string   `json:"published_at"`
	Year           int      `json:"year"`
}

// PartialStats is the result of aggregating a single year partition.
type PartialStats struct {
	Year             int `json:"year"`
	MeanSalary       int `json:"mean_salary"`
	Count            int `json:"count"`
	ProfessionSalary int `json:"profession_salary"`
	ProfessionCount  int `json:"profession_count"`
}

type YearPoint struct {
	Year  int `json:"year"`
	Value int `json:"value"`
}

// YearSeries is ordered by ascending year.
type YearSeries []YearPoint

// Get returns the value recorded for year.
func (s YearSeries) Get(year int) (int, bool) {
	for _, p := range s {
		if p.Year == year {
			return p.Value, true
		}
	}
	return 0, false
}

type YearStats struct {
	SalaryByYear           YearSeries `json:"salary_by_year"`
	CountByYear            YearSeries `json:"count_by_year"`
	ProfessionSalaryByYear YearSeries `json:"profession_salary_by_year"`
	ProfessionCountByYear  YearSeries `json:"profession_count_by_year"`
}

type CitySalary struct {
	City   string `json:"city"`
	Salary int    `json:"salary"`
}

type CityShare struct {
	City  string  `json:"city"`
	Share float64 `json:"share"`
}

// CityStats holds both city series, each sorted descending and capped.
type CityStats struct {
	SalaryByCity []CitySalary `json:"salary_by_city"`
	ShareByCity  []CityShare  `json:"share_by_city"`
}

// Report is everything a single pipeline run produces.
type Report struct {
	Source      string        `json:"source"`
	Profession  string        `json:"profession"`
	Partitions  int           `json:"partitions"`
	Records     int           `json:"records"`
	GeneratedAt time.Time     `json:"generated_at"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Years       YearStats     `json:"years"`
	Cities      CityStats     `json:"cities"`
}
