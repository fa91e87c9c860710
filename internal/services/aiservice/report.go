package aiservice

import "sort"

// DataQualityReport is the admin data-quality payload.
type DataQualityReport struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
	Data    *DataQualityData `json:"data"`
}

type DataQualityData struct {
	Latest            QualitySnapshot              `json:"latest"`
	Timeseries        QualityTimeseries            `json:"timeseries"`
	FieldCompleteness map[string]FieldCompleteness `json:"field_completeness"`
}

type QualitySnapshot struct {
	Date              string             `json:"date"`
	Timestamp         string             `json:"timestamp"`
	OverallQuality    float64            `json:"overall_quality"`
	TotalRecords      int                `json:"total_records"`
	TotalFields       int                `json:"total_fields"`
	FieldCompleteness map[string]float64 `json:"field_completeness,omitempty"`
}

type QualityTimeseries struct {
	Dates          []string  `json:"dates"`
	OverallQuality []float64 `json:"overall_quality"`
	TotalRecords   []int     `json:"total_records"`
	TotalFields    []int     `json:"total_fields"`
}

type FieldCompleteness struct {
	History    []float64 `json:"history"`
	Latest     float64   `json:"latest"`
	MissingPct float64   `json:"missing_pct"`
}

// Trend is the change in overall quality between the last two snapshots.
type Trend struct {
	Current  float64
	Previous float64
	Change   float64
}

// QualityTrend returns the latest change in overall quality, or false when
// fewer than two snapshots exist.
func (d *DataQualityData) QualityTrend() (Trend, bool) {
	if d == nil {
		return Trend{}, false
	}
	series := d.Timeseries.OverallQuality
	if len(series) < 2 {
		return Trend{}, false
	}
	current := series[len(series)-1]
	previous := series[len(series)-2]
	return Trend{Current: current, Previous: previous, Change: current - previous}, true
}

// FieldNames returns field names ordered by ascending completeness so the
// weakest fields come first, ties broken by name.
func (d *DataQualityData) FieldNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.FieldCompleteness))
	for name := range d.FieldCompleteness {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := d.FieldCompleteness[names[i]].Latest, d.FieldCompleteness[names[j]].Latest
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// QualityGrade buckets an overall quality percentage.
func QualityGrade(quality float64) string {
	switch {
	case quality >= 90:
		return "excellent"
	case quality >= 70:
		return "good"
	case quality >= 50:
		return "fair"
	default:
		return "critical"
	}
}
