package domain

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MetricKind enumerates the health quantities that can be recorded.
type MetricKind string

const (
	KindWeight        MetricKind = "weight"
	KindSteps         MetricKind = "steps"
	KindHeartRate     MetricKind = "heart_rate"
	KindSleepHours    MetricKind = "sleep_hours"
	KindWaterML       MetricKind = "water_ml"
	KindHeight        MetricKind = "height"
	KindBloodPressure MetricKind = "blood_pressure"
	KindBloodSugar    MetricKind = "blood_sugar"
)

var metricKinds = []MetricKind{
	KindWeight, KindSteps, KindHeartRate, KindSleepHours,
	KindWaterML, KindHeight, KindBloodPressure, KindBloodSugar,
}

var defaultUnits = map[MetricKind]string{
	KindWeight:        "kg",
	KindSteps:         "steps",
	KindHeartRate:     "bpm",
	KindSleepHours:    "hours",
	KindWaterML:       "ml",
	KindHeight:        "cm",
	KindBloodPressure: "mmHg",
	KindBloodSugar:    "mg/dL",
}

var bloodPressureRe = regexp.MustCompile(`^\d{2,3}/\d{2,3}$`)

// MetricKinds returns every known metric kind in display order.
func MetricKinds() []MetricKind {
	out := make([]MetricKind, len(metricKinds))
	copy(out, metricKinds)
	return out
}

// ParseMetricKind validates s as a metric kind.
func ParseMetricKind(s string) (MetricKind, error) {
	k := MetricKind(strings.TrimSpace(s))
	if _, ok := defaultUnits[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Valid reports whether k is a known kind.
func (k MetricKind) Valid() bool {
	_, ok := defaultUnits[k]
	return ok
}

// DefaultUnit returns the unit a kind is recorded in when none is given.
func (k MetricKind) DefaultUnit() string {
	return defaultUnits[k]
}

// Metric is one observation of a health quantity. Value is a string so that
// composite readings such as blood pressure ("120/80") fit the same shape.
//
// Records confirmed by the server carry a permanent ID and Synced=true.
// Records admitted to the local pending queue carry a TempID and Synced=false
// until a drain replays them.
type Metric struct {
	ID           string     `json:"id,omitempty"`
	UserID       string     `json:"userId"`
	Kind         MetricKind `json:"metricType"`
	Value        string     `json:"value"`
	Unit         string     `json:"unit"`
	Date         string     `json:"date"`
	CreatedAt    time.Time  `json:"createdAt"`
	ImportedFrom string     `json:"importedFrom,omitempty"`
	TempID       string     `json:"tempId,omitempty"`
	Synced       bool       `json:"synced"`
}

// NormalizeMetric validates a write request and fills in the default unit.
func NormalizeMetric(userID string, kind MetricKind, value, unit string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: owner is required", ErrInvalidMetric)
	}
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if err := ValidateMetricValue(kind, value); err != nil {
		return "", err
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = kind.DefaultUnit()
	}
	return unit, nil
}

// ValidateMetricValue checks that value is well formed for kind.
func ValidateMetricValue(kind MetricKind, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: value is required", ErrInvalidMetric)
	}
	if kind == KindBloodPressure {
		if !bloodPressureRe.MatchString(value) {
			return fmt.Errorf("%w: blood pressure must look like 120/80", ErrInvalidMetric)
		}
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: value %q is not a number", ErrInvalidMetric, value)
	}
	if v <= 0 {
		return fmt.Errorf("%w: value must be > 0", ErrInvalidMetric)
	}
	return nil
}

// MetricFilter narrows a metric listing. Zero values mean "no constraint".
type MetricFilter struct {
	UserID    string
	Kind      MetricKind
	Since     string // inclusive calendar day
	Limit     int
	Ascending bool // oldest day first; default is newest first
}

// MetricRepository is the port for server-side metric persistence.
type MetricRepository interface {
	AddMetric(ctx context.Context, m Metric) (Metric, error)
	AddMetrics(ctx context.Context, ms []Metric) ([]Metric, error)
	ListMetrics(ctx context.Context, f MetricFilter) ([]Metric, error)
}
