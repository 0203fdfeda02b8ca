package domain

import "strconv"

const kgToLb = 2.2046226218

// ConvertWeight converts a weight value between "kg" and "lb".
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertWeight(v float64, from, to string) float64 {
	if from == to {
		return v
	}
	if from == "kg" && to == "lb" {
		return v * kgToLb
	}
	if from == "lb" && to == "kg" {
		return v / kgToLb
	}
	return v
}

// ConvertWeightMetric returns m with its value expressed in unit. Non-weight
// metrics and unparsable values are returned unchanged.
func ConvertWeightMetric(m Metric, unit string) Metric {
	if m.Kind != KindWeight || m.Unit == unit || (unit != "kg" && unit != "lb") {
		return m
	}
	v, err := strconv.ParseFloat(m.Value, 64)
	if err != nil {
		return m
	}
	m.Value = strconv.FormatFloat(ConvertWeight(v, m.Unit, unit), 'f', 1, 64)
	m.Unit = unit
	return m
}
