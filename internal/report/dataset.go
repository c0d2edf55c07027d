// Package report holds the progress report data model and lays it out as a surface.
package report

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Granularity is the time bucket of a progress report.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Granularities lists every supported granularity in display order.
var Granularities = []Granularity{Daily, Weekly, Monthly}

// ParseGranularity accepts the lower-case granularity names.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case Daily, Weekly, Monthly:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

func (g Granularity) String() string {
	return string(g)
}

// Title is the upper-case name used in chart titles.
func (g Granularity) Title() string {
	return strings.ToUpper(string(g))
}

// Sample is one labelled value of a report.
type Sample struct {
	Label string `json:"label" validate:"required"`
	Value int    `json:"value"`
}

// Source provides the samples of a granularity.
type Source interface {
	Samples(ctx context.Context, g Granularity) ([]Sample, error)
}

// Dataset is the validated sample list of one report.
type Dataset struct {
	Granularity Granularity
	Samples     []Sample
}

// NewDataset validates that every label is present and unique.
func NewDataset(g Granularity, samples []Sample) (*Dataset, error) {
	seen := make(map[string]struct{}, len(samples))
	for i, s := range samples {
		if s.Label == "" {
			return nil, fmt.Errorf("sample %d has no label", i)
		}
		if _, ok := seen[s.Label]; ok {
			return nil, fmt.Errorf("duplicate label %q", s.Label)
		}
		seen[s.Label] = struct{}{}
	}
	return &Dataset{Granularity: g, Samples: append([]Sample(nil), samples...)}, nil
}

// Load reads and validates the dataset of g from src.
func Load(ctx context.Context, src Source, g Granularity) (*Dataset, error) {
	samples, err := src.Samples(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s samples: %w", g, err)
	}
	return NewDataset(g, samples)
}

// Total sums all values.
func (d *Dataset) Total() int {
	total := 0
	for _, s := range d.Samples {
		total += s.Value
	}
	return total
}

// Average is the mean value rounded half up. An empty dataset averages to zero.
func (d *Dataset) Average() int {
	if len(d.Samples) == 0 {
		return 0
	}
	return int(math.Floor(float64(d.Total())/float64(len(d.Samples)) + 0.5))
}

// Entries is the number of samples.
func (d *Dataset) Entries() int {
	return len(d.Samples)
}

// Labels returns the sample labels in order.
func (d *Dataset) Labels() []string {
	labels := make([]string, len(d.Samples))
	for i, s := range d.Samples {
		labels[i] = s.Label
	}
	return labels
}

// Max returns the largest value, or zero for an empty dataset.
func (d *Dataset) Max() int {
	m := 0
	for _, s := range d.Samples {
		m = max(m, s.Value)
	}
	return m
}
