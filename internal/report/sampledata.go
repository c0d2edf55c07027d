package report

import (
	"fmt"
	"math/rand/v2"
)

type sampleShape struct {
	labels []string
	limit  int
}

var sampleShapes = map[Granularity]sampleShape{
	Daily:   {labels: dayLabels(7), limit: 100},
	Weekly:  {labels: []string{"Week 1", "Week 2", "Week 3", "Week 4"}, limit: 500},
	Monthly: {labels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}, limit: 2000},
}

func dayLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("Day %d", i+1)
	}
	return labels
}

// SampleData generates placeholder values for g, each in [0, limit) for its granularity.
func SampleData(g Granularity, rng *rand.Rand) []Sample {
	shape, ok := sampleShapes[g]
	if !ok {
		return nil
	}
	samples := make([]Sample, len(shape.labels))
	for i, label := range shape.labels {
		samples[i] = Sample{Label: label, Value: rng.IntN(shape.limit)}
	}
	return samples
}

// SampleLimit returns the exclusive upper bound of generated values for g.
func SampleLimit(g Granularity) int {
	return sampleShapes[g].limit
}
