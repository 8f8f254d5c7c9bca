// Package telemetry densifies recorded vehicle telemetry so that collision
// checks see the vehicle between its recorded samples.
package telemetry

import (
	"sort"
	"time"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
)

const (
	DefaultStep   = 100 * time.Millisecond
	DefaultMaxGap = 10 * time.Second
)

// Config controls densification.
type Config struct {
	// Step is the spacing of inserted samples.
	Step time.Duration
	// MaxGap is the longest gap interpolated across. Longer gaps are left
	// alone: the vehicle's path between them is unknown.
	MaxGap time.Duration
}

// DefaultConfig returns the densification used by the scoring path.
func DefaultConfig() Config {
	return Config{Step: DefaultStep, MaxGap: DefaultMaxGap}
}

// Interpolate returns samples with linearly interpolated points inserted
// every cfg.Step between consecutive samples. Input must be time ordered;
// every input sample appears in the output.
func Interpolate(samples []model.TelemetrySample, cfg Config) []model.TelemetrySample {
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if len(samples) < 2 {
		return append([]model.TelemetrySample(nil), samples...)
	}

	out := make([]model.TelemetrySample, 0, len(samples))
	for i := 0; i < len(samples)-1; i++ {
		from, to := samples[i], samples[i+1]
		out = append(out, from)

		gap := to.Timestamp.Sub(from.Timestamp)
		if gap <= cfg.Step || (cfg.MaxGap > 0 && gap > cfg.MaxGap) {
			continue
		}
		for t := cfg.Step; t < gap; t += cfg.Step {
			s := Lerp(from, to, float64(t)/float64(gap))
			s.Timestamp = from.Timestamp.Add(t)
			out = append(out, s)
		}
	}
	return append(out, samples[len(samples)-1])
}

// Lerp returns the sample a fraction ratio of the way from a to b.
func Lerp(a, b model.TelemetrySample, ratio float64) model.TelemetrySample {
	gap := b.Timestamp.Sub(a.Timestamp)
	return model.TelemetrySample{
		Vehicle:   a.Vehicle,
		Timestamp: a.Timestamp.Add(time.Duration(ratio * float64(gap))),
		Position: model.Position{
			Latitude:    a.Latitude + ratio*(b.Latitude-a.Latitude),
			Longitude:   a.Longitude + ratio*(b.Longitude-a.Longitude),
			AltitudeMSL: a.AltitudeMSL + ratio*(b.AltitudeMSL-a.AltitudeMSL),
		},
		Heading: a.Heading,
	}
}

// SortByTime orders samples by timestamp, oldest first.
func SortByTime(samples []model.TelemetrySample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
}

// Windows splits a time ordered track into flight windows wherever two
// consecutive samples are more than maxGap apart.
func Windows(samples []model.TelemetrySample, maxGap time.Duration) [][2]time.Time {
	if len(samples) == 0 {
		return nil
	}
	var windows [][2]time.Time
	start := samples[0].Timestamp
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp.Sub(samples[i-1].Timestamp) > maxGap {
			windows = append(windows, [2]time.Time{start, samples[i-1].Timestamp})
			start = samples[i].Timestamp
		}
	}
	return append(windows, [2]time.Time{start, samples[len(samples)-1].Timestamp})
}
