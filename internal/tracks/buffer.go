// Package tracks keeps the recent telemetry of each vehicle in memory.
package tracks

import (
	"sort"
	"sync"
	"time"

	"github.com/yeonjoon13/moving-obstacle-tracker/internal/model"
)

// Buffer holds per-vehicle samples in time order. Safe for concurrent use.
type Buffer struct {
	mu      sync.RWMutex
	samples map[string][]model.TelemetrySample
}

func NewBuffer() *Buffer {
	return &Buffer{samples: make(map[string][]model.TelemetrySample)}
}

// Add inserts s in time order. A sample with the same timestamp as a
// buffered one replaces it.
func (b *Buffer) Add(s model.TelemetrySample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.samples[s.Vehicle]
	n := len(list)
	if n == 0 || list[n-1].Timestamp.Before(s.Timestamp) {
		b.samples[s.Vehicle] = append(list, s)
		return
	}

	i := sort.Search(n, func(k int) bool { return !list[k].Timestamp.Before(s.Timestamp) })
	if i < n && list[i].Timestamp.Equal(s.Timestamp) {
		list[i] = s
		return
	}
	list = append(list, model.TelemetrySample{})
	copy(list[i+1:], list[i:])
	list[i] = s
	b.samples[s.Vehicle] = list
}

// Window returns a copy of the vehicle's samples at or after since.
func (b *Buffer) Window(vehicle string, since time.Time) []model.TelemetrySample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	list := b.samples[vehicle]
	i := sort.Search(len(list), func(k int) bool { return !list[k].Timestamp.Before(since) })
	return append([]model.TelemetrySample(nil), list[i:]...)
}

// Prune drops samples older than cutoff and forgets vehicles left with
// none. It returns the number of samples dropped.
func (b *Buffer) Prune(cutoff time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for vehicle, list := range b.samples {
		list := list // per-iteration copy (go 1.21 loop semantics)
		i := sort.Search(len(list), func(k int) bool { return !list[k].Timestamp.Before(cutoff) })
		dropped += i
		if i == len(list) {
			delete(b.samples, vehicle)
			continue
		}
		if i > 0 {
			b.samples[vehicle] = append([]model.TelemetrySample(nil), list[i:]...)
		}
	}
	return dropped
}

// Vehicles returns the buffered vehicle ids, sorted.
func (b *Buffer) Vehicles() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.samples))
	for v := range b.samples {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Latest returns the newest sample of every vehicle.
func (b *Buffer) Latest() []model.TelemetrySample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.TelemetrySample, 0, len(b.samples))
	for _, list := range b.samples {
		out = append(out, list[len(list)-1])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vehicle < out[j].Vehicle })
	return out
}
