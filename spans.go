package qiskitruntime

import (
	"encoding/json"
	"sort"
	"time"
)

// ShotSlice is a half-open range of shots belonging to one pub.
type ShotSlice struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

// ExecutionSpan is one contiguous window of hardware time, recording which
// shots of which pubs were executed during it.
type ExecutionSpan struct {
	Start      time.Time
	Stop       time.Time
	DataSlices map[int]ShotSlice
}

type executionSpanWire struct {
	Start      ISOTime           `json:"start"`
	Stop       ISOTime           `json:"stop"`
	DataSlices map[int]ShotSlice `json:"data_slices"`
}

func (s ExecutionSpan) MarshalJSON() ([]byte, error) {
	return json.Marshal(executionSpanWire{
		Start:      ISOTime{s.Start},
		Stop:       ISOTime{s.Stop},
		DataSlices: s.DataSlices,
	})
}

func (s *ExecutionSpan) UnmarshalJSON(raw []byte) error {
	var wire executionSpanWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	s.Start = wire.Start.Time
	s.Stop = wire.Stop.Time
	s.DataSlices = wire.DataSlices
	return nil
}

// Duration returns the wall time covered by the span.
func (s ExecutionSpan) Duration() time.Duration { return s.Stop.Sub(s.Start) }

// Size returns the total number of shots executed during the span.
func (s ExecutionSpan) Size() int {
	size := 0
	for _, sl := range s.DataSlices {
		size += sl.Stop - sl.Start
	}
	return size
}

// PubIdxs returns the indexes of the pubs the span touches, in order.
func (s ExecutionSpan) PubIdxs() []int {
	idxs := make([]int, 0, len(s.DataSlices))
	for idx := range s.DataSlices {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	return idxs
}

// Contains reports whether the span executed shots of the given pub.
func (s ExecutionSpan) Contains(pubIdx int) bool {
	_, ok := s.DataSlices[pubIdx]
	return ok
}

// FilterByPub restricts the span to the given pubs.
func (s ExecutionSpan) FilterByPub(pubIdxs ...int) ExecutionSpan {
	slices := make(map[int]ShotSlice, len(pubIdxs))
	for _, idx := range pubIdxs {
		if sl, ok := s.DataSlices[idx]; ok {
			slices[idx] = sl
		}
	}
	return ExecutionSpan{Start: s.Start, Stop: s.Stop, DataSlices: slices}
}

// less orders spans by start time, breaking ties by stop time.
func (s ExecutionSpan) less(other ExecutionSpan) bool {
	if !s.Start.Equal(other.Start) {
		return s.Start.Before(other.Start)
	}
	return s.Stop.Before(other.Stop)
}

// ExecutionSpans is a collection of execution spans, typically all the spans
// of one job.
type ExecutionSpans []ExecutionSpan

// Sorted returns the spans ordered by start time.
func (spans ExecutionSpans) Sorted() ExecutionSpans {
	out := append(ExecutionSpans(nil), spans...)
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

// Start returns the earliest start among the spans.
func (spans ExecutionSpans) Start() time.Time {
	var start time.Time
	for i, s := range spans {
		if i == 0 || s.Start.Before(start) {
			start = s.Start
		}
	}
	return start
}

// Stop returns the latest stop among the spans.
func (spans ExecutionSpans) Stop() time.Time {
	var stop time.Time
	for _, s := range spans {
		if s.Stop.After(stop) {
			stop = s.Stop
		}
	}
	return stop
}

// Duration returns the envelope duration from first start to last stop.
func (spans ExecutionSpans) Duration() time.Duration {
	if len(spans) == 0 {
		return 0
	}
	return spans.Stop().Sub(spans.Start())
}

// Size returns the total shots executed across all spans.
func (spans ExecutionSpans) Size() int {
	size := 0
	for _, s := range spans {
		size += s.Size()
	}
	return size
}

// PubIdxs returns the union of pub indexes across all spans, in order.
func (spans ExecutionSpans) PubIdxs() []int {
	seen := make(map[int]bool)
	for _, s := range spans {
		for idx := range s.DataSlices {
			seen[idx] = true
		}
	}
	idxs := make([]int, 0, len(seen))
	for idx := range seen {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	return idxs
}

// FilterByPub restricts every span to the given pubs, dropping spans left
// empty.
func (spans ExecutionSpans) FilterByPub(pubIdxs ...int) ExecutionSpans {
	out := make(ExecutionSpans, 0, len(spans))
	for _, s := range spans {
		filtered := s.FilterByPub(pubIdxs...)
		if len(filtered.DataSlices) > 0 {
			out = append(out, filtered)
		}
	}
	return out
}
