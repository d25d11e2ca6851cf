package query

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gstlog-visualizer/backend/internal/models"
)

// ErrInvalidInterval is returned for interval strings that do not match the
// accepted grammar.
var ErrInvalidInterval = errors.New("invalid interval")

var intervalPattern = regexp.MustCompile(`^(\d+)(us|ms|s|m)$`)

// ParseInterval validates an interval string and normalizes it to
// microseconds. Accepted grammar: ^\d+(us|ms|s|m)$.
func ParseInterval(interval string) (uint64, error) {
	m := intervalPattern.FindStringSubmatch(interval)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}

	value, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}

	switch m[2] {
	case "us":
		return value, nil
	case "ms":
		return value * 1_000, nil
	case "s":
		return value * 1_000_000, nil
	default: // "m"
		return value * 60_000_000, nil
	}
}

// Bucket is one fixed-width time interval with its entry count.
type Bucket struct {
	Timestamp uint64 `json:"timestamp"` // bucket start, in the selected unit
	Count     int    `json:"count"`
}

// Timeline reports sparse per-bucket counts over the observed time span.
// Buckets are ascending and never empty; min/max are zero for an empty set.
type Timeline struct {
	Buckets      []Bucket `json:"buckets"`
	MinTimestamp uint64   `json:"min_timestamp"`
	MaxTimestamp uint64   `json:"max_timestamp"`
}

// BuildTimeline buckets filtered entries into fixed-width intervals.
// Timestamps are reported in microseconds when the interval unit is "us",
// milliseconds otherwise.
func BuildTimeline(entries []*models.Entry, interval string) (*Timeline, error) {
	intervalUS, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}

	useMicroseconds := strings.HasSuffix(interval, "us")
	unitTS := func(e *models.Entry) uint64 {
		if useMicroseconds {
			return e.TimestampMicros()
		}
		return e.TimestampMillis()
	}

	tl := &Timeline{Buckets: []Bucket{}}
	if len(entries) == 0 {
		return tl, nil
	}

	width := intervalUS
	if !useMicroseconds {
		width = intervalUS / 1_000
	}

	minTS, maxTS := unitTS(entries[0]), unitTS(entries[0])
	for _, e := range entries[1:] {
		ts := unitTS(e)
		if ts < minTS {
			minTS = ts
		}
		if ts > maxTS {
			maxTS = ts
		}
	}
	tl.MinTimestamp = minTS
	tl.MaxTimestamp = maxTS

	counts := make(map[uint64]int)
	for _, e := range entries {
		bucket := (unitTS(e)-minTS)/width*width + minTS
		counts[bucket]++
	}

	for ts, count := range counts {
		tl.Buckets = append(tl.Buckets, Bucket{Timestamp: ts, Count: count})
	}
	sort.Slice(tl.Buckets, func(i, j int) bool {
		return tl.Buckets[i].Timestamp < tl.Buckets[j].Timestamp
	})

	return tl, nil
}
