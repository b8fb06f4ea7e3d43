package forecast

import (
	"math"
	"time"
)

// MaxDays bounds the number of daily summaries produced by Aggregate.
const MaxDays = 5

// Entry is one sample of an upstream forecast series.
type Entry struct {
	Timestamp   int64   `json:"dt"` // unix seconds
	Temperature float64 `json:"temp"`
	Condition   string  `json:"description"`
	Icon        string  `json:"icon"`
}

// DailySummary collapses every entry that falls on one calendar day.
type DailySummary struct {
	Day       string `json:"day"`  // short weekday name, e.g. "Mon"
	Date      string `json:"date"` // YYYY-MM-DD in the display zone
	High      int    `json:"high"`
	Low       int    `json:"low"`
	Condition string `json:"description"`
	Icon      string `json:"icon"`
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

type dayBucket struct {
	first time.Time
	entry Entry
	max   float64
	min   float64
}

// Aggregate groups entries by calendar date in loc and summarises each day.
//
// Days are returned in the order they first appear in entries, capped at MaxDays.
// High and low are the rounded extremes of the raw temperatures; condition and
// icon come from the first entry seen for the day. A nil loc means UTC.
func Aggregate(entries []Entry, loc *time.Location) []DailySummary {
	if loc == nil {
		loc = time.UTC
	}

	buckets := make(map[dayKey]*dayBucket)
	order := make([]dayKey, 0, MaxDays)

	for _, e := range entries {
		ts := time.Unix(e.Timestamp, 0).In(loc)
		y, m, d := ts.Date()
		k := dayKey{year: y, month: m, day: d}

		b, ok := buckets[k]
		if !ok {
			buckets[k] = &dayBucket{
				first: ts,
				entry: e,
				max:   e.Temperature,
				min:   e.Temperature,
			}
			order = append(order, k)
			continue
		}

		if e.Temperature > b.max {
			b.max = e.Temperature
		}
		if e.Temperature < b.min {
			b.min = e.Temperature
		}
	}

	if len(order) > MaxDays {
		order = order[:MaxDays]
	}

	out := make([]DailySummary, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		out = append(out, DailySummary{
			Day:       b.first.Format("Mon"),
			Date:      b.first.Format("2006-01-02"),
			High:      Round(b.max),
			Low:       Round(b.min),
			Condition: TitleCase(b.entry.Condition),
			Icon:      b.entry.Icon,
		})
	}
	return out
}

// Round rounds half-way values toward positive infinity (64.5 -> 65, -2.5 -> -2).
func Round(v float64) int {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	return int(f)
}
