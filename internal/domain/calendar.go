package domain

import (
	"strings"
	"time"
)

// SubmissionEvent is one marked submission from the ledger's per-user
// history. Date is the ledger's ISO8601 timestamp.
type SubmissionEvent struct {
	Title  string   `json:"title"`
	Link   string   `json:"link"`
	Date   string   `json:"date"`
	Tags   []string `json:"tags"`
	Marked bool     `json:"marked"`
}

// Day returns the calendar-day part of the event timestamp.
func (e SubmissionEvent) Day() string {
	day, _, _ := strings.Cut(e.Date, "T")
	return day
}

// DayBucket aggregates one calendar day of submissions.
type DayBucket struct {
	Date        string            `json:"date"`
	Count       int               `json:"count"`
	Submissions []SubmissionEvent `json:"submissions,omitempty"`
	Weekday     time.Weekday      `json:"weekday"`
	Month       time.Month        `json:"month"`
}

// DaysInYear returns 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
		return 366
	}
	return 365
}

// BuildYearBuckets buckets events into one DayBucket per day of the year,
// contiguous from January 1 and including zero-count days, so the result
// always has exactly 365 or 366 entries. Events outside the year and events
// not marked are ignored.
func BuildYearBuckets(year int, events []SubmissionEvent) []DayBucket {
	byDay := make(map[string][]SubmissionEvent)
	for _, e := range events {
		if !e.Marked || e.Date == "" {
			continue
		}
		day := e.Day()
		byDay[day] = append(byDay[day], e)
	}

	days := DaysInYear(year)
	buckets := make([]DayBucket, 0, days)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		date := d.Format("2006-01-02")
		subs := byDay[date]
		buckets = append(buckets, DayBucket{
			Date:        date,
			Count:       len(subs),
			Submissions: subs,
			Weekday:     d.Weekday(),
			Month:       d.Month(),
		})
	}
	return buckets
}

// StreakStats holds the streak figures derived from a bucket sequence.
type StreakStats struct {
	LongestStreak int `json:"longest_streak"`
	CurrentStreak int `json:"current_streak"`
}

// CalculateStreaks scans the year's buckets. Longest is the maximum run of
// consecutive non-zero days anywhere in the sequence. Current counts
// backward from the last bucket dated on or before today and stops at the
// first zero-count day.
func CalculateStreaks(buckets []DayBucket, today string) StreakStats {
	var stats StreakStats

	run := 0
	for _, b := range buckets {
		if b.Count > 0 {
			run++
			if run > stats.LongestStreak {
				stats.LongestStreak = run
			}
		} else {
			run = 0
		}
	}

	for i := len(buckets) - 1; i >= 0; i-- {
		if buckets[i].Date > today {
			continue
		}
		if buckets[i].Count == 0 {
			break
		}
		stats.CurrentStreak++
	}
	return stats
}

// BestDay returns the bucket with the highest count; the first occurrence
// wins on ties. The boolean is false when every bucket is empty.
func BestDay(buckets []DayBucket) (DayBucket, bool) {
	var best DayBucket
	found := false
	for _, b := range buckets {
		if b.Count > best.Count {
			best = b
			found = true
		}
	}
	return best, found
}

// MonthlyCounts tallies marked submissions per month name.
func MonthlyCounts(events []SubmissionEvent) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		if !e.Marked || e.Date == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", e.Day())
		if err != nil {
			continue
		}
		counts[t.Month().String()]++
	}
	return counts
}

// SubmissionTagCounts tallies tags over marked submissions for the calendar
// panel. Unlike the solved-tag histogram this keeps difficulty labels, which
// is what the contribution view has always shown.
func SubmissionTagCounts(events []SubmissionEvent) TagHistogram {
	hist := make(TagHistogram)
	for _, e := range events {
		if !e.Marked {
			continue
		}
		for _, tag := range e.Tags {
			hist[tag]++
		}
	}
	return hist
}

// HeatLevel maps a day count to one of five heat levels for the calendar.
func HeatLevel(count int) int {
	switch {
	case count == 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 5:
		return 3
	default:
		return 4
	}
}
