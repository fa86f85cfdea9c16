package domain

import (
	"fmt"
	"testing"
)

func eventOn(date string) SubmissionEvent {
	return SubmissionEvent{Title: "p", Date: date + "T12:00:00Z", Marked: true}
}

func TestDaysInYear(t *testing.T) {
	cases := map[int]int{2023: 365, 2024: 366, 2025: 365, 2000: 366, 1900: 365}
	for year, want := range cases {
		if got := DaysInYear(year); got != want {
			t.Errorf("DaysInYear(%d) = %d, want %d", year, got, want)
		}
	}
}

func TestBuildYearBucketsIsContiguous(t *testing.T) {
	events := []SubmissionEvent{
		eventOn("2025-03-01"),
		eventOn("2025-03-01"),
		eventOn("2025-12-31"),
		eventOn("2024-12-31"),                             // outside the year
		{Title: "unmarked", Date: "2025-03-01T00:00:00Z"}, // not marked
		{Title: "dateless", Marked: true},                 // no date
	}

	buckets := BuildYearBuckets(2025, events)
	if len(buckets) != 365 {
		t.Fatalf("expected 365 buckets, got %d", len(buckets))
	}
	if buckets[0].Date != "2025-01-01" || buckets[364].Date != "2025-12-31" {
		t.Fatalf("bucket range wrong: %q .. %q", buckets[0].Date, buckets[364].Date)
	}

	byDate := make(map[string]DayBucket)
	for _, b := range buckets {
		byDate[b.Date] = b
	}
	if byDate["2025-03-01"].Count != 2 {
		t.Errorf("2025-03-01 count = %d, want 2", byDate["2025-03-01"].Count)
	}
	if byDate["2025-12-31"].Count != 1 {
		t.Errorf("2025-12-31 count = %d, want 1", byDate["2025-12-31"].Count)
	}

	var total int
	for _, b := range buckets {
		total += b.Count
	}
	if total != 3 {
		t.Errorf("total bucketed events = %d, want 3", total)
	}
}

func TestCalculateStreaks(t *testing.T) {
	counts := []int{1, 1, 0, 1, 1, 1, 0, 0, 1, 1}
	buckets := make([]DayBucket, len(counts))
	for i, n := range counts {
		buckets[i] = DayBucket{Date: fmt.Sprintf("2025-01-%02d", i+1), Count: n}
	}

	stats := CalculateStreaks(buckets, "2025-01-10")
	if stats.LongestStreak != 3 {
		t.Errorf("longest streak = %d, want 3", stats.LongestStreak)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("current streak = %d, want 2", stats.CurrentStreak)
	}
}

func TestCalculateStreaksIgnoresFutureDays(t *testing.T) {
	buckets := []DayBucket{
		{Date: "2025-01-01", Count: 1},
		{Date: "2025-01-02", Count: 1},
		{Date: "2025-01-03", Count: 0}, // tomorrow
	}

	stats := CalculateStreaks(buckets, "2025-01-02")
	if stats.CurrentStreak != 2 {
		t.Errorf("current streak = %d, want 2: the empty future day must not break it", stats.CurrentStreak)
	}
}

func TestCalculateStreaksEndsAtZeroToday(t *testing.T) {
	buckets := []DayBucket{
		{Date: "2025-01-01", Count: 3},
		{Date: "2025-01-02", Count: 0},
	}

	stats := CalculateStreaks(buckets, "2025-01-02")
	if stats.CurrentStreak != 0 {
		t.Errorf("current streak = %d, want 0", stats.CurrentStreak)
	}
	if stats.LongestStreak != 1 {
		t.Errorf("longest streak = %d, want 1", stats.LongestStreak)
	}
}

func TestBestDayFirstMaxWins(t *testing.T) {
	buckets := []DayBucket{
		{Date: "2025-01-01", Count: 2},
		{Date: "2025-01-02", Count: 5},
		{Date: "2025-01-03", Count: 5},
	}

	best, ok := BestDay(buckets)
	if !ok {
		t.Fatal("expected a best day")
	}
	if best.Date != "2025-01-02" {
		t.Fatalf("best day = %q, want the first maximum", best.Date)
	}
}

func TestBestDayAllEmpty(t *testing.T) {
	buckets := []DayBucket{{Date: "2025-01-01"}, {Date: "2025-01-02"}}
	if _, ok := BestDay(buckets); ok {
		t.Fatal("empty year should have no best day")
	}
}

func TestMonthlyCounts(t *testing.T) {
	events := []SubmissionEvent{
		eventOn("2025-01-05"),
		eventOn("2025-01-20"),
		eventOn("2025-11-02"),
		{Title: "unmarked", Date: "2025-01-01T00:00:00Z"},
	}

	counts := MonthlyCounts(events)
	if counts["January"] != 2 || counts["November"] != 1 {
		t.Fatalf("unexpected monthly counts: %#v", counts)
	}
}

func TestSubmissionTagCountsKeepsDifficultyLabels(t *testing.T) {
	events := []SubmissionEvent{
		{Marked: true, Tags: []string{"Easy", "array"}},
		{Marked: true, Tags: []string{"array"}},
		{Marked: false, Tags: []string{"graphs"}},
	}

	hist := SubmissionTagCounts(events)
	if hist["array"] != 2 || hist["Easy"] != 1 {
		t.Fatalf("unexpected histogram: %#v", hist)
	}
	if _, ok := hist["graphs"]; ok {
		t.Fatal("unmarked submissions must not count")
	}
}

func TestHeatLevel(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 6: 4, 50: 4}
	for count, want := range cases {
		if got := HeatLevel(count); got != want {
			t.Errorf("HeatLevel(%d) = %d, want %d", count, got, want)
		}
	}
}
