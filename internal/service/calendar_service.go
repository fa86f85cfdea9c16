package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
)

// CalendarService builds the yearly activity heatmap and streak stats from
// the caller's ledger submission history.
type CalendarService struct {
	source *LedgerSource
	tracer trace.Tracer
	logger *zap.Logger
	now    func() time.Time
}

// NewCalendarService creates a new calendar service
func NewCalendarService(source *LedgerSource, tracer trace.Tracer, logger *zap.Logger) *CalendarService {
	return &CalendarService{
		source: source,
		tracer: tracer,
		logger: logger,
		now:    time.Now,
	}
}

// CalendarDay is one heatmap cell
type CalendarDay struct {
	Date        string                   `json:"date"`
	Count       int                      `json:"count"`
	Level       int                      `json:"level"`
	Weekday     string                   `json:"weekday"`
	Month       string                   `json:"month"`
	Submissions []domain.SubmissionEvent `json:"submissions,omitempty"`
}

// CalendarYear is the full heatmap plus derived stats for one year
type CalendarYear struct {
	Year        int                 `json:"year"`
	Days        []CalendarDay       `json:"days"`
	Streaks     domain.StreakStats  `json:"streaks"`
	BestDay     *CalendarDay        `json:"best_day,omitempty"`
	Monthly     map[string]int      `json:"monthly"`
	TagCounts   domain.TagHistogram `json:"tag_counts"`
	TotalMarked int                 `json:"total_marked"`
}

// Year fetches the caller's submission history and folds it into day
// buckets, streaks, the best day and monthly totals. Unmarked and undated
// submissions are ignored throughout.
func (s *CalendarService) Year(ctx context.Context, session domain.Session, year int) (*CalendarYear, error) {
	ctx, span := s.tracer.Start(ctx, "CalendarService.Year")
	defer span.End()

	if year <= 0 {
		year = s.now().UTC().Year()
	}

	span.SetAttributes(
		attribute.String("user.name", session.Username),
		attribute.Int("calendar.year", year),
	)

	start := s.now()
	events, err := s.source.client.FetchUserSubmissions(ctx, session)
	s.source.recordRequest(ctx, "usersubmissions", start, err)
	if err != nil {
		s.logger.Error("Failed to fetch submission history", zap.Error(err))
		return nil, err
	}

	buckets := domain.BuildYearBuckets(year, events)
	today := s.now().UTC().Format("2006-01-02")
	streaks := domain.CalculateStreaks(buckets, today)

	days := make([]CalendarDay, len(buckets))
	for i, b := range buckets {
		days[i] = toCalendarDay(b)
	}

	result := &CalendarYear{
		Year:      year,
		Days:      days,
		Streaks:   streaks,
		Monthly:   domain.MonthlyCounts(events),
		TagCounts: domain.SubmissionTagCounts(events),
	}

	if best, ok := domain.BestDay(buckets); ok {
		day := toCalendarDay(best)
		result.BestDay = &day
	}

	for _, e := range events {
		if e.Marked && e.Day() != "" {
			result.TotalMarked++
		}
	}

	span.SetAttributes(
		attribute.Int("calendar.total_marked", result.TotalMarked),
		attribute.Int("calendar.longest_streak", streaks.LongestStreak),
	)

	return result, nil
}

func toCalendarDay(b domain.DayBucket) CalendarDay {
	return CalendarDay{
		Date:        b.Date,
		Count:       b.Count,
		Level:       domain.HeatLevel(b.Count),
		Weekday:     b.Weekday.String(),
		Month:       b.Month.String(),
		Submissions: b.Submissions,
	}
}
