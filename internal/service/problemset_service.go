package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/infrastructure"
)

// ProblemsetService serves the flat tracked-problem list straight from the
// ledger and owns the mark/unmark writes for every link-bearing judge.
type ProblemsetService struct {
	source  *LedgerSource
	metrics *infrastructure.TelemetryMetrics
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewProblemsetService creates a new problemset service
func NewProblemsetService(
	source *LedgerSource,
	metrics *infrastructure.TelemetryMetrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ProblemsetService {
	return &ProblemsetService{
		source:  source,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
	}
}

// ProblemsetItem is one tracked problem with the caller's solved flag
type ProblemsetItem struct {
	QuestionID string            `json:"question_id"`
	Title      string            `json:"title"`
	Link       string            `json:"link"`
	Tags       []string          `json:"tags"`
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`
	Solved     bool              `json:"solved"`
}

// ProblemsetPage is the filtered problem list plus counts
type ProblemsetPage struct {
	Problems []ProblemsetItem `json:"problems"`
	Total    int              `json:"total"`
	Solved   int              `json:"solved"`
	Stale    bool             `json:"stale,omitempty"`
}

// ProblemsetFilter selects a slice of the tracked problemset. Tags must all
// be present on an entry for it to match.
type ProblemsetFilter struct {
	Query      string
	HideSolved bool
	Tags       []string
}

// List returns the tracked problemset filtered by free-text search over
// title and tags, an all-must-match tag selection, and the hide-solved
// toggle. Counts always cover the unfiltered set.
func (s *ProblemsetService) List(ctx context.Context, session domain.Session, filter ProblemsetFilter) (*ProblemsetPage, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemsetService.List")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.name", session.Username),
		attribute.Bool("filter.hide_solved", filter.HideSolved),
		attribute.Int("filter.tags", len(filter.Tags)),
	)

	entries, stale, err := s.source.entries(ctx, session)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))

	page := &ProblemsetPage{Problems: []ProblemsetItem{}, Stale: stale}
	for _, entry := range entries {
		solved := entry.IsSolvedBy(session.Username)
		page.Total++
		if solved {
			page.Solved++
		}

		if filter.HideSolved && solved {
			continue
		}
		if query != "" && !entryMatchesQuery(entry, query) {
			continue
		}
		if !entryHasAllTags(entry, filter.Tags) {
			continue
		}

		item := ProblemsetItem{
			QuestionID: entry.QuestionID,
			Title:      entry.Title,
			Link:       entry.Link,
			Tags:       entry.Tags,
			Solved:     solved,
		}
		if difficulty, ok := domain.DifficultyFromTags(entry.Tags); ok {
			item.Difficulty = difficulty
		}
		page.Problems = append(page.Problems, item)
	}

	span.SetAttributes(attribute.Int("problems.returned", len(page.Problems)))
	return page, nil
}

// Tags returns every distinct tag in the tracked problemset, sorted. The
// difficulty labels are left out since they are filtered separately.
func (s *ProblemsetService) Tags(ctx context.Context, session domain.Session) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemsetService.Tags")
	defer span.End()

	entries, _, err := s.source.entries(ctx, session)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		for _, tag := range entry.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, ok := domain.DifficultyFromTags([]string{tag}); ok {
				continue
			}
			seen[tag] = true
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	span.SetAttributes(attribute.Int("tags.count", len(tags)))
	return tags, nil
}

// TagAnalytics is the per-tag breakdown of the caller's solved problems
type TagAnalytics struct {
	TopTags     []domain.TagCount       `json:"top_tags"`
	Difficulty  domain.DifficultyCounts `json:"difficulty"`
	TotalSolved int                     `json:"total_solved"`
}

// Analytics tallies the caller's solved entries per tag and difficulty
func (s *ProblemsetService) Analytics(ctx context.Context, session domain.Session) (*TagAnalytics, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemsetService.Analytics")
	defer span.End()

	span.SetAttributes(attribute.String("user.name", session.Username))

	entries, _, err := s.source.entries(ctx, session)
	if err != nil {
		return nil, err
	}
	index := domain.BuildLedgerIndex(entries)

	hist, difficulty := domain.TallySolvedTags(index, session.Username)

	var totalSolved int
	for _, entry := range entries {
		if entry.IsSolvedBy(session.Username) {
			totalSolved++
		}
	}

	return &TagAnalytics{
		TopTags:     hist.TopTags(0),
		Difficulty:  difficulty,
		TotalSolved: totalSolved,
	}, nil
}

// Mark records a problem as solved in the ledger. The local view only flips
// after the ledger confirms the write.
func (s *ProblemsetService) Mark(ctx context.Context, session domain.Session, link string) (*domain.LedgerEntry, error) {
	return s.setSolved(ctx, session, link, true)
}

// Unmark removes the solved record from the ledger
func (s *ProblemsetService) Unmark(ctx context.Context, session domain.Session, link string) (*domain.LedgerEntry, error) {
	return s.setSolved(ctx, session, link, false)
}

func (s *ProblemsetService) setSolved(ctx context.Context, session domain.Session, link string, solved bool) (*domain.LedgerEntry, error) {
	action := "unmark"
	if solved {
		action = "mark"
	}
	ctx, span := s.tracer.Start(ctx, "ProblemsetService.setSolved")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.name", session.Username),
		attribute.String("problem.action", action),
	)

	link = domain.NormalizeLink(link)
	if link == "" {
		return nil, domain.ErrBadRequest
	}

	entries, _, err := s.source.entries(ctx, session)
	if err != nil {
		return nil, err
	}
	index := domain.BuildLedgerIndex(entries)

	entry, ok := index.Lookup(link)
	if !ok {
		return nil, domain.ErrProblemNotTracked
	}
	span.SetAttributes(attribute.String("problem.question_id", entry.QuestionID))

	if entry.IsSolvedBy(session.Username) == solved {
		return &entry, nil
	}

	start := time.Now()
	if solved {
		err = s.source.client.MarkSolved(ctx, session, entry.QuestionID)
	} else {
		err = s.source.client.Unmark(ctx, session, entry.QuestionID)
	}
	s.source.recordRequest(ctx, action, start, err)
	if err != nil {
		s.logger.Error("Ledger write failed",
			zap.String("action", action),
			zap.String("question_id", entry.QuestionID),
			zap.Error(err),
		)
		return nil, err
	}

	if s.metrics != nil && s.metrics.ProblemsMarked != nil {
		s.metrics.ProblemsMarked.Add(ctx, 1, metric.WithAttributes(
			attribute.String("problem.action", action),
		))
	}

	updated := entry.WithoutSolved(session.Username)
	if solved {
		updated = entry.WithSolved(session.Username)
	}

	// Fold the confirmed entry into a copied index and push it to the
	// mirror, so an outage right after the write still serves the new state.
	if mErr := s.source.mirror.ReplaceAll(index.WithEntry(updated).Entries(), time.Now()); mErr != nil {
		s.logger.Warn("Failed to refresh ledger mirror after write", zap.Error(mErr))
	}

	return &updated, nil
}

func entryMatchesQuery(entry domain.LedgerEntry, query string) bool {
	if strings.Contains(strings.ToLower(entry.Title), query) {
		return true
	}
	for _, tag := range entry.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func entryHasAllTags(entry domain.LedgerEntry, tags []string) bool {
	for _, want := range tags {
		found := false
		for _, have := range entry.Tags {
			if strings.EqualFold(strings.TrimSpace(have), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
