package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/feed"
)

// LeetCodeService serves the grouped LeetCode contest table. Unlike CodeChef,
// every LeetCode problem carries a problem link, so solved state is joined
// from the ledger rather than tracked locally.
type LeetCodeService struct {
	store  *feed.Store
	source *LedgerSource
	tracer trace.Tracer
	logger *zap.Logger
}

// NewLeetCodeService creates a new LeetCode dashboard service
func NewLeetCodeService(
	store *feed.Store,
	source *LedgerSource,
	tracer trace.Tracer,
	logger *zap.Logger,
) *LeetCodeService {
	return &LeetCodeService{
		store:  store,
		source: source,
		tracer: tracer,
		logger: logger,
	}
}

// LeetCodeGroupView is one contest group with its completion stats
type LeetCodeGroupView struct {
	Key      string                 `json:"group"`
	Contests []domain.ContestRecord `json:"contests"`
	Stats    domain.GroupStats      `json:"stats"`
	Percent  float64                `json:"completion_percent"`
}

// LeetCodeDashboard is the grouped table joined with ledger solved state
type LeetCodeDashboard struct {
	Groups       []LeetCodeGroupView      `json:"groups"`
	Overall      domain.GroupStats        `json:"overall"`
	Percent      float64                  `json:"completion_percent"`
	PointsEarned int                      `json:"points_earned"`
	PointsTotal  int                      `json:"points_total"`
	Solved       map[string]bool          `json:"solved"`
	Unlinked     []domain.UnlinkedProblem `json:"unlinked,omitempty"`
	Stale        bool                     `json:"stale,omitempty"`
	LoadedAt     time.Time                `json:"loaded_at"`
}

// Dashboard groups the LeetCode feed, filters by contest type and search,
// and joins each problem against the ledger by normalized link. When the
// ledger is down the local mirror serves solved state, flagged stale.
func (s *LeetCodeService) Dashboard(ctx context.Context, session domain.Session, query string, hideCompleted bool, contestType domain.ContestType) (*LeetCodeDashboard, error) {
	ctx, span := s.tracer.Start(ctx, "LeetCodeService.Dashboard")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.name", session.Username),
		attribute.String("filter.contest_type", string(contestType)),
		attribute.Bool("filter.hide_completed", hideCompleted),
	)

	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	entries, stale, err := s.source.entries(ctx, session)
	if err != nil {
		return nil, err
	}
	index := domain.BuildLedgerIndex(entries)

	records := snap.LeetCode
	if contestType != "" && contestType != "all" {
		kept := make([]domain.ContestRecord, 0, len(records))
		for _, c := range records {
			if domain.ContestTypeOf(c.URL, c.Name) == contestType {
				kept = append(kept, c)
			}
		}
		records = kept
	}

	isSolved := func(_ domain.ContestRecord, p domain.ProblemRecord) bool {
		return index.IsSolved(p.Link, session.Username)
	}

	groups := domain.GroupContests(records)
	overall := domain.OverallStats(groups, isSolved)

	filtered := domain.FilterGroups(groups, domain.FilterOptions{
		Query:         query,
		HideCompleted: hideCompleted,
		Solved:        isSolved,
		ExtraText: func(p domain.ProblemRecord) []string {
			if entry, ok := index.Lookup(p.Link); ok {
				return entry.Tags
			}
			return nil
		},
	})

	views := make([]LeetCodeGroupView, 0, len(filtered))
	for _, g := range filtered {
		stats := domain.CollectGroupStats(g, isSolved)
		views = append(views, LeetCodeGroupView{
			Key:      g.Key,
			Contests: g.Contests,
			Stats:    stats,
			Percent:  stats.CompletionPercent(),
		})
	}

	solvedLinks := make(map[string]bool)
	var earned, total int
	for _, c := range records {
		for _, p := range c.Problems {
			total += p.Points
			if index.IsSolved(p.Link, session.Username) {
				earned += p.Points
				solvedLinks[p.Link] = true
			}
		}
	}

	unlinked := domain.CollectUnlinked(snap.LeetCode, index)

	span.SetAttributes(
		attribute.Int("groups.returned", len(views)),
		attribute.Int("problems.unlinked", len(unlinked)),
		attribute.Bool("ledger.stale", stale),
	)

	return &LeetCodeDashboard{
		Groups:       views,
		Overall:      overall,
		Percent:      overall.CompletionPercent(),
		PointsEarned: earned,
		PointsTotal:  total,
		Solved:       solvedLinks,
		Unlinked:     unlinked,
		Stale:        stale,
		LoadedAt:     snap.LoadedAt,
	}, nil
}

// SkillPanel is the solved-tag breakdown grouped into skill tiers
type SkillPanel struct {
	Groups      []domain.SkillGroupStats `json:"groups"`
	Difficulty  domain.DifficultyCounts  `json:"difficulty"`
	TopTags     []domain.TagCount        `json:"top_tags"`
	TotalSolved int                      `json:"total_solved"`
	Stale       bool                     `json:"stale,omitempty"`
}

// Skills tallies the caller's solved ledger entries into the skill tier
// panel, difficulty counts and the most-practiced tags.
func (s *LeetCodeService) Skills(ctx context.Context, session domain.Session) (*SkillPanel, error) {
	ctx, span := s.tracer.Start(ctx, "LeetCodeService.Skills")
	defer span.End()

	span.SetAttributes(attribute.String("user.name", session.Username))

	entries, stale, err := s.source.entries(ctx, session)
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

	span.SetAttributes(attribute.Int("problems.solved", totalSolved))

	return &SkillPanel{
		Groups:      domain.BuildSkillPanel(hist),
		Difficulty:  difficulty,
		TopTags:     hist.TopTags(10),
		TotalSolved: totalSolved,
		Stale:       stale,
	}, nil
}
