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

// CodeChefService serves the grouped CodeChef practice table. The CodeChef
// feed carries no ledger links, so solved state lives in the local solved
// mark table instead of the ledger.
type CodeChefService struct {
	store  *feed.Store
	solved domain.SolvedCache
	tracer trace.Tracer
	logger *zap.Logger
}

// NewCodeChefService creates a new CodeChef dashboard service
func NewCodeChefService(
	store *feed.Store,
	solved domain.SolvedCache,
	tracer trace.Tracer,
	logger *zap.Logger,
) *CodeChefService {
	return &CodeChefService{
		store:  store,
		solved: solved,
		tracer: tracer,
		logger: logger,
	}
}

// CodeChefGroupView is one contest group with its completion stats
type CodeChefGroupView struct {
	Key      string                 `json:"group"`
	Contests []domain.ContestRecord `json:"contests"`
	Stats    domain.GroupStats      `json:"stats"`
	Percent  float64                `json:"completion_percent"`
}

// CodeChefDashboard is the full grouped table plus overall progress
type CodeChefDashboard struct {
	Groups   []CodeChefGroupView `json:"groups"`
	Overall  domain.GroupStats   `json:"overall"`
	Percent  float64             `json:"completion_percent"`
	Solved   map[string]bool     `json:"solved"`
	LoadedAt time.Time           `json:"loaded_at"`
}

// Dashboard groups the CodeChef feed, applies search and the hide-completed
// toggle, and attaches the caller's solved marks and completion stats.
func (s *CodeChefService) Dashboard(ctx context.Context, session domain.Session, query string, hideCompleted bool) (*CodeChefDashboard, error) {
	ctx, span := s.tracer.Start(ctx, "CodeChefService.Dashboard")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.name", session.Username),
		attribute.Bool("filter.hide_completed", hideCompleted),
	)

	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	marks, err := s.solved.SolvedSet(session.Username)
	if err != nil {
		s.logger.Error("Failed to load solved marks", zap.Error(err))
		return nil, err
	}

	isSolved := func(c domain.ContestRecord, p domain.ProblemRecord) bool {
		return marks[domain.MarkKey(c.Code, p.Code)]
	}

	groups := domain.GroupContests(snap.CodeChef)
	overall := domain.OverallStats(groups, isSolved)

	filtered := domain.FilterGroups(groups, domain.FilterOptions{
		Query:         query,
		HideCompleted: hideCompleted,
		Solved:        isSolved,
	})

	views := make([]CodeChefGroupView, 0, len(filtered))
	for _, g := range filtered {
		stats := domain.CollectGroupStats(g, isSolved)
		views = append(views, CodeChefGroupView{
			Key:      g.Key,
			Contests: g.Contests,
			Stats:    stats,
			Percent:  stats.CompletionPercent(),
		})
	}

	span.SetAttributes(
		attribute.Int("groups.total", len(groups)),
		attribute.Int("groups.returned", len(views)),
	)

	return &CodeChefDashboard{
		Groups:   views,
		Overall:  overall,
		Percent:  overall.CompletionPercent(),
		Solved:   marks,
		LoadedAt: snap.LoadedAt,
	}, nil
}

// Toggle flips the solved mark on one problem and reports the new state.
// The problem must exist in the current feed snapshot.
func (s *CodeChefService) Toggle(ctx context.Context, session domain.Session, contestCode, problemCode string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "CodeChefService.Toggle")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.name", session.Username),
		attribute.String("contest.code", contestCode),
		attribute.String("problem.code", problemCode),
	)

	snap, err := s.store.Current()
	if err != nil {
		return false, err
	}
	if !snapshotHasProblem(snap.CodeChef, contestCode, problemCode) {
		return false, domain.ErrProblemNotTracked
	}

	nowSolved, err := s.solved.Toggle(session.Username, contestCode, problemCode)
	if err != nil {
		s.logger.Error("Failed to toggle solved mark",
			zap.String("contest", contestCode),
			zap.String("problem", problemCode),
			zap.Error(err),
		)
		return false, err
	}

	span.SetAttributes(attribute.Bool("problem.solved", nowSolved))
	return nowSolved, nil
}

// Reset clears every solved mark of the caller
func (s *CodeChefService) Reset(ctx context.Context, session domain.Session) error {
	ctx, span := s.tracer.Start(ctx, "CodeChefService.Reset")
	defer span.End()

	span.SetAttributes(attribute.String("user.name", session.Username))
	return s.solved.Clear(session.Username)
}

func snapshotHasProblem(records []domain.ContestRecord, contestCode, problemCode string) bool {
	for _, c := range records {
		if c.Code != contestCode {
			continue
		}
		for _, p := range c.Problems {
			if p.Code == problemCode {
				return true
			}
		}
	}
	return false
}
