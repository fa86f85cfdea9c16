package service

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/feed"
)

// excludedProblemLetters are problem index letters left out of the table:
// digit-indexed subtasks and letters only used by unusual round formats.
var excludedProblemLetters = map[byte]bool{
	'0': true, '1': true,
	'I': true, 'J': true, 'K': true, 'L': true, 'M': true,
	'N': true, 'O': true, 'P': true, 'Q': true, 'R': true,
	'U': true,
}

// CodeforcesService serves the Codeforces archive as a contest-by-letter
// table, optionally overlaid with a handle's live submission verdicts.
type CodeforcesService struct {
	store  *feed.Store
	judge  *feed.CodeforcesClient
	tracer trace.Tracer
	logger *zap.Logger
}

// NewCodeforcesService creates a new Codeforces table service
func NewCodeforcesService(
	store *feed.Store,
	judge *feed.CodeforcesClient,
	tracer trace.Tracer,
	logger *zap.Logger,
) *CodeforcesService {
	return &CodeforcesService{
		store:  store,
		judge:  judge,
		tracer: tracer,
		logger: logger,
	}
}

// Problem verdict states shown in a table cell. Empty means unattempted.
const (
	StatusSolved = "SOLVED"
	StatusWrong  = "WRONG"
)

// CodeforcesCell is one problem cell in the archive table
type CodeforcesCell struct {
	ContestID int    `json:"contest_id"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	Rating    int    `json:"rating,omitempty"`
	Color     string `json:"color"`
	Status    string `json:"status,omitempty"`
}

// CodeforcesRow is one contest row, cells keyed by base problem letter
type CodeforcesRow struct {
	ContestID int                         `json:"contest_id"`
	Name      string                      `json:"name"`
	Problems  map[string][]CodeforcesCell `json:"problems"`
}

// CodeforcesTable is the filtered archive table
type CodeforcesTable struct {
	Columns []string        `json:"columns"`
	Rows    []CodeforcesRow `json:"rows"`
	Total   int             `json:"total"`
}

// Table builds the archive table for a contest category. When a handle is
// given, the judge's live submission history colors each cell solved or
// wrong; a judge outage fails the request rather than serving a blank
// overlay as if the handle had no submissions.
func (s *CodeforcesService) Table(ctx context.Context, category domain.ContestCategory, handle string) (*CodeforcesTable, error) {
	ctx, span := s.tracer.Start(ctx, "CodeforcesService.Table")
	defer span.End()

	span.SetAttributes(
		attribute.String("filter.category", string(category)),
		attribute.Bool("overlay.requested", handle != ""),
	)

	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	var solved, attempted map[string]bool
	if handle != "" {
		subs, err := s.judge.FetchUserStatus(ctx, handle)
		if err != nil {
			s.logger.Warn("Codeforces status fetch failed",
				zap.String("handle", handle),
				zap.Error(err),
			)
			return nil, err
		}
		solved, attempted = feed.StatusSets(subs)
	}

	matches := domain.CategoryPredicate(category)

	rows := make(map[int]*CodeforcesRow)
	columns := make(map[string]bool)
	var order []int

	for _, p := range snap.Codeforces {
		if len(p.Index) == 0 || excludedProblemLetters[p.Index[0]] {
			continue
		}

		name, ok := snap.ContestNames[p.ContestID]
		if !ok {
			name = fmt.Sprintf("Contest %d", p.ContestID)
		}
		if !matches(name) {
			continue
		}

		row, ok := rows[p.ContestID]
		if !ok {
			row = &CodeforcesRow{
				ContestID: p.ContestID,
				Name:      name,
				Problems:  make(map[string][]CodeforcesCell),
			}
			rows[p.ContestID] = row
			order = append(order, p.ContestID)
		}

		letter := string(p.Index[0])
		columns[letter] = true

		cell := CodeforcesCell{
			ContestID: p.ContestID,
			Index:     p.Index,
			Name:      p.Name,
			Rating:    p.Rating,
			Color:     domain.RatingColor(p.Rating),
		}
		if key := feed.ProblemStatusKey(p.ContestID, p.Index); solved[key] {
			cell.Status = StatusSolved
		} else if attempted[key] {
			cell.Status = StatusWrong
		}

		row.Problems[letter] = append(row.Problems[letter], cell)
	}

	// Newest contests first
	sort.Sort(sort.Reverse(sort.IntSlice(order)))

	table := &CodeforcesTable{
		Columns: sortedColumns(columns),
		Rows:    make([]CodeforcesRow, 0, len(order)),
		Total:   len(order),
	}
	for _, id := range order {
		table.Rows = append(table.Rows, *rows[id])
	}

	span.SetAttributes(attribute.Int("contests.returned", len(table.Rows)))
	return table, nil
}

func sortedColumns(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for letter := range set {
		out = append(out, letter)
	}
	sort.Strings(out)
	return out
}
