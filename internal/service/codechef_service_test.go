package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/feed"
)

func codechefStore() *feed.Store {
	store := feed.NewStore()
	store.Swap(&feed.Snapshot{
		CodeChef: []domain.ContestRecord{
			{Code: "START191A", Division: "Division 1", Problems: []domain.ProblemRecord{
				{Code: "MAXSEGGCD", Name: "Maximise Segment GCD"},
			}},
			{Code: "START191B", Division: "Division 2", Problems: []domain.ProblemRecord{
				{Code: "BINSTRXOR", Name: "Binary String XOR"},
			}},
			{Code: "COOK152", Division: "All", Problems: []domain.ProblemRecord{
				{Code: "CHEFARRAY", Name: "Chef and Array"},
			}},
		},
		LoadedAt: time.Now(),
	})
	return store
}

var testSession = domain.Session{Username: "alice", UpstreamToken: "tok"}

func TestCodeChefDashboardGroupsAndStats(t *testing.T) {
	svc := NewCodeChefService(codechefStore(), newFakeSolvedCache(), testTracer(), zap.NewNop())

	dash, err := svc.Dashboard(context.Background(), testSession, "", false)
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	if len(dash.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(dash.Groups))
	}
	if dash.Groups[0].Key != "START191" || dash.Groups[1].Key != "COOK152" {
		t.Fatalf("unexpected group keys: %q %q", dash.Groups[0].Key, dash.Groups[1].Key)
	}
	if dash.Overall.Total != 3 || dash.Overall.Solved != 0 {
		t.Fatalf("unexpected overall stats: %+v", dash.Overall)
	}
	if dash.Percent != 0 {
		t.Fatalf("completion = %v, want 0", dash.Percent)
	}
}

func TestCodeChefToggleRoundTrip(t *testing.T) {
	cache := newFakeSolvedCache()
	svc := NewCodeChefService(codechefStore(), cache, testTracer(), zap.NewNop())
	ctx := context.Background()

	solved, err := svc.Toggle(ctx, testSession, "START191A", "MAXSEGGCD")
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if !solved {
		t.Fatal("first toggle should mark solved")
	}

	dash, err := svc.Dashboard(ctx, testSession, "", false)
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if dash.Overall.Solved != 1 {
		t.Fatalf("overall solved = %d, want 1", dash.Overall.Solved)
	}
	if !dash.Solved[domain.MarkKey("START191A", "MAXSEGGCD")] {
		t.Fatal("solved map missing the toggled problem")
	}

	solved, err = svc.Toggle(ctx, testSession, "START191A", "MAXSEGGCD")
	if err != nil {
		t.Fatalf("second Toggle returned error: %v", err)
	}
	if solved {
		t.Fatal("second toggle should unmark")
	}
}

func TestCodeChefToggleUnknownProblem(t *testing.T) {
	svc := NewCodeChefService(codechefStore(), newFakeSolvedCache(), testTracer(), zap.NewNop())

	if _, err := svc.Toggle(context.Background(), testSession, "START191A", "NOPE"); !errors.Is(err, domain.ErrProblemNotTracked) {
		t.Fatalf("expected ErrProblemNotTracked, got %v", err)
	}
}

func TestCodeChefDashboardHideCompleted(t *testing.T) {
	cache := newFakeSolvedCache()
	svc := NewCodeChefService(codechefStore(), cache, testTracer(), zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, testSession, "COOK152", "CHEFARRAY"); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}

	dash, err := svc.Dashboard(ctx, testSession, "", true)
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	for _, g := range dash.Groups {
		if g.Key == "COOK152" {
			t.Fatal("fully solved group should be hidden")
		}
	}
	// Overall stats still cover the hidden group
	if dash.Overall.Total != 3 || dash.Overall.Solved != 1 {
		t.Fatalf("unexpected overall stats: %+v", dash.Overall)
	}
}

func TestCodeChefDashboardSearch(t *testing.T) {
	svc := NewCodeChefService(codechefStore(), newFakeSolvedCache(), testTracer(), zap.NewNop())

	dash, err := svc.Dashboard(context.Background(), testSession, "division 2", false)
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if len(dash.Groups) != 1 || dash.Groups[0].Key != "START191" {
		t.Fatalf("expected only START191 to match, got %#v", dash.Groups)
	}
}

func TestCodeChefDashboardFeedNotLoaded(t *testing.T) {
	svc := NewCodeChefService(feed.NewStore(), newFakeSolvedCache(), testTracer(), zap.NewNop())

	if _, err := svc.Dashboard(context.Background(), testSession, "", false); !errors.Is(err, domain.ErrFeedNotLoaded) {
		t.Fatalf("expected ErrFeedNotLoaded, got %v", err)
	}
}

func TestCodeChefReset(t *testing.T) {
	cache := newFakeSolvedCache()
	svc := NewCodeChefService(codechefStore(), cache, testTracer(), zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, testSession, "START191A", "MAXSEGGCD"); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if err := svc.Reset(ctx, testSession); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}

	dash, err := svc.Dashboard(ctx, testSession, "", false)
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if dash.Overall.Solved != 0 {
		t.Fatalf("solved marks survived reset: %+v", dash.Overall)
	}
}

func TestCodeChefDashboardSolvedCacheError(t *testing.T) {
	cache := newFakeSolvedCache()
	cache.err = errBroken
	svc := NewCodeChefService(codechefStore(), cache, testTracer(), zap.NewNop())

	if _, err := svc.Dashboard(context.Background(), testSession, "", false); !errors.Is(err, errBroken) {
		t.Fatalf("expected storage error to surface, got %v", err)
	}
}
