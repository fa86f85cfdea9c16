package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/ledger"
)

func ledgerEntries() []domain.LedgerEntry {
	return []domain.LedgerEntry{
		{QuestionID: "1", Title: "Two Sum", Link: "https://leetcode.com/problems/two-sum", Tags: []string{"Easy", "Array", "Hash Table"}, SolvedBy: []string{"alice"}},
		{QuestionID: "2", Title: "Word Ladder", Link: "https://leetcode.com/problems/word-ladder", Tags: []string{"Hard", "Breadth-First Search"}},
		{QuestionID: "3", Title: "Coin Change", Link: "https://leetcode.com/problems/coin-change", Tags: []string{"Medium", "Dynamic Programming", "Array"}},
	}
}

// ledgerServer serves a fixed problemset and accepts mark/unmark writes.
type ledgerServer struct {
	*httptest.Server
	entries   []domain.LedgerEntry
	failPatch bool
	marked    []string
	unmarked  []string
}

func newLedgerServer(t *testing.T) *ledgerServer {
	t.Helper()
	ls := &ledgerServer{entries: ledgerEntries()}
	ls.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/problemset":
			_ = json.NewEncoder(w).Encode(ls.entries)
		case "/markquestion", "/unmarkquestion":
			if ls.failPatch {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			var body struct {
				QuestionID string `json:"questionid"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if r.URL.Path == "/markquestion" {
				ls.marked = append(ls.marked, body.QuestionID)
			} else {
				ls.unmarked = append(ls.unmarked, body.QuestionID)
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ls.Close)
	return ls
}

func newProblemsetService(srv *ledgerServer, mirror *fakeLedgerMirror) *ProblemsetService {
	client := ledger.New(srv.URL, time.Second)
	source := NewLedgerSource(client, mirror, nil, zap.NewNop())
	return NewProblemsetService(source, nil, testTracer(), zap.NewNop())
}

func TestProblemsetList(t *testing.T) {
	svc := newProblemsetService(newLedgerServer(t), &fakeLedgerMirror{})

	page, err := svc.List(context.Background(), testSession, ProblemsetFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 3 || page.Solved != 1 {
		t.Fatalf("counts = %d/%d, want 3/1", page.Solved, page.Total)
	}
	if len(page.Problems) != 3 {
		t.Fatalf("expected 3 problems, got %d", len(page.Problems))
	}

	var twoSum *ProblemsetItem
	for i := range page.Problems {
		if page.Problems[i].QuestionID == "1" {
			twoSum = &page.Problems[i]
		}
	}
	if twoSum == nil || !twoSum.Solved || twoSum.Difficulty != domain.DifficultyEasy {
		t.Fatalf("unexpected Two Sum item: %#v", twoSum)
	}
}

func TestProblemsetListFilters(t *testing.T) {
	svc := newProblemsetService(newLedgerServer(t), &fakeLedgerMirror{})
	ctx := context.Background()

	page, err := svc.List(ctx, testSession, ProblemsetFilter{Query: "ladder"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Problems) != 1 || page.Problems[0].QuestionID != "2" {
		t.Fatalf("query filter failed: %#v", page.Problems)
	}

	page, err = svc.List(ctx, testSession, ProblemsetFilter{HideSolved: true})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Problems) != 2 {
		t.Fatalf("hide-solved kept %d problems, want 2", len(page.Problems))
	}

	page, err = svc.List(ctx, testSession, ProblemsetFilter{Tags: []string{"Array", "Dynamic Programming"}})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Problems) != 1 || page.Problems[0].QuestionID != "3" {
		t.Fatalf("all-must-match tag filter failed: %#v", page.Problems)
	}
}

func TestProblemsetTagsExcludeDifficulty(t *testing.T) {
	svc := newProblemsetService(newLedgerServer(t), &fakeLedgerMirror{})

	tags, err := svc.Tags(context.Background(), testSession)
	if err != nil {
		t.Fatalf("Tags returned error: %v", err)
	}

	want := []string{"Array", "Breadth-First Search", "Dynamic Programming", "Hash Table"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %#v, want %#v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags = %#v, want %#v", tags, want)
		}
	}
}

func TestProblemsetMark(t *testing.T) {
	srv := newLedgerServer(t)
	svc := newProblemsetService(srv, &fakeLedgerMirror{})

	entry, err := svc.Mark(context.Background(), testSession, "https://leetcode.com/problems/word-ladder/")
	if err != nil {
		t.Fatalf("Mark returned error: %v", err)
	}
	if !entry.IsSolvedBy("alice") {
		t.Fatal("returned entry not marked solved")
	}
	if len(srv.marked) != 1 || srv.marked[0] != "2" {
		t.Fatalf("ledger saw marks %#v, want [2]", srv.marked)
	}
}

func TestProblemsetMarkAlreadySolvedIsNoOp(t *testing.T) {
	srv := newLedgerServer(t)
	svc := newProblemsetService(srv, &fakeLedgerMirror{})

	entry, err := svc.Mark(context.Background(), testSession, "https://leetcode.com/problems/two-sum")
	if err != nil {
		t.Fatalf("Mark returned error: %v", err)
	}
	if !entry.IsSolvedBy("alice") {
		t.Fatal("entry should stay solved")
	}
	if len(srv.marked) != 0 {
		t.Fatalf("no ledger write expected, saw %#v", srv.marked)
	}
}

func TestProblemsetMarkUnknownLink(t *testing.T) {
	svc := newProblemsetService(newLedgerServer(t), &fakeLedgerMirror{})

	if _, err := svc.Mark(context.Background(), testSession, "https://leetcode.com/problems/unknown"); !errors.Is(err, domain.ErrProblemNotTracked) {
		t.Fatalf("expected ErrProblemNotTracked, got %v", err)
	}
}

func TestProblemsetMarkLedgerFailureLeavesStateAlone(t *testing.T) {
	srv := newLedgerServer(t)
	srv.failPatch = true
	svc := newProblemsetService(srv, &fakeLedgerMirror{})
	ctx := context.Background()

	_, err := svc.Mark(ctx, testSession, "https://leetcode.com/problems/word-ladder")
	if !errors.Is(err, domain.ErrMarkFailed) {
		t.Fatalf("expected ErrMarkFailed, got %v", err)
	}
	if err.Error() == "" {
		t.Fatal("error message must not be empty")
	}

	// The problem still reads as unsolved
	page, err := svc.List(ctx, testSession, ProblemsetFilter{Query: "ladder"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Problems[0].Solved {
		t.Fatal("failed mark must not flip local state")
	}
}

func TestProblemsetUnmark(t *testing.T) {
	srv := newLedgerServer(t)
	svc := newProblemsetService(srv, &fakeLedgerMirror{})

	entry, err := svc.Unmark(context.Background(), testSession, "https://leetcode.com/problems/two-sum")
	if err != nil {
		t.Fatalf("Unmark returned error: %v", err)
	}
	if entry.IsSolvedBy("alice") {
		t.Fatal("returned entry still solved")
	}
	if len(srv.unmarked) != 1 || srv.unmarked[0] != "1" {
		t.Fatalf("ledger saw unmarks %#v, want [1]", srv.unmarked)
	}
}

func TestProblemsetServesMirrorWhenLedgerDown(t *testing.T) {
	mirror := &fakeLedgerMirror{}
	srv := newLedgerServer(t)
	svc := newProblemsetService(srv, mirror)
	ctx := context.Background()

	// Prime the mirror with a successful fetch, then take the ledger down.
	if _, err := svc.List(ctx, testSession, ProblemsetFilter{}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !mirror.stored {
		t.Fatal("successful fetch should refresh the mirror")
	}
	srv.Close()

	page, err := svc.List(ctx, testSession, ProblemsetFilter{})
	if err != nil {
		t.Fatalf("List with ledger down returned error: %v", err)
	}
	if !page.Stale {
		t.Fatal("mirror-backed page should be flagged stale")
	}
	if page.Total != 3 {
		t.Fatalf("mirror served %d problems, want 3", page.Total)
	}
}

func TestProblemsetLedgerDownNoMirror(t *testing.T) {
	srv := newLedgerServer(t)
	svc := newProblemsetService(srv, &fakeLedgerMirror{})
	srv.Close()

	if _, err := svc.List(context.Background(), testSession, ProblemsetFilter{}); !errors.Is(err, domain.ErrLedgerUnavailable) {
		t.Fatalf("expected ErrLedgerUnavailable, got %v", err)
	}
}

func TestProblemsetAnalytics(t *testing.T) {
	svc := newProblemsetService(newLedgerServer(t), &fakeLedgerMirror{})

	analytics, err := svc.Analytics(context.Background(), testSession)
	if err != nil {
		t.Fatalf("Analytics returned error: %v", err)
	}
	if analytics.TotalSolved != 1 {
		t.Fatalf("total solved = %d, want 1", analytics.TotalSolved)
	}
	if analytics.Difficulty.Easy != 1 || analytics.Difficulty.Hard != 0 {
		t.Fatalf("unexpected difficulty counts: %+v", analytics.Difficulty)
	}
	if len(analytics.TopTags) != 2 {
		t.Fatalf("expected 2 tags, got %#v", analytics.TopTags)
	}
}

func TestProblemsetMarkRefreshesMirror(t *testing.T) {
	srv := newLedgerServer(t)
	mirror := &fakeLedgerMirror{}
	svc := newProblemsetService(srv, mirror)

	if _, err := svc.Mark(context.Background(), testSession, "https://leetcode.com/problems/word-ladder"); err != nil {
		t.Fatalf("Mark returned error: %v", err)
	}

	// The mirror must already hold the confirmed write, so an outage right
	// after it still serves the new state.
	srv.Close()

	page, err := svc.List(context.Background(), testSession, ProblemsetFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !page.Stale {
		t.Fatal("mirror-backed response not flagged stale")
	}
	if page.Solved != 2 {
		t.Fatalf("solved = %d, want 2 after the confirmed mark", page.Solved)
	}
}
