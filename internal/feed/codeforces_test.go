package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codeladder/dashboard/internal/domain"
)

func TestFetchUserStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user.status" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("handle"); got != "tourist" {
			t.Errorf("handle = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": [
				{ "problem": { "contestId": 2042, "index": "A" }, "verdict": "OK" },
				{ "problem": { "contestId": 2042, "index": "B" }, "verdict": "WRONG_ANSWER" },
				{ "problem": { "contestId": 2042, "index": "B" }, "verdict": "OK" }
			]
		}`))
	}))
	defer srv.Close()

	client := NewCodeforcesClient(srv.URL, time.Second)
	subs, err := client.FetchUserStatus(context.Background(), "tourist")
	if err != nil {
		t.Fatalf("FetchUserStatus returned error: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(subs))
	}
}

func TestFetchUserStatusEmptyHandle(t *testing.T) {
	client := NewCodeforcesClient("http://unused", time.Second)
	if _, err := client.FetchUserStatus(context.Background(), ""); !errors.Is(err, domain.ErrHandleRequired) {
		t.Fatalf("expected ErrHandleRequired, got %v", err)
	}
}

func TestFetchUserStatusFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "FAILED", "comment": "handle: User not found"}`))
	}))
	defer srv.Close()

	client := NewCodeforcesClient(srv.URL, time.Second)
	if _, err := client.FetchUserStatus(context.Background(), "nobody"); !errors.Is(err, domain.ErrJudgeUnavailable) {
		t.Fatalf("expected ErrJudgeUnavailable, got %v", err)
	}
}

func TestStatusSets(t *testing.T) {
	subs := []CodeforcesSubmission{
		{Verdict: "OK"},
	}
	subs[0].Problem.ContestID = 2042
	subs[0].Problem.Index = "A"

	wrongThenRight := CodeforcesSubmission{Verdict: "WRONG_ANSWER"}
	wrongThenRight.Problem.ContestID = 2042
	wrongThenRight.Problem.Index = "B"
	subs = append(subs, wrongThenRight)

	rightB := CodeforcesSubmission{Verdict: "OK"}
	rightB.Problem.ContestID = 2042
	rightB.Problem.Index = "B"
	subs = append(subs, rightB)

	onlyWrong := CodeforcesSubmission{Verdict: "TIME_LIMIT_EXCEEDED"}
	onlyWrong.Problem.ContestID = 2035
	onlyWrong.Problem.Index = "C"
	subs = append(subs, onlyWrong)

	solved, attempted := StatusSets(subs)

	if !solved[ProblemStatusKey(2042, "A")] {
		t.Error("2042-A should be solved")
	}
	if !solved[ProblemStatusKey(2042, "B")] {
		t.Error("an OK after a wrong attempt still counts as solved")
	}
	if solved[ProblemStatusKey(2035, "C")] {
		t.Error("2035-C should not be solved")
	}
	if !attempted[ProblemStatusKey(2035, "C")] {
		t.Error("2035-C should be attempted")
	}
}
