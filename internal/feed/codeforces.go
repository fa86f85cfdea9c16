package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/codeladder/dashboard/internal/domain"
)

// CodeforcesClient talks to the public Codeforces API for live submission
// status. Only user.status is consumed.
type CodeforcesClient struct {
	base string
	h    *http.Client
}

// NewCodeforcesClient creates a client for the given API base URL, e.g.
// "https://codeforces.com/api".
func NewCodeforcesClient(base string, timeout time.Duration) *CodeforcesClient {
	return &CodeforcesClient{
		base: base,
		h:    &http.Client{Timeout: timeout},
	}
}

// CodeforcesSubmission is one entry of a user.status response.
type CodeforcesSubmission struct {
	Problem struct {
		ContestID int    `json:"contestId"`
		Index     string `json:"index"`
	} `json:"problem"`
	Verdict string `json:"verdict"`
}

type userStatusDoc struct {
	Status  string                 `json:"status"`
	Comment string                 `json:"comment"`
	Result  []CodeforcesSubmission `json:"result"`
}

// FetchUserStatus calls GET user.status?handle=<handle> and returns the
// user's submission list. No retries; a failed call surfaces as an error.
func (c *CodeforcesClient) FetchUserStatus(ctx context.Context, handle string) ([]CodeforcesSubmission, error) {
	if handle == "" {
		return nil, domain.ErrHandleRequired
	}

	u := c.base + "/user.status?handle=" + url.QueryEscape(handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.h.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrJudgeUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.WrapError(domain.ErrJudgeUnavailable,
			fmt.Sprintf("user.status returned %d", resp.StatusCode))
	}

	var doc userStatusDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, domain.WrapError(domain.ErrJudgeUnavailable, err.Error())
	}
	if doc.Status != "OK" {
		msg := doc.Comment
		if msg == "" {
			msg = "user.status status " + doc.Status
		}
		return nil, domain.WrapError(domain.ErrJudgeUnavailable, msg)
	}
	return doc.Result, nil
}

// ProblemStatusKey identifies a problem across the problemset feed and the
// live status overlay, "contestId-index".
func ProblemStatusKey(contestID int, index string) string {
	return fmt.Sprintf("%d-%s", contestID, index)
}

// StatusSets folds submissions into solved and attempted key sets. A problem
// with at least one OK verdict is solved regardless of other attempts.
func StatusSets(subs []CodeforcesSubmission) (solved, attempted map[string]bool) {
	solved = make(map[string]bool)
	attempted = make(map[string]bool)
	for _, sub := range subs {
		if sub.Problem.ContestID == 0 || sub.Problem.Index == "" {
			continue
		}
		key := ProblemStatusKey(sub.Problem.ContestID, sub.Problem.Index)
		if sub.Verdict == "OK" {
			solved[key] = true
		} else {
			attempted[key] = true
		}
	}
	return solved, attempted
}
