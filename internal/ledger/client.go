// Package ledger is the HTTP client for the remote CodeLadder ledger, the
// authoritative record of which users solved which problems. This service
// reads the problemset and submission history and writes only mark/unmark.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/codeladder/dashboard/internal/domain"
)

const (
	authorizationHeader = "Authorization"
	usernameHeader      = "x-username"
)

// Client talks to the ledger REST API. Every call authenticates with the
// session's bearer token plus the username header the backend expects.
type Client struct {
	base string
	h    *http.Client
}

// New creates a ledger client for the given base URL.
func New(base string, timeout time.Duration) *Client {
	return &Client{
		base: base,
		h:    &http.Client{Timeout: timeout},
	}
}

// markRequest is the PATCH body for markquestion/unmarkquestion.
type markRequest struct {
	QuestionID string `json:"questionid"`
	User       string `json:"user"`
}

// submissionsDoc is the GET /usersubmissions/{user} response shape.
type submissionsDoc struct {
	Submissions []domain.SubmissionEvent `json:"submissions"`
}

// FetchProblemset calls GET /problemset and returns the tracked problem
// list. A non-2xx response maps to ErrInvalidCredentials for 401/403 and
// ErrLedgerUnavailable otherwise.
func (c *Client) FetchProblemset(ctx context.Context, session domain.Session) ([]domain.LedgerEntry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/problemset", session, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.h.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLedgerUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("problemset", resp)
	}

	var entries []domain.LedgerEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, domain.WrapError(domain.ErrLedgerUnavailable, err.Error())
	}
	return entries, nil
}

// MarkSolved calls PATCH /markquestion for the given question. The ledger
// reports success or failure only; callers update local state only after a
// nil return.
func (c *Client) MarkSolved(ctx context.Context, session domain.Session, questionID string) error {
	return c.patch(ctx, session, "/markquestion", questionID, domain.ErrMarkFailed)
}

// Unmark calls PATCH /unmarkquestion for the given question.
func (c *Client) Unmark(ctx context.Context, session domain.Session, questionID string) error {
	return c.patch(ctx, session, "/unmarkquestion", questionID, domain.ErrUnmarkFailed)
}

func (c *Client) patch(ctx context.Context, session domain.Session, path, questionID string, failure error) error {
	body, err := json.Marshal(markRequest{QuestionID: questionID, User: session.Username})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPatch, path, session, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.h.Do(req)
	if err != nil {
		return domain.WrapError(failure, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return domain.WrapError(failure, fmt.Sprintf("%s returned %d: %s", path, resp.StatusCode, string(b)))
	}
	return nil
}

// FetchUserSubmissions calls GET /usersubmissions/{user} and returns the
// user's submission history for the contribution calendar.
func (c *Client) FetchUserSubmissions(ctx context.Context, session domain.Session) ([]domain.SubmissionEvent, error) {
	path := "/usersubmissions/" + url.PathEscape(session.Username)
	req, err := c.newRequest(ctx, http.MethodGet, path, session, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.h.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrLedgerUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(path, resp)
	}

	var doc submissionsDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, domain.WrapError(domain.ErrLedgerUnavailable, err.Error())
	}
	return doc.Submissions, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, session domain.Session, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(authorizationHeader, "Bearer "+session.UpstreamToken)
	req.Header.Set(usernameHeader, session.Username)
	return req, nil
}

func statusError(path string, resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)
	return domain.WrapError(domain.ErrLedgerUnavailable,
		fmt.Sprintf("%s returned %d: %s", path, resp.StatusCode, string(b)))
}
