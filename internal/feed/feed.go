package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
)

// Feed snapshot file names, matching the static files the dashboards have
// always been served from.
const (
	ProblemsetFile = "problemset.json"
	ContestsFile   = "contest.json"
	CodeChefFile   = "codechef-contest.json"
	LeetCodeFile   = "leetcode.json"
)

// problemsetDoc is the Codeforces problemset dump shape.
type problemsetDoc struct {
	Status string `json:"status"`
	Result struct {
		Problems []struct {
			ContestID int    `json:"contestId"`
			Index     string `json:"index"`
			Name      string `json:"name"`
			Rating    int    `json:"rating"`
		} `json:"problems"`
	} `json:"result"`
}

// contestsDoc is the Codeforces contest list shape.
type contestsDoc struct {
	Status string `json:"status"`
	Result []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"result"`
}

// codechefContest is one round of the CodeChef archive dump.
type codechefContest struct {
	Contest  string `json:"contest"`
	Division string `json:"division"`
	Problems []struct {
		Code        string  `json:"code"`
		Name        string  `json:"name"`
		URL         string  `json:"url"`
		Accuracy    float64 `json:"accuracy"`
		Submissions int     `json:"submissions"`
	} `json:"problems"`
}

// leetcodeContest is one round of the LeetCode archive dump.
type leetcodeContest struct {
	Contest  string `json:"contest"`
	URL      string `json:"url"`
	Problems []struct {
		Link   string `json:"link"`
		Points int    `json:"points"`
	} `json:"problems"`
}

// CodeforcesProblem is one normalized row of the Codeforces problem table.
type CodeforcesProblem struct {
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
}

// Loader reads the judge feed files from a snapshot directory.
type Loader struct {
	dir    string
	logger *zap.Logger
}

// NewLoader creates a feed loader over the given directory.
func NewLoader(dir string, logger *zap.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// Load reads and normalizes all four feed files into a fresh immutable
// snapshot. Any unreadable or malformed file fails the whole load so a
// partially refreshed snapshot can never replace a good one.
func (l *Loader) Load() (*Snapshot, error) {
	snap := &Snapshot{
		ContestNames: make(map[int]string),
		LoadedAt:     time.Now(),
	}

	var psDoc problemsetDoc
	if err := l.readJSON(ProblemsetFile, &psDoc); err != nil {
		return nil, err
	}
	if psDoc.Status != "OK" {
		return nil, domain.WrapError(domain.ErrFeedMalformed, ProblemsetFile+": status "+psDoc.Status)
	}
	for _, p := range psDoc.Result.Problems {
		snap.Codeforces = append(snap.Codeforces, CodeforcesProblem{
			ContestID: p.ContestID,
			Index:     p.Index,
			Name:      p.Name,
			Rating:    p.Rating,
		})
	}

	var csDoc contestsDoc
	if err := l.readJSON(ContestsFile, &csDoc); err != nil {
		return nil, err
	}
	for _, c := range csDoc.Result {
		snap.ContestNames[c.ID] = c.Name
	}

	var ccDoc []codechefContest
	if err := l.readJSON(CodeChefFile, &ccDoc); err != nil {
		return nil, err
	}
	for _, c := range ccDoc {
		rec := domain.ContestRecord{Code: c.Contest, Division: c.Division}
		for _, p := range c.Problems {
			rec.Problems = append(rec.Problems, domain.ProblemRecord{
				Code:        p.Code,
				Name:        p.Name,
				Link:        domain.NormalizeLink(p.URL),
				Accuracy:    p.Accuracy,
				Submissions: p.Submissions,
			})
		}
		snap.CodeChef = append(snap.CodeChef, rec)
	}

	var lcDoc []leetcodeContest
	if err := l.readJSON(LeetCodeFile, &lcDoc); err != nil {
		return nil, err
	}
	for _, c := range lcDoc {
		code := c.Contest
		if code == "" {
			code = c.URL
		}
		rec := domain.ContestRecord{Code: code, URL: c.URL}
		for _, p := range c.Problems {
			rec.Problems = append(rec.Problems, domain.ProblemRecord{
				Link:   domain.NormalizeLink(p.Link),
				Name:   domain.ProblemNameFromLink(p.Link),
				Points: p.Points,
			})
		}
		snap.LeetCode = append(snap.LeetCode, rec)
	}

	l.logger.Info("Feed snapshot loaded",
		zap.String("dir", l.dir),
		zap.Int("codeforces_problems", len(snap.Codeforces)),
		zap.Int("codeforces_contests", len(snap.ContestNames)),
		zap.Int("codechef_rounds", len(snap.CodeChef)),
		zap.Int("leetcode_rounds", len(snap.LeetCode)),
	)
	return snap, nil
}

func (l *Loader) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return domain.WrapError(domain.ErrFeedUnavailable, fmt.Sprintf("read %s: %v", name, err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return domain.WrapError(domain.ErrFeedMalformed, fmt.Sprintf("decode %s: %v", name, err))
	}
	return nil
}
