package domain

import "sort"

// LedgerEntry is the remote ledger's record of one tracked problem. The
// ledger owns these; locally they are read-mostly reference data and any
// mutation produces a fresh copy via WithSolved/WithoutSolved.
type LedgerEntry struct {
	QuestionID string   `json:"question_id"`
	Title      string   `json:"title"`
	Link       string   `json:"link"`
	Tags       []string `json:"tags"`
	SolvedBy   []string `json:"solved_by"`
}

// IsSolvedBy reports whether the entry's solved_by list contains the user.
func (e LedgerEntry) IsSolvedBy(username string) bool {
	for _, u := range e.SolvedBy {
		if u == username {
			return true
		}
	}
	return false
}

// WithSolved returns a copy of the entry with the user appended to
// solved_by. The receiver is left untouched; appending twice is a no-op.
func (e LedgerEntry) WithSolved(username string) LedgerEntry {
	if e.IsSolvedBy(username) {
		return e
	}
	solvedBy := make([]string, 0, len(e.SolvedBy)+1)
	solvedBy = append(solvedBy, e.SolvedBy...)
	e.SolvedBy = append(solvedBy, username)
	return e
}

// WithoutSolved returns a copy of the entry with the user removed from
// solved_by.
func (e LedgerEntry) WithoutSolved(username string) LedgerEntry {
	solvedBy := make([]string, 0, len(e.SolvedBy))
	for _, u := range e.SolvedBy {
		if u != username {
			solvedBy = append(solvedBy, u)
		}
	}
	e.SolvedBy = solvedBy
	return e
}

// LedgerIndex joins feed problems to ledger entries by normalized link.
type LedgerIndex map[string]LedgerEntry

// BuildLedgerIndex builds a fresh index from a ledger fetch. Entries without
// a link are skipped; duplicate links are last-write-wins, matching how the
// upstream data has always been folded.
func BuildLedgerIndex(entries []LedgerEntry) LedgerIndex {
	ix := make(LedgerIndex, len(entries))
	for _, e := range entries {
		if e.Link == "" {
			continue
		}
		ix[NormalizeLink(e.Link)] = e
	}
	return ix
}

// Lookup resolves a problem link to its ledger entry.
func (ix LedgerIndex) Lookup(link string) (LedgerEntry, bool) {
	if link == "" {
		return LedgerEntry{}, false
	}
	e, ok := ix[NormalizeLink(link)]
	return e, ok
}

// IsSolved reports whether the problem behind link is solved by the user.
// An empty or unmatched link is simply not solved, never an error.
func (ix LedgerIndex) IsSolved(link, username string) bool {
	e, ok := ix.Lookup(link)
	return ok && e.IsSolvedBy(username)
}

// WithEntry returns a copy of the index with the given entry replacing the
// one under its normalized link. Callers apply confirmed mark/unmark results
// this way so an in-flight reader never observes a half-updated index.
func (ix LedgerIndex) WithEntry(e LedgerEntry) LedgerIndex {
	out := make(LedgerIndex, len(ix)+1)
	for k, v := range ix {
		out[k] = v
	}
	if e.Link != "" {
		out[NormalizeLink(e.Link)] = e
	}
	return out
}

// Entries returns the indexed entries sorted by link.
func (ix LedgerIndex) Entries() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(ix))
	for _, e := range ix {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Link < out[j].Link })
	return out
}

// UnlinkedProblem is a feed problem with no matching ledger entry. These are
// collected for visibility instead of failing the join.
type UnlinkedProblem struct {
	Contest string `json:"contest"`
	Link    string `json:"link"`
	Name    string `json:"name"`
}

// CollectUnlinked walks grouped contests and returns every problem whose
// link is missing from the index, in feed order.
func CollectUnlinked(records []ContestRecord, ix LedgerIndex) []UnlinkedProblem {
	var missing []UnlinkedProblem
	for _, c := range records {
		contest := c.Code
		if contest == "" {
			contest = c.URL
		}
		for _, p := range c.Problems {
			if _, ok := ix.Lookup(p.Link); !ok {
				missing = append(missing, UnlinkedProblem{
					Contest: contest,
					Link:    p.Link,
					Name:    ProblemNameFromLink(p.Link),
				})
			}
		}
	}
	return missing
}
