package domain

import (
	"regexp"
	"strings"
)

// ProblemRecord is a problem as it appears in a judge feed. Records are
// immutable once loaded; identity across feeds is the normalized Link.
type ProblemRecord struct {
	Code        string  `json:"code"`
	Name        string  `json:"name,omitempty"`
	Link        string  `json:"link,omitempty"`
	Points      int     `json:"points,omitempty"`
	Rating      int     `json:"rating,omitempty"`
	Accuracy    float64 `json:"accuracy,omitempty"`
	Submissions int     `json:"submissions,omitempty"`
}

// ContestRecord is one contest round from a judge feed. A round belongs to
// exactly one contest group.
type ContestRecord struct {
	Code     string          `json:"contest"`
	Name     string          `json:"name,omitempty"`
	Division string          `json:"division,omitempty"`
	URL      string          `json:"url,omitempty"`
	Problems []ProblemRecord `json:"problems"`
}

// ContestGroup clusters sibling rounds of one event, e.g. START191A-D under
// START191. Groups are derived per request and never persisted.
type ContestGroup struct {
	Key      string          `json:"group"`
	Contests []ContestRecord `json:"contests"`
}

// groupPrefixPattern extracts the shared event prefix from a round code:
// a leading run of capital letters followed by digits (START191A -> START191).
var groupPrefixPattern = regexp.MustCompile(`^([A-Z]+\d+)`)

// GroupKey returns the group key for a contest code and whether the prefix
// rule matched. Codes that do not match form singleton groups keyed by the
// full code, so unrelated contests never collide under a shared fallback key.
func GroupKey(code string) (string, bool) {
	m := groupPrefixPattern.FindStringSubmatch(code)
	if m == nil {
		return code, false
	}
	return m[1], true
}

// GroupContests partitions rounds into contest groups. Group order follows
// first appearance of each key and round order within a group is preserved,
// so grouping is a pure, stable function of its input.
func GroupContests(records []ContestRecord) []ContestGroup {
	var groups []ContestGroup
	index := make(map[string]int)

	for _, rec := range records {
		key, _ := GroupKey(rec.Code)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ContestGroup{Key: key})
		}
		groups[i].Contests = append(groups[i].Contests, rec)
	}
	return groups
}

// SolvedPredicate reports whether a problem counts as solved for the current
// user. CodeChef resolves it from the local solved-cache, the other
// dashboards from the ledger index.
type SolvedPredicate func(c ContestRecord, p ProblemRecord) bool

// FilterOptions controls FilterGroups. ExtraText supplies searchable strings
// that are not part of the feed record itself, such as ledger tags.
type FilterOptions struct {
	Query         string
	HideCompleted bool
	Solved        SolvedPredicate
	ExtraText     func(p ProblemRecord) []string
}

// FilterGroups applies free-text search and the hide-completed toggle over
// grouped contests. It is pure and order-preserving: the input slice is never
// mutated and surviving groups keep their relative order. A group passes the
// search when its key, any round's code, name or division, or any problem's
// code, name or extra text contains the query (case-insensitive). The
// hide-completed toggle removes only fully solved groups; partially solved
// groups always stay visible.
func FilterGroups(groups []ContestGroup, opts FilterOptions) []ContestGroup {
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	var out []ContestGroup
	for _, g := range groups {
		if query != "" && !groupMatches(g, query, opts.ExtraText) {
			continue
		}
		if opts.HideCompleted && opts.Solved != nil {
			stats := CollectGroupStats(g, opts.Solved)
			if stats.Total > 0 && stats.Solved == stats.Total {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

func groupMatches(g ContestGroup, query string, extra func(p ProblemRecord) []string) bool {
	if strings.Contains(strings.ToLower(g.Key), query) {
		return true
	}
	for _, c := range g.Contests {
		if strings.Contains(strings.ToLower(c.Code), query) ||
			strings.Contains(strings.ToLower(c.Name), query) ||
			divisionMatches(c.Division, query) {
			return true
		}
		for _, p := range c.Problems {
			if strings.Contains(strings.ToLower(p.Code), query) ||
				strings.Contains(strings.ToLower(p.Name), query) {
				return true
			}
			if extra == nil {
				continue
			}
			for _, s := range extra(p) {
				if strings.Contains(strings.ToLower(s), query) {
					return true
				}
			}
		}
	}
	return false
}

// divisionMatches checks the query against the division label and its short
// form, so "div 2" finds contests labelled "Division 2".
func divisionMatches(division, query string) bool {
	label := strings.ToLower(division)
	if strings.Contains(label, query) {
		return true
	}
	return strings.Contains(strings.ReplaceAll(label, "division", "div"), query)
}

// ContestType classifies a LeetCode contest round.
type ContestType string

const (
	ContestTypeWeekly   ContestType = "weekly"
	ContestTypeBiweekly ContestType = "biweekly"
	ContestTypeOther    ContestType = "other"
)

// ContestTypeOf classifies a round from its URL or name. Biweekly is checked
// first because "biweekly" contains "weekly".
func ContestTypeOf(url, name string) ContestType {
	u := strings.ToLower(url)
	n := strings.ToLower(name)
	switch {
	case strings.Contains(u, "biweekly") || strings.Contains(n, "biweekly"):
		return ContestTypeBiweekly
	case strings.Contains(u, "weekly") || strings.Contains(n, "weekly"):
		return ContestTypeWeekly
	default:
		return ContestTypeOther
	}
}

// ContestCategory selects a slice of the Codeforces contest archive.
type ContestCategory string

const (
	CategoryAll         ContestCategory = "all"
	CategoryDiv1        ContestCategory = "div1"
	CategoryDiv2        ContestCategory = "div2"
	CategoryDiv3        ContestCategory = "div3"
	CategoryDiv4        ContestCategory = "div4"
	CategoryDiv1Plus2   ContestCategory = "div1+div2"
	CategoryEducational ContestCategory = "edu"
	CategoryGlobal      ContestCategory = "global"
	CategoryICPC        ContestCategory = "icpc"
	CategoryOthers      ContestCategory = "others"
)

var (
	reDiv1        = regexp.MustCompile(`(?i)Div\. 1(?:[^+]|$)`)
	reDiv2        = regexp.MustCompile(`(?i)Div\. 2`)
	reDiv3        = regexp.MustCompile(`(?i)Div\. 3`)
	reDiv4        = regexp.MustCompile(`(?i)Div\. 4`)
	reDiv1Plus2   = regexp.MustCompile(`(?i)Div\. 1 \+ Div\. 2`)
	reDivAny      = regexp.MustCompile(`(?i)Div\. [1-4]`)
	reEducational = regexp.MustCompile(`(?i)Educational`)
	reGlobal      = regexp.MustCompile(`(?i)Global`)
	reICPC        = regexp.MustCompile(`(?i)ICPC|ACM`)
)

// CategoryPredicate returns a match function over Codeforces contest names
// for the given category. Unknown categories match everything.
func CategoryPredicate(cat ContestCategory) func(name string) bool {
	switch cat {
	case CategoryDiv1:
		return func(name string) bool {
			return reDiv1.MatchString(name) && !reDiv2.MatchString(name)
		}
	case CategoryDiv2:
		return func(name string) bool {
			return reDiv2.MatchString(name) && !reDiv1.MatchString(name) &&
				!reDiv3.MatchString(name) && !reEducational.MatchString(name)
		}
	case CategoryDiv3:
		return reDiv3.MatchString
	case CategoryDiv4:
		return reDiv4.MatchString
	case CategoryDiv1Plus2:
		return reDiv1Plus2.MatchString
	case CategoryEducational:
		return reEducational.MatchString
	case CategoryGlobal:
		return reGlobal.MatchString
	case CategoryICPC:
		return reICPC.MatchString
	case CategoryOthers:
		return func(name string) bool {
			return !reDivAny.MatchString(name) && !reEducational.MatchString(name) &&
				!reGlobal.MatchString(name) && !reICPC.MatchString(name)
		}
	default:
		return func(string) bool { return true }
	}
}
