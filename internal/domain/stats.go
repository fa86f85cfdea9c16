package domain

import (
	"sort"
	"strings"
)

// Difficulty represents a problem difficulty label carried as a ledger tag.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// DifficultyFromTags picks the difficulty label out of a ledger tag list.
func DifficultyFromTags(tags []string) (Difficulty, bool) {
	for _, t := range tags {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "easy":
			return DifficultyEasy, true
		case "medium":
			return DifficultyMedium, true
		case "hard":
			return DifficultyHard, true
		}
	}
	return "", false
}

// Color returns the display color for a difficulty label.
func (d Difficulty) Color() string {
	switch d {
	case DifficultyEasy:
		return "#1da1f2"
	case DifficultyMedium:
		return "#c49000"
	case DifficultyHard:
		return "#a52626"
	default:
		return "#444"
	}
}

// RatingColor maps a Codeforces problem rating to the site's handle palette.
// A zero rating means unrated and renders black.
func RatingColor(rating int) string {
	switch {
	case rating == 0:
		return "#000000"
	case rating >= 2600:
		return "#ff0000"
	case rating >= 2400:
		return "#ff8c00"
	case rating >= 2100:
		return "#aa00aa"
	case rating >= 1900:
		return "#a0a"
	case rating >= 1600:
		return "#0000ff"
	case rating >= 1400:
		return "#03a89e"
	case rating >= 1200:
		return "#008000"
	default:
		return "#808080"
	}
}

// GroupStats holds solved/total counts for one contest group.
type GroupStats struct {
	Total  int `json:"total_problems"`
	Solved int `json:"solved_problems"`
}

// CompletionPercent is the solved share in percent. A group with no problems
// is 0% complete, never a division by zero.
func (s GroupStats) CompletionPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Solved) / float64(s.Total) * 100
}

// CollectGroupStats sums the solved predicate over every problem of every
// round in the group.
func CollectGroupStats(g ContestGroup, solved SolvedPredicate) GroupStats {
	var stats GroupStats
	for _, c := range g.Contests {
		for _, p := range c.Problems {
			stats.Total++
			if solved(c, p) {
				stats.Solved++
			}
		}
	}
	return stats
}

// OverallStats sums group stats across every loaded group, not just the ones
// surviving the current filter.
func OverallStats(groups []ContestGroup, solved SolvedPredicate) GroupStats {
	var total GroupStats
	for _, g := range groups {
		s := CollectGroupStats(g, solved)
		total.Total += s.Total
		total.Solved += s.Solved
	}
	return total
}

// TagHistogram counts how often a topic tag appears across solved problems.
type TagHistogram map[string]int

// DifficultyCounts tracks solved problems per difficulty label. Difficulty
// tags are kept out of the generic tag histogram and land here instead.
type DifficultyCounts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// TallySolvedTags builds the tag histogram and difficulty counts over every
// ledger entry the user has solved. Tags are trimmed; empty strings are
// dropped.
func TallySolvedTags(ix LedgerIndex, username string) (TagHistogram, DifficultyCounts) {
	hist := make(TagHistogram)
	var diff DifficultyCounts

	for _, e := range ix {
		if !e.IsSolvedBy(username) {
			continue
		}
		for _, tag := range e.Tags {
			label := strings.TrimSpace(tag)
			if label == "" {
				continue
			}
			switch strings.ToLower(label) {
			case "easy":
				diff.Easy++
			case "medium":
				diff.Medium++
			case "hard":
				diff.Hard++
			default:
				hist[label]++
			}
		}
	}
	return hist, diff
}

// TopTags returns the n most frequent tags, count descending with ties
// broken alphabetically so the order is deterministic.
func (h TagHistogram) TopTags(n int) []TagCount {
	out := make([]TagCount, 0, len(h))
	for tag, count := range h {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TagCount is one tag histogram bar.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// SkillGroup is a fixed band of topic skills shown on the skills panel.
type SkillGroup struct {
	Label  string
	Skills []string
}

// SkillGroups is the fixed Advanced/Intermediate/Fundamental banding used by
// the skills panel.
var SkillGroups = []SkillGroup{
	{
		Label: "Advanced",
		Skills: []string{
			"Dynamic Programming", "Union Find", "Topological Sort", "Trie",
			"Segment Tree", "Binary Indexed Tree", "Suffix Array", "Monotonic Stack",
		},
	},
	{
		Label: "Intermediate",
		Skills: []string{
			"Breadth-First Search", "Depth-First Search", "Graph", "Backtracking",
			"Greedy", "Heap", "Priority Queue", "Stack", "Queue",
		},
	},
	{
		Label: "Fundamental",
		Skills: []string{
			"Array", "Matrix", "String", "Hash Table", "Sorting",
			"Two Pointers", "Bit Manipulation", "Math", "Simulation",
		},
	},
}

// SkillStat is one skill with its solved count.
type SkillStat struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// SkillGroupStats is one band of the skills panel.
type SkillGroupStats struct {
	Label  string      `json:"label"`
	Skills []SkillStat `json:"skills"`
	Total  int         `json:"total"`
}

// BuildSkillPanel projects the tag histogram onto the fixed skill bands.
// Within a band skills are sorted by count descending, keeping the band's
// declared order on ties.
func BuildSkillPanel(hist TagHistogram) []SkillGroupStats {
	out := make([]SkillGroupStats, 0, len(SkillGroups))
	for _, group := range SkillGroups {
		stats := SkillGroupStats{Label: group.Label}
		for _, skill := range group.Skills {
			count := hist[skill]
			stats.Skills = append(stats.Skills, SkillStat{Skill: skill, Count: count})
			stats.Total += count
		}
		sort.SliceStable(stats.Skills, func(i, j int) bool {
			return stats.Skills[i].Count > stats.Skills[j].Count
		})
		out = append(out, stats)
	}
	return out
}
