package domain

import "strings"

// leetCodeProblemPrefix is the URL prefix shared by every LeetCode problem page.
const leetCodeProblemPrefix = "https://leetcode.com/problems/"

// NormalizeLink canonicalizes a problem URL so records from independent feeds
// can be joined by identity. The only canonicalization applied is stripping a
// single trailing slash; case and query strings are left alone. Idempotent.
func NormalizeLink(link string) string {
	if link == "" {
		return ""
	}
	return strings.TrimSuffix(link, "/")
}

// ProblemNameFromLink derives a human-readable problem name from a LeetCode
// problem URL, e.g. "https://leetcode.com/problems/two-sum/" -> "two sum".
// Non-LeetCode links are returned slug-converted as-is.
func ProblemNameFromLink(link string) string {
	if link == "" {
		return ""
	}
	name := strings.TrimPrefix(link, leetCodeProblemPrefix)
	name = strings.TrimSuffix(name, "/")
	return strings.ReplaceAll(name, "-", " ")
}
