package domain

import "testing"

func TestNormalizeLink(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://leetcode.com/problems/two-sum/", "https://leetcode.com/problems/two-sum"},
		{"https://leetcode.com/problems/two-sum", "https://leetcode.com/problems/two-sum"},
		{"", ""},
		{"/", ""},
	}
	for _, c := range cases {
		if got := NormalizeLink(c.in); got != c.want {
			t.Errorf("NormalizeLink(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeLinkIdempotent(t *testing.T) {
	links := []string{
		"https://leetcode.com/problems/two-sum/",
		"https://www.codechef.com/problems/MAXSEGGCD",
		"",
	}
	for _, link := range links {
		once := NormalizeLink(link)
		if twice := NormalizeLink(once); twice != once {
			t.Errorf("NormalizeLink not idempotent for %q: %q then %q", link, once, twice)
		}
	}
}

func TestProblemNameFromLink(t *testing.T) {
	got := ProblemNameFromLink("https://leetcode.com/problems/count-beautiful-splits-in-an-array/")
	want := "count beautiful splits in an array"
	if got != want {
		t.Fatalf("ProblemNameFromLink = %q, want %q", got, want)
	}
}
