package checksum

import "testing"

func TestSumStable(t *testing.T) {
	a := Sum([]byte("flowstate"))
	if a != Sum([]byte("flowstate")) {
		t.Error("digest should be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64 hex chars", len(a))
	}
	if a == Sum([]byte("flowstate\n")) {
		t.Error("different content should differ")
	}
}

func TestMatches(t *testing.T) {
	tag := ETag([]byte("{}"))
	cases := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"*", true},
		{tag, true},
		{`"other", ` + tag, true},
		{"W/" + tag, true},
		{`"other"`, false},
	}
	for _, c := range cases {
		if got := Matches(c.header, tag); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.header, got, c.want)
		}
	}
}
