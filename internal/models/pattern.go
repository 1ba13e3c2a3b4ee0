package models

import "fmt"

// Pattern is one of the four mutually exclusive consumption states of a day.
type Pattern string

// Grid labels.
const (
	PatternBoth      Pattern = "both"
	PatternMusicOnly Pattern = "music_only"
	PatternVideoOnly Pattern = "video_only"
	PatternNeither   Pattern = "neither"
)

// Patterns lists every grid label in tie-break priority order.
var Patterns = []Pattern{PatternBoth, PatternMusicOnly, PatternVideoOnly, PatternNeither}

// Classify maps signal presence to a grid label.
func Classify(hasMusic, hasVideo bool) Pattern {
	switch {
	case hasMusic && hasVideo:
		return PatternBoth
	case hasMusic:
		return PatternMusicOnly
	case hasVideo:
		return PatternVideoOnly
	default:
		return PatternNeither
	}
}

// Valid reports whether p is one of the four grid labels.
func (p Pattern) Valid() bool {
	for _, q := range Patterns {
		if p == q {
			return true
		}
	}
	return false
}

// ParsePattern converts a label string to a Pattern.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown pattern %q", s)
	}
	return p, nil
}
