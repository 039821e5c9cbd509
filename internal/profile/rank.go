package profile

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/kevinwood15/noshow/internal/dataset"
)

// Tie selects how equal counts are ordered in a ranking.
type Tie int

const (
	// TieFirstSeen keeps equal counts in the order their values first appear.
	TieFirstSeen Tie = iota
	// TieLexical orders equal counts by value.
	TieLexical
)

func (t Tie) String() string {
	if t == TieLexical {
		return "lexical"
	}
	return "first-seen"
}

// ParseTie converts a flag value into a Tie.
func ParseTie(s string) (Tie, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-seen", "first":
		return TieFirstSeen, nil
	case "lexical", "alpha":
		return TieLexical, nil
	default:
		return TieFirstSeen, fmt.Errorf("unknown tie rule %q (use first-seen|lexical)", s)
	}
}

// Frequency is one ranked value.
type Frequency struct {
	Value string
	Count int
}

// RankOptions parameterizes a frequency ranking.
type RankOptions struct {
	// Separator splits each value into tokens; empty counts whole values.
	Separator string
	Tie       Tie
}

// Rank counts the tokens of a column and orders them by descending count.
// Missing values are skipped.
func Rank(t *dataset.Table, column string, opt RankOptions) ([]Frequency, error) {
	s, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	vals := make([]string, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		vals = append(vals, e.String())
	}
	return RankValues(vals, opt), nil
}

// RankValues is Rank over a plain slice.
func RankValues(values []string, opt RankOptions) []Frequency {
	counts := map[string]int{}
	var order []string
	for _, v := range values {
		tokens := []string{v}
		if opt.Separator != "" {
			tokens = strings.Split(v, opt.Separator)
		}
		for _, tok := range tokens {
			if _, ok := counts[tok]; !ok {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}
	out := make([]Frequency, 0, len(order))
	for _, v := range order {
		out = append(out, Frequency{Value: v, Count: counts[v]})
	}
	slices.SortStableFunc(out, func(a, b Frequency) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if opt.Tie == TieLexical {
			return strings.Compare(a.Value, b.Value)
		}
		return 0
	})
	return out
}

// Head returns the n most frequent entries.
func Head(freqs []Frequency, n int) []Frequency {
	if n < 0 || n >= len(freqs) {
		return freqs
	}
	return freqs[:n]
}

// Tail returns the n least frequent entries, still in descending order.
func Tail(freqs []Frequency, n int) []Frequency {
	if n < 0 || n >= len(freqs) {
		return freqs
	}
	return freqs[len(freqs)-n:]
}
