package errors

import (
	"cmp"
	"slices"
	"strings"
)

// MaxSuggestions is the maximum number of suggestions to return.
const MaxSuggestions = 3

// Suggestion is a candidate name close to a misspelled one.
type Suggestion struct {
	Value    string
	Distance int
}

// SuggestSimilar returns the candidates closest to name, nearest first.
// Dashes and underscores are treated alike, so "arity-chek" finds
// "arity_check". Short names tolerate fewer edits.
func SuggestSimilar(name string, candidates []string) []Suggestion {
	name = normalizeName(name)
	if name == "" {
		return nil
	}
	limit := 3
	switch {
	case len(name) <= 3:
		limit = 1
	case len(name) <= 5:
		limit = 2
	}
	var out []Suggestion
	for _, c := range candidates {
		norm := normalizeName(c)
		if norm == "" || norm == name {
			continue
		}
		if d := editDistance(name, norm); d <= limit {
			out = append(out, Suggestion{Value: c, Distance: d})
		}
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// FormatSuggestions renders suggestions as a hint, or "" when empty.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "Did you mean '" + suggestions[0].Value + "'?"
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s.Value + "'"
	}
	return "Did you mean one of: " + strings.Join(quoted, ", ") + "?"
}

func normalizeName(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

// editDistance is the Levenshtein distance between a and b, computed over
// runes with a single rolling row.
func editDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) > len(br) {
		ar, br = br, ar
	}
	row := make([]int, len(ar)+1)
	for i := range row {
		row[i] = i
	}
	for j := 1; j <= len(br); j++ {
		diag := row[0]
		row[0] = j
		for i := 1; i <= len(ar); i++ {
			above := row[i]
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			row[i] = min(row[i]+1, row[i-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(ar)]
}
