package knowledge

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "any": true, "is": true,
	"there": true, "what": true, "how": true, "our": true, "you": true, "yes": true,
	"can": true, "does": true, "with": true, "this": true, "that": true, "from": true,
}

// Search ranks entries by how many distinct question terms they contain and
// returns at most k, best first. Ties keep load order. Entries with no
// overlap are dropped.
func (b *Base) Search(question string, k int) []Entry {
	terms := tokenize(question)
	if len(terms) == 0 || k <= 0 {
		return nil
	}

	type scored struct {
		entry Entry
		score int
		idx   int
	}
	var ranked []scored
	for i, e := range b.entries {
		words := tokenize(entryText(e))
		score := 0
		for t := range terms {
			if words[t] {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{entry: e, score: score, idx: i})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]Entry, len(ranked))
	for i, r := range ranked {
		out[i] = r.entry
	}
	return out
}

// entryText flattens an entry's section name and field values.
func entryText(e Entry) string {
	var sb strings.Builder
	sb.WriteString(e.Section)
	for _, v := range e.Fields {
		sb.WriteByte(' ')
		sb.WriteString(fmt.Sprint(v))
	}
	return sb.String()
}

// tokenize returns the lower-cased words of s, split on anything that is not
// a letter or digit. Short words and stopwords are skipped.
func tokenize(s string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) < 3 || stopwords[w] {
			continue
		}
		out[w] = true
	}
	return out
}
