package service

import (
	"regexp"
	"slices"
	"strings"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
)

// wordPattern matches hyphenated compounds first so "well-known" stays one token,
// then plain words with at most one apostrophe contraction.
var wordPattern = regexp.MustCompile(`\b(?:[a-z]+(?:-[a-z]+)+|[a-z]+(?:'[a-z]+)?)\b`)

// TopWords counts the words of all texts, skipping stop words, and returns the
// most frequent ones. Equal counts keep first-seen order.
func TopWords(texts []string, stopWords []string, limit int) []entity.WordFrequency {
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			stop[w] = struct{}{}
		}
	}

	var words tally
	for _, w := range wordPattern.FindAllString(strings.ToLower(strings.Join(texts, " ")), -1) {
		if _, skip := stop[w]; skip {
			continue
		}
		words = words.add(w)
	}

	out := make([]entity.WordFrequency, 0, words.Len())
	for _, w := range words.order {
		out = append(out, entity.WordFrequency{Word: w, Count: words.counts[w]})
	}
	slices.SortStableFunc(out, func(a, b entity.WordFrequency) int {
		return b.Count - a.Count
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
