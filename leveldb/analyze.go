package leveldb

import (
	"iter"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// span is a word of a text and its byte offsets.
type span struct {
	word       string
	start, end int
}

// words yields the letter and digit runs of content with their offsets.
func words(content string) iter.Seq[span] {
	return func(yield func(span) bool) {
		start := -1
		for i, r := range content {
			if unicode.IsLetter(r) || unicode.IsNumber(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(span{word: content[start:i], start: start, end: i}) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(span{word: content[start:], start: start, end: len(content)})
		}
	}
}

// term normalizes one word into its index term. Stop words yield "".
func term(word string) string {
	w := strings.ToLower(word)
	if snowballeng.IsStopWord(w) {
		return ""
	}
	return snowballeng.Stem(w, false)
}

// terms returns the index terms of content with their frequencies.
func terms(content string) map[string]int {
	out := make(map[string]int)
	for s := range words(content) {
		if t := term(s.word); t != "" {
			out[t]++
		}
	}
	return out
}

// fieldWeights scale term frequencies per field.
const (
	titleWeight   = 3
	keywordWeight = 2
	bodyWeight    = 1
)

// weightedTerms returns the scored terms of an entry.
func weightedTerms(e entryFields) map[string]int {
	out := make(map[string]int)
	add := func(content string, weight int) {
		for t, n := range terms(content) {
			out[t] += n * weight
		}
	}
	add(e.title, titleWeight)
	for _, k := range e.keywords {
		add(k, keywordWeight)
	}
	add(e.body, bodyWeight)
	return out
}

type entryFields struct {
	title    string
	keywords []string
	body     string
}
