package textutil

import (
	"math"
	"strings"
	"unicode"
)

// minTokenRunes drops particles and stray letters. Two runes keeps Korean
// nouns such as "재즈" while still filtering "a" and "of".
const minTokenRunes = 2

// stopWords are common English words that carry no signal when comparing
// reviews.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"was": {}, "are": {}, "but": {}, "its": {}, "his": {}, "her": {},
	"from": {}, "into": {}, "has": {}, "have": {}, "you": {}, "not": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "is": {}, "it": {}, "an": {},
	"as": {}, "at": {}, "by": {}, "or": {}, "be": {},
}

// TermVector is a term-frequency vector used to compare two pieces of prose.
type TermVector struct {
	weights map[string]float64
	norm    float64
}

// NewTermVector builds a vector from text. Returns nil when the text yields
// no usable tokens.
func NewTermVector(text string) *TermVector {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return newVector(counts)
}

func newVector(weights map[string]float64) *TermVector {
	var sum float64
	for _, w := range weights {
		sum += w * w
	}
	if len(weights) == 0 || sum == 0 {
		return nil
	}
	return &TermVector{weights: weights, norm: math.Sqrt(sum)}
}

// Tokenize lowercases text and splits it on anything that is not a letter
// or digit, dropping short tokens and stop words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(fields))
	for _, token := range fields {
		if len([]rune(token)) < minTokenRunes {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Len returns the number of distinct terms.
func (v *TermVector) Len() int {
	if v == nil {
		return 0
	}
	return len(v.weights)
}

// Weighted returns a copy scaled by idf. Terms absent from idf keep their
// weight; terms weighted to zero are dropped.
func (v *TermVector) Weighted(idf map[string]float64) *TermVector {
	if v == nil || len(idf) == 0 {
		return v
	}
	weighted := make(map[string]float64, len(v.weights))
	for token, count := range v.weights {
		w := count
		if factor, ok := idf[token]; ok {
			w *= factor
		}
		if w == 0 {
			continue
		}
		weighted[token] = w
	}
	return newVector(weighted)
}

// Cosine computes the cosine similarity of a and b, or 0 when either is nil.
func Cosine(a, b *TermVector) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	if len(b.weights) < len(a.weights) {
		a, b = b, a
	}
	var dot float64
	for token, w := range a.weights {
		if other, ok := b.weights[token]; ok {
			dot += w * other
		}
	}
	return dot / (a.norm * b.norm)
}

// Corpus collects document frequencies for IDF weighting.
type Corpus struct {
	docs    int
	docFreq map[string]int
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{docFreq: make(map[string]int)}
}

// Add registers the distinct terms of v.
func (c *Corpus) Add(v *TermVector) {
	if c == nil || v == nil {
		return
	}
	c.docs++
	for token := range v.weights {
		c.docFreq[token]++
	}
}

// IDF returns log((N+1)/(1+df)) per term.
func (c *Corpus) IDF() map[string]float64 {
	if c == nil || c.docs == 0 {
		return nil
	}
	idf := make(map[string]float64, len(c.docFreq))
	n := float64(c.docs)
	for term, df := range c.docFreq {
		idf[term] = math.Log((n + 1) / (1 + float64(df)))
	}
	return idf
}
