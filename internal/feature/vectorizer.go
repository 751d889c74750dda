// Package feature builds the fitted transform that turns an expense
// record into the numeric vector the classifiers consume.
package feature

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenPattern matches runs of two or more word characters, the same
// shape of token the description field is vectorized on.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer is a bag-of-ngrams TF-IDF vectorizer over expense
// descriptions: case-folded, accent-stripped unigrams and bigrams,
// rare terms excluded, vocabulary capped by corpus frequency.
// Fit once on training data; the fitted vocabulary and IDF weights are
// reused unchanged at inference time.
type Vectorizer struct {
	Vocab       map[string]int // term -> column index
	IDF         []float64      // parallel to columns
	MaxFeatures int
	MinDocFreq  int
}

// NewVectorizer returns an unfit vectorizer with the catalog settings:
// vocabulary capped at 500 terms, terms in fewer than 2 documents
// excluded.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		MaxFeatures: 500,
		MinDocFreq:  2,
	}
}

// Fitted reports whether Fit has been called.
func (v *Vectorizer) Fitted() bool {
	return v.Vocab != nil
}

// Width returns the number of output columns.
func (v *Vectorizer) Width() int {
	return len(v.IDF)
}

// Fit learns the vocabulary and IDF weights from a corpus of
// descriptions.
func (v *Vectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return fmt.Errorf("cannot fit vectorizer on an empty corpus")
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range docs {
		counts := countTerms(doc)
		for term, n := range counts {
			docFreq[term]++
			termFreq[term] += n
		}
	}

	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df >= v.MinDocFreq {
			kept = append(kept, term)
		}
	}

	if v.MaxFeatures > 0 && len(kept) > v.MaxFeatures {
		// Keep the highest-frequency terms, ties alphabetical.
		sort.Slice(kept, func(a, b int) bool {
			if termFreq[kept[a]] != termFreq[kept[b]] {
				return termFreq[kept[a]] > termFreq[kept[b]]
			}
			return kept[a] < kept[b]
		})
		kept = kept[:v.MaxFeatures]
	}

	// Column order is alphabetical over the final vocabulary.
	sort.Strings(kept)

	v.Vocab = make(map[string]int, len(kept))
	v.IDF = make([]float64, len(kept))
	n := float64(len(docs))
	for i, term := range kept {
		v.Vocab[term] = i
		// Smoothed IDF, never zero.
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return nil
}

// Transform maps one description to its L2-normalized TF-IDF vector.
func (v *Vectorizer) Transform(doc string) []float64 {
	out := make([]float64, len(v.IDF))
	if len(v.IDF) == 0 {
		return out
	}

	var norm2 float64
	for term, tf := range countTerms(doc) {
		col, ok := v.Vocab[term]
		if !ok {
			continue
		}
		w := float64(tf) * v.IDF[col]
		out[col] = w
		norm2 += w * w
	}

	if norm2 > 0 {
		scale := 1 / math.Sqrt(norm2)
		for i := range out {
			out[i] *= scale
		}
	}

	return out
}

// countTerms tokenizes one document and counts its unigrams and
// bigrams.
func countTerms(doc string) map[string]int {
	tokens := tokenPattern.FindAllString(normalize(doc), -1)
	counts := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		counts[tok]++
		if i+1 < len(tokens) {
			counts[tok+" "+tokens[i+1]]++
		}
	}
	return counts
}

// normalize case-folds and strips combining accent marks so that
// "Farmácia" and "farmacia" share a term.
func normalize(s string) string {
	s = strings.ToLower(s)
	// The transform chain is stateful, so build one per call; it may
	// run concurrently from request handlers.
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return stripped
}
