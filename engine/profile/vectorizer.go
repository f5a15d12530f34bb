// Package profile turns bookmark collections into a single user-interest
// vector, either through a TF-IDF vectorizer fitted on the bookmarks or
// through pre-trained sentence embeddings.
package profile

import (
	"errors"
	"math"
	"strings"
	"unicode"
)

var (
	// ErrEmptyCorpus is returned when fitting on an empty corpus.
	ErrEmptyCorpus = errors.New("profile: cannot fit on empty corpus")
	// ErrNotFitted is returned when transforming before fitting.
	ErrNotFitted = errors.New("profile: vectorizer is not fitted")
)

// DefaultStopWords are removed from documents before weighting.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"has", "have", "he", "her", "his", "how", "i", "if", "in", "is", "it",
	"its", "my", "no", "not", "of", "on", "or", "our", "she", "so", "that",
	"the", "their", "them", "then", "there", "these", "they", "this", "to",
	"was", "we", "were", "what", "when", "where", "which", "who", "will",
	"with", "you", "your",
}

// Vectorizer converts text into TF-IDF weighted vectors. The vocabulary
// and document frequencies are learned once via Fit; Transform then maps
// any text into that fixed space, silently ignoring unseen tokens.
type Vectorizer struct {
	vocab  map[string]int
	idf    []float64
	stop   map[string]struct{}
	fitted bool
}

// NewVectorizer creates an unfitted vectorizer. A nil stopWords slice
// selects DefaultStopWords; an empty non-nil slice disables stop-word
// removal entirely.
func NewVectorizer(stopWords []string) *Vectorizer {
	if stopWords == nil {
		stopWords = DefaultStopWords
	}
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Vectorizer{
		vocab: make(map[string]int),
		stop:  stop,
	}
}

// Fit learns the vocabulary and inverse document frequencies from corpus.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}

	docFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range v.tokenize(doc) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
			if _, ok := v.vocab[tok]; !ok {
				v.vocab[tok] = len(v.vocab)
			}
		}
	}

	n := float64(len(corpus))
	v.idf = make([]float64, len(v.vocab))
	for tok, idx := range v.vocab {
		// Smoothed IDF; keeps terms present in every document from
		// zeroing out entirely.
		v.idf[idx] = math.Log(n/(float64(docFreq[tok])+1)) + 1
	}

	v.fitted = true
	return nil
}

// Transform maps texts into the fitted TF-IDF space. Tokens outside the
// fitted vocabulary contribute nothing, so fully out-of-vocabulary text
// yields the zero vector rather than an error.
func (v *Vectorizer) Transform(texts []string) ([][]float64, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}

	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, len(v.vocab))
		tokens := v.tokenize(text)
		if len(tokens) > 0 {
			tf := make(map[string]float64)
			for _, tok := range tokens {
				tf[tok]++
			}
			for tok, count := range tf {
				if idx, ok := v.vocab[tok]; ok {
					vec[idx] = (count / float64(len(tokens))) * v.idf[idx]
				}
			}
		}
		out[i] = vec
	}
	return out, nil
}

// Fitted reports whether Fit has completed successfully.
func (v *Vectorizer) Fitted() bool { return v.fitted }

// Dims returns the dimensionality of the fitted space (0 if unfitted).
func (v *Vectorizer) Dims() int { return len(v.vocab) }

// tokenize lowercases and splits on any non-alphanumeric rune, dropping
// stop words. URL tokens split naturally on punctuation, so domain names
// and slugs contribute lexical signal.
func (v *Vectorizer) tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, f := range fields {
		if _, skip := v.stop[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}
