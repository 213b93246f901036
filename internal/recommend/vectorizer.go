package recommend

import (
	"errors"
	"math"

	"resonance/internal/util"
)

// ErrEmptyVocabulary is returned when no document contributes a single
// scorable term. The caller must fail closed rather than rank on an empty
// feature space.
var ErrEmptyVocabulary = errors.New("empty vocabulary: no scorable terms in any document")

// Vectorizer maps documents into a weighted term-frequency space fitted
// on a fixed corpus. Terms outside the fitted vocabulary contribute zero
// weight on Transform; there is no refitting.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// Fit builds the vocabulary and smoothed inverse document frequencies
// over the corpus, excluding English stop words.
func Fit(docs []string) (*Vectorizer, error) {
	vocab := make(map[string]int)
	var df []int
	for _, doc := range docs {
		seen := make(map[int]bool)
		for _, tok := range util.Tokenize(doc) {
			if englishStopWords[tok] {
				continue
			}
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
				df = append(df, 0)
			}
			if !seen[idx] {
				seen[idx] = true
				df[idx]++
			}
		}
	}
	if len(vocab) == 0 {
		return nil, ErrEmptyVocabulary
	}
	n := float64(len(docs))
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}
	return &Vectorizer{vocab: vocab, idf: idf}, nil
}

// Transform maps documents into the fitted space as l2-normalized tf-idf
// vectors. A document with no in-vocabulary terms maps to the zero vector.
func (v *Vectorizer) Transform(docs []string) [][]float64 {
	out := make([][]float64, len(docs))
	for i, doc := range docs {
		vec := make([]float64, len(v.idf))
		for _, tok := range util.Tokenize(doc) {
			if idx, ok := v.vocab[tok]; ok {
				vec[idx]++
			}
		}
		var norm float64
		for j := range vec {
			vec[j] *= v.idf[j]
			norm += vec[j] * vec[j]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j] /= norm
			}
		}
		out[i] = vec
	}
	return out
}

// cosine of two l2-normalized vectors reduces to their dot product.
func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// MeanSimilarities reduces the liked×catalog similarity matrix to one
// score per catalog vector: the mean similarity to every liked vector,
// weighting each historical like equally.
func MeanSimilarities(liked, catalog [][]float64) []float64 {
	scores := make([]float64, len(catalog))
	if len(liked) == 0 {
		return scores
	}
	for j, c := range catalog {
		var sum float64
		for _, l := range liked {
			sum += cosine(l, c)
		}
		scores[j] = sum / float64(len(liked))
	}
	return scores
}
