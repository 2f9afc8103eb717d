// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"math"
	"sort"
	"strings"
)

// Vectorizer builds a TF-IDF vector space over tokenized documents and
// projects documents into it. Dimension and vocabulary are fixed once
// fitted and only change on a refit.
//
// The weighting follows the usual smoothed scheme: idf = ln((1+n)/(1+df))+1
// with optional sublinear term frequency (1+ln(tf)), and L2-normalized
// rows, so frequent corpus-wide terms are down-weighted relative to rare,
// discriminating ones.
type Vectorizer struct {
	// MinDocFreq drops terms appearing in fewer documents.
	MinDocFreq int

	// MaxDocRatio drops terms appearing in more than this share of
	// documents. Zero disables the cutoff.
	MaxDocRatio float64

	// MaxFeatures caps the vocabulary, keeping the most frequent terms.
	// Zero means unlimited.
	MaxFeatures int

	// SublinearTF replaces raw counts with 1+ln(tf).
	SublinearTF bool

	// Fitted vocabulary. Terms are sorted so dimensions are stable across
	// runs on identical input.
	Vocabulary []string
	Index      map[string]int
	IDF        []float64
	DocCount   int
}

// Fitted reports whether the vector space has been built.
func (v *Vectorizer) Fitted() bool {
	return v.Index != nil
}

// Dim returns the vocabulary size.
func (v *Vectorizer) Dim() int {
	return len(v.Vocabulary)
}

// Fit builds the vocabulary and IDF table from tokenized documents.
// An all-empty corpus yields a zero-dimension space without error.
func (v *Vectorizer) Fit(docs [][]string) {
	v.DocCount = len(docs)

	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			docFreq[term]++
		}
	}

	maxDF := len(docs)
	if v.MaxDocRatio > 0 {
		maxDF = int(math.Floor(v.MaxDocRatio * float64(len(docs))))
	}
	minDF := v.MinDocFreq
	if minDF < 1 {
		minDF = 1
	}

	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < minDF || df > maxDF {
			continue
		}
		terms = append(terms, term)
	}

	// Cap the vocabulary by document frequency, then sort alphabetically
	// for stable dimension order.
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if docFreq[terms[i]] != docFreq[terms[j]] {
				return docFreq[terms[i]] > docFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	v.Vocabulary = terms
	v.Index = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		v.Index[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
}

// FitTransform fits the space and returns the document matrix.
func (v *Vectorizer) FitTransform(docs [][]string) [][]float64 {
	v.Fit(docs)
	rows := make([][]float64, len(docs))
	for i, doc := range docs {
		rows[i] = v.vectorize(doc)
	}
	return rows
}

// Transform projects documents into the fitted space. Terms outside the
// vocabulary are ignored; a document with no known terms yields the zero
// vector.
func (v *Vectorizer) Transform(docs [][]string) ([][]float64, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}
	rows := make([][]float64, len(docs))
	for i, doc := range docs {
		rows[i] = v.vectorize(doc)
	}
	return rows, nil
}

func (v *Vectorizer) vectorize(doc []string) []float64 {
	vec := make([]float64, len(v.Vocabulary))
	if len(doc) == 0 || len(vec) == 0 {
		return vec
	}

	counts := make(map[int]int, len(doc))
	for _, term := range doc {
		if idx, ok := v.Index[term]; ok {
			counts[idx]++
		}
	}

	var norm float64
	for idx, count := range counts {
		tf := float64(count)
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		val := tf * v.IDF[idx]
		vec[idx] = val
		norm += val * val
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range counts {
			vec[idx] /= norm
		}
	}

	return vec
}

// TagVectorizer is the tag-space feature extractor. Each post's tag list
// is rendered as a whitespace-joined pseudo-document and vectorized with
// plain TF-IDF (no document-frequency cutoffs: tag vocabularies are small
// and every tag is a signal).
type TagVectorizer struct {
	Vectorizer
}

// NewTagVectorizer creates a tag-space vectorizer.
func NewTagVectorizer() *TagVectorizer {
	return &TagVectorizer{Vectorizer: Vectorizer{MinDocFreq: 1}}
}

// FitTransformTags fits on the posts' tag lists and returns one row per post.
func (t *TagVectorizer) FitTransformTags(tagLists [][]string) [][]float64 {
	return t.FitTransform(tagDocuments(tagLists))
}

// TransformTags projects tag lists into the fitted space. A post with no
// tags yields the zero vector.
func (t *TagVectorizer) TransformTags(tagLists [][]string) ([][]float64, error) {
	return t.Transform(tagDocuments(tagLists))
}

// tagDocuments tokenizes tag lists the way the vector space expects:
// tags are joined and re-split on whitespace, so a multi-word tag
// contributes each of its words.
func tagDocuments(tagLists [][]string) [][]string {
	docs := make([][]string, len(tagLists))
	for i, tags := range tagLists {
		doc := strings.Fields(strings.Join(tags, " "))
		docs[i] = doc
	}
	return docs
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-norm vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
