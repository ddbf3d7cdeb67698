package ml

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// tokenPattern keeps runs of two or more word runes.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// maxNgram bounds the longest n-gram a model may ask for.
const maxNgram = 8

// VectorizerSpec is the serialized form of a Vectorizer.
type VectorizerSpec struct {
	Lowercase   *bool          `json:"lowercase,omitempty"`
	NgramRange  [2]int         `json:"ngram_range"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf,omitempty"`
	SublinearTF bool           `json:"sublinear_tf,omitempty"`
	Norm        string         `json:"norm,omitempty"`
	StopWords   []string       `json:"stop_words,omitempty"`
}

// Vectorizer turns a document into a dense term-weight vector over a fixed vocabulary.
type Vectorizer struct {
	vocabulary map[string]int
	stopWords  map[string]struct{}
	idf        []float64
	norm       string
	minN       int
	maxN       int
	lowercase  bool
	sublinear  bool
}

func newVectorizer(spec VectorizerSpec) (*Vectorizer, error) {
	n := len(spec.Vocabulary)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrIncompatibleModel)
	}

	seen := make([]bool, n)
	for term, idx := range spec.Vocabulary {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: term %q has index %d outside [0,%d)", ErrIncompatibleModel, term, idx, n)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: duplicate vocabulary index %d", ErrIncompatibleModel, idx)
		}
		seen[idx] = true
	}

	if spec.IDF != nil && len(spec.IDF) != n {
		return nil, fmt.Errorf("%w: idf has %d weights for %d terms", ErrIncompatibleModel, len(spec.IDF), n)
	}

	minN, maxN := spec.NgramRange[0], spec.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN || maxN > maxNgram {
		return nil, fmt.Errorf("%w: invalid ngram range [%d,%d]", ErrIncompatibleModel, minN, maxN)
	}

	switch spec.Norm {
	case "", "l1", "l2":
	default:
		return nil, fmt.Errorf("%w: unsupported norm %q", ErrIncompatibleModel, spec.Norm)
	}

	lowercase := true
	if spec.Lowercase != nil {
		lowercase = *spec.Lowercase
	}

	stop := make(map[string]struct{}, len(spec.StopWords))
	for _, w := range spec.StopWords {
		if lowercase {
			w = strings.ToLower(w)
		}
		stop[w] = struct{}{}
	}

	return &Vectorizer{
		vocabulary: spec.Vocabulary,
		stopWords:  stop,
		idf:        spec.IDF,
		norm:       spec.Norm,
		minN:       minN,
		maxN:       maxN,
		lowercase:  lowercase,
		sublinear:  spec.SublinearTF,
	}, nil
}

// Dim returns the length of the vectors produced by Transform.
func (v *Vectorizer) Dim() int {
	return len(v.vocabulary)
}

// Tokenize splits doc into the tokens the vocabulary was built from.
func (v *Vectorizer) Tokenize(doc string) []string {
	if v.lowercase {
		doc = strings.ToLower(doc)
	}
	raw := tokenPattern.FindAllString(doc, -1)
	if len(v.stopWords) == 0 {
		return raw
	}
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := v.stopWords[t]; !stop {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Transform returns the weighted, normalized term vector of doc.
// Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(doc string) []float64 {
	x := make([]float64, v.Dim())
	tokens := v.Tokenize(doc)

	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if idx, ok := v.vocabulary[term]; ok {
				x[idx]++
			}
		}
	}

	if v.sublinear {
		for i, c := range x {
			if c > 0 {
				x[i] = 1 + math.Log(c)
			}
		}
	}
	if v.idf != nil {
		floats.Mul(x, v.idf)
	}

	switch v.norm {
	case "l2":
		if n := floats.Norm(x, 2); n > 0 {
			floats.Scale(1/n, x)
		}
	case "l1":
		if n := floats.Norm(x, 1); n > 0 {
			floats.Scale(1/n, x)
		}
	}

	return x
}
