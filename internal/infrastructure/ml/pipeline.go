package ml

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nlgkit/subjectivity/internal/domain/port"
)

// FormatV1 identifies the serialized classifier document layout.
const FormatV1 = "subjectivity-classifier/v1"

// ErrIncompatibleModel is returned when a model document cannot be turned
// into a working classifier.
var ErrIncompatibleModel = errors.New("incompatible classifier model")

var _ port.Classifier = (*Pipeline)(nil)

// Document is the serialized form of a Pipeline.
type Document struct {
	Format     string         `json:"format"`
	Name       string         `json:"name,omitempty"`
	Classes    []string       `json:"classes,omitempty"`
	Vectorizer VectorizerSpec `json:"vectorizer"`
	Estimator  EstimatorSpec  `json:"estimator"`
}

// Pipeline is a vectorizer followed by an estimator. It is immutable and safe
// for concurrent use.
type Pipeline struct {
	vectorizer    *Vectorizer
	estimator     Estimator
	name          string
	estimatorType string
	classes       []string
}

// Info describes a loaded Pipeline.
type Info struct {
	Name           string   `json:"name"`
	Format         string   `json:"format"`
	Estimator      string   `json:"estimator"`
	Classes        []string `json:"classes"`
	VocabularySize int      `json:"vocabulary_size"`
}

// Build validates the document and assembles the Pipeline it describes.
func (d Document) Build() (*Pipeline, error) {
	if d.Format != FormatV1 {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrIncompatibleModel, d.Format)
	}

	vec, err := newVectorizer(d.Vectorizer)
	if err != nil {
		return nil, err
	}
	est, err := decodeEstimator(d.Estimator)
	if err != nil {
		return nil, err
	}
	if est.Features() != vec.Dim() {
		return nil, fmt.Errorf("%w: estimator expects %d features, vocabulary has %d",
			ErrIncompatibleModel, est.Features(), vec.Dim())
	}

	classes := d.Classes
	if classes == nil {
		classes = make([]string, est.Classes())
		for i := range classes {
			classes[i] = strconv.Itoa(i)
		}
	}
	if len(classes) != est.Classes() {
		return nil, fmt.Errorf("%w: %d class labels for %d estimator classes",
			ErrIncompatibleModel, len(classes), est.Classes())
	}

	name := d.Name
	if name == "" {
		name = d.Estimator.Type
	}

	return &Pipeline{
		vectorizer:    vec,
		estimator:     est,
		name:          name,
		estimatorType: d.Estimator.Type,
		classes:       classes,
	}, nil
}

// PredictProba returns one row of class probabilities per document.
func (p *Pipeline) PredictProba(ctx context.Context, docs []string) ([][]float64, error) {
	out := make([][]float64, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.estimator.PredictProba(p.vectorizer.Transform(doc))
	}
	return out, nil
}

// Name returns the model name recorded in the document.
func (p *Pipeline) Name() string {
	return p.name
}

// Info describes the pipeline.
func (p *Pipeline) Info() Info {
	return Info{
		Name:           p.name,
		Format:         FormatV1,
		Estimator:      p.estimatorType,
		Classes:        append([]string(nil), p.classes...),
		VocabularySize: p.vectorizer.Dim(),
	}
}
