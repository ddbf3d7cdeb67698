package ml

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Estimator maps a feature vector to class probabilities.
type Estimator interface {
	// Classes returns the number of probability columns.
	Classes() int
	// Features returns the expected feature vector length.
	Features() int
	// PredictProba returns class probabilities summing to one.
	PredictProba(x []float64) []float64
}

// EstimatorSpec is the serialized form of an Estimator.
type EstimatorSpec struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

type estimatorDecoder func(params json.RawMessage) (Estimator, error)

var estimatorDecoders = map[string]estimatorDecoder{
	"logistic_regression": decodeLogisticRegression,
	"multinomial_nb":      decodeMultinomialNB,
}

func decodeEstimator(spec EstimatorSpec) (Estimator, error) {
	dec, ok := estimatorDecoders[spec.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown estimator type %q", ErrIncompatibleModel, spec.Type)
	}
	return dec(spec.Params)
}

// LogisticRegressionParams are the fitted parameters of a linear logistic model.
// A single coefficient row describes a binary model.
type LogisticRegressionParams struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

type logisticRegression struct {
	coef      [][]float64
	intercept []float64
}

func decodeLogisticRegression(raw json.RawMessage) (Estimator, error) {
	var p LogisticRegressionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: logistic_regression params: %v", ErrIncompatibleModel, err)
	}
	if err := checkMatrix("coef", p.Coef); err != nil {
		return nil, err
	}
	if len(p.Intercept) != len(p.Coef) {
		return nil, fmt.Errorf("%w: %d intercepts for %d coef rows", ErrIncompatibleModel, len(p.Intercept), len(p.Coef))
	}
	return &logisticRegression{coef: p.Coef, intercept: p.Intercept}, nil
}

func (m *logisticRegression) Classes() int {
	if len(m.coef) == 1 {
		return 2
	}
	return len(m.coef)
}

func (m *logisticRegression) Features() int {
	return len(m.coef[0])
}

func (m *logisticRegression) PredictProba(x []float64) []float64 {
	if len(m.coef) == 1 {
		p := sigmoid(floats.Dot(m.coef[0], x) + m.intercept[0])
		return []float64{1 - p, p}
	}
	scores := make([]float64, len(m.coef))
	for k, w := range m.coef {
		scores[k] = floats.Dot(w, x) + m.intercept[k]
	}
	return softmax(scores)
}

// MultinomialNBParams are the fitted parameters of a multinomial naive Bayes model.
type MultinomialNBParams struct {
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

type multinomialNB struct {
	classLogPrior  []float64
	featureLogProb [][]float64
}

func decodeMultinomialNB(raw json.RawMessage) (Estimator, error) {
	var p MultinomialNBParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: multinomial_nb params: %v", ErrIncompatibleModel, err)
	}
	if len(p.ClassLogPrior) < 2 {
		return nil, fmt.Errorf("%w: multinomial_nb needs at least 2 classes", ErrIncompatibleModel)
	}
	if err := checkMatrix("feature_log_prob", p.FeatureLogProb); err != nil {
		return nil, err
	}
	if len(p.FeatureLogProb) != len(p.ClassLogPrior) {
		return nil, fmt.Errorf("%w: %d feature_log_prob rows for %d classes",
			ErrIncompatibleModel, len(p.FeatureLogProb), len(p.ClassLogPrior))
	}
	return &multinomialNB{classLogPrior: p.ClassLogPrior, featureLogProb: p.FeatureLogProb}, nil
}

func (m *multinomialNB) Classes() int {
	return len(m.classLogPrior)
}

func (m *multinomialNB) Features() int {
	return len(m.featureLogProb[0])
}

func (m *multinomialNB) PredictProba(x []float64) []float64 {
	jll := make([]float64, len(m.classLogPrior))
	for k, logProb := range m.featureLogProb {
		jll[k] = m.classLogPrior[k] + floats.Dot(logProb, x)
	}
	return softmax(jll)
}

func checkMatrix(name string, rows [][]float64) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrIncompatibleModel, name)
	}
	for i, row := range rows {
		if len(row) != len(rows[0]) {
			return fmt.Errorf("%w: %s row %d has %d columns, want %d",
				ErrIncompatibleModel, name, i, len(row), len(rows[0]))
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softmax normalizes log-scores in place and returns them.
func softmax(scores []float64) []float64 {
	lse := floats.LogSumExp(scores)
	for i, s := range scores {
		scores[i] = math.Exp(s - lse)
	}
	return scores
}
