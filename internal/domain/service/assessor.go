package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/nlgkit/subjectivity/internal/domain/port"
)

// DefaultModelPath is the serialized classifier loaded when no path is configured.
// Relative paths resolve against the process working directory.
const DefaultModelPath = "objectivity-detection-direct.sav"

// subjectiveClass is the class index whose probability both assessments report.
const subjectiveClass = 1

var (
	// ErrMalformedPrediction is returned when the classifier output is not a
	// probability row with at least two classes.
	ErrMalformedPrediction = errors.New("malformed classifier prediction")

	// ErrNoClassifier is returned by an assessor that has neither a classifier
	// nor a loader.
	ErrNoClassifier = errors.New("no classifier configured")
)

// AssessorConfig configures an Assessor.
type AssessorConfig struct {
	// ModelPath is the serialized classifier file. Empty means DefaultModelPath.
	ModelPath string
}

// Assessor scores texts for subjectivity with a pre-trained binary classifier.
//
// The classifier is loaded at most once, either by an explicit Load call or by
// the first assessment. The load outcome is kept for the lifetime of the
// Assessor: a failed load is never retried and every later call returns the
// same error. The loaded classifier is treated as immutable.
type Assessor struct {
	loader    port.ClassifierLoader
	modelPath string

	once       sync.Once
	classifier port.Classifier
	loadErr    error
	ready      atomic.Bool
}

// NewAssessor creates an Assessor that loads its classifier from cfg.ModelPath
// through loader on first use.
func NewAssessor(cfg AssessorConfig, loader port.ClassifierLoader) *Assessor {
	path := cfg.ModelPath
	if path == "" {
		path = DefaultModelPath
	}
	return &Assessor{
		loader:    loader,
		modelPath: path,
	}
}

// NewAssessorWithClassifier creates an Assessor around an already loaded classifier.
func NewAssessorWithClassifier(clf port.Classifier) *Assessor {
	a := &Assessor{classifier: clf}
	a.once.Do(func() {
		if clf == nil {
			a.loadErr = ErrNoClassifier
			return
		}
		a.ready.Store(true)
	})
	return a
}

// Load loads the classifier if that has not happened yet and returns the
// outcome of the one-time load.
func (a *Assessor) Load(ctx context.Context) error {
	a.once.Do(func() {
		if a.loader == nil {
			a.loadErr = ErrNoClassifier
			return
		}
		clf, err := a.loader.Load(ctx, a.modelPath)
		if err != nil {
			a.loadErr = fmt.Errorf("load classifier %s: %w", a.modelPath, err)
			return
		}
		if clf == nil {
			a.loadErr = fmt.Errorf("load classifier %s: %w", a.modelPath, ErrNoClassifier)
			return
		}
		a.classifier = clf
		a.ready.Store(true)
	})
	return a.loadErr
}

// Loaded reports whether a classifier has been loaded successfully. It never
// starts a load; an assessor that has not been used yet reports false.
func (a *Assessor) Loaded() bool {
	return a.ready.Load()
}

// ModelPath returns the configured classifier path; empty for injected classifiers.
func (a *Assessor) ModelPath() string {
	return a.modelPath
}

// AssessSubjectivity returns the estimated probability, scaled to [0, 100],
// that text belongs to the subjective class.
func (a *Assessor) AssessSubjectivity(ctx context.Context, text string) (float64, error) {
	return a.classProbability(ctx, text)
}

// AssessObjectivity returns the same class-1 percentage as AssessSubjectivity.
// Callers wanting the complementary score use 100 minus the result.
func (a *Assessor) AssessObjectivity(ctx context.Context, text string) (float64, error) {
	return a.classProbability(ctx, text)
}

func (a *Assessor) classProbability(ctx context.Context, text string) (float64, error) {
	if err := a.Load(ctx); err != nil {
		return 0, err
	}

	rows, err := a.classifier.PredictProba(ctx, []string{text})
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: no rows", ErrMalformedPrediction)
	}
	if len(rows[0]) <= subjectiveClass {
		return 0, fmt.Errorf("%w: %d classes", ErrMalformedPrediction, len(rows[0]))
	}

	p := rows[0][subjectiveClass]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: probability %v", ErrMalformedPrediction, p)
	}

	return p * 100, nil
}
