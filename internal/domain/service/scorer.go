package service

import (
	"context"
	"path/filepath"
	"strings"
)

// TextScorer defines the scoring operations the application layer depends on.
// Assessor is the production implementation.
type TextScorer interface {
	AssessSubjectivity(ctx context.Context, text string) (float64, error)
	AssessObjectivity(ctx context.Context, text string) (float64, error)
	ModelName() string
}

var _ TextScorer = (*Assessor)(nil)

type namedClassifier interface {
	Name() string
}

// ModelName returns the loaded classifier's name when it reports one,
// otherwise the model file name without extension. It never triggers a load.
func (a *Assessor) ModelName() string {
	if a.Loaded() {
		if n, ok := a.classifier.(namedClassifier); ok && n.Name() != "" {
			return n.Name()
		}
	}
	if a.modelPath == "" {
		return "unknown"
	}
	base := filepath.Base(a.modelPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
