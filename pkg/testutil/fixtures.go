package testutil

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlgkit/subjectivity/internal/infrastructure/ml"
)

// Tenants used across tests.
var (
	TestTenantID  = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestTenantID2 = uuid.MustParse("00000000-0000-0000-0000-000000000011")
)

// Sample texts at both ends of the fixture model's range.
const (
	ObjectiveText  = "The committee met on Tuesday and published the annual report."
	SubjectiveText = "I absolutely love this wonderful, amazing and beautiful film!"
)

// FixtureModel returns a small logistic regression classifier that scores
// evaluative vocabulary as subjective and reporting vocabulary as objective.
func FixtureModel() ml.Document {
	return ml.Document{
		Format:  ml.FormatV1,
		Name:    "fixture-subjectivity",
		Classes: []string{"objective", "subjective"},
		Vectorizer: ml.VectorizerSpec{
			Vocabulary: map[string]int{
				"love": 0, "wonderful": 1, "amazing": 2, "beautiful": 3, "absolutely": 4,
				"committee": 5, "published": 6, "report": 7, "annual": 8, "met": 9,
			},
			Norm: "l2",
		},
		Estimator: ml.EstimatorSpec{
			Type:   "logistic_regression",
			Params: []byte(`{"coef": [[3, 3, 3, 3, 2, -3, -3, -3, -2, -2]], "intercept": [0]}`),
		},
	}
}

// WriteFixtureModel serializes FixtureModel to path.
func WriteFixtureModel(t *testing.T, path string, compress bool) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, ml.Encode(f, FixtureModel(), compress))
	require.NoError(t, f.Close())
}

// AssertPercent checks that v is a percentage in [0, 100].
func AssertPercent(t *testing.T, v float64) {
	t.Helper()
	assert.True(t, v >= 0 && v <= 100, "%v is not a percentage", v)
}
