package valueobject

import "fmt"

// SubjectivityLevel is an immutable value object classifying a subjectivity score.
type SubjectivityLevel struct {
	value string
}

var (
	LevelObjective  = SubjectivityLevel{value: "OBJECTIVE"}
	LevelMixed      = SubjectivityLevel{value: "MIXED"}
	LevelSubjective = SubjectivityLevel{value: "SUBJECTIVE"}
)

// SubjectivityLevelFromString reconstructs a level from its string representation.
func SubjectivityLevelFromString(s string) (SubjectivityLevel, error) {
	switch s {
	case "OBJECTIVE":
		return LevelObjective, nil
	case "MIXED":
		return LevelMixed, nil
	case "SUBJECTIVE":
		return LevelSubjective, nil
	default:
		return SubjectivityLevel{}, fmt.Errorf("invalid subjectivity level: %s", s)
	}
}

// SubjectivityLevelFromScore derives the level from a subjectivity score (0-100).
func SubjectivityLevelFromScore(score Score) SubjectivityLevel {
	switch v := score.Float64(); {
	case v >= 70:
		return LevelSubjective
	case v >= 40:
		return LevelMixed
	default:
		return LevelObjective
	}
}

// String returns the string representation.
func (l SubjectivityLevel) String() string {
	return l.value
}

// IsZero returns true if the level has not been set.
func (l SubjectivityLevel) IsZero() bool {
	return l.value == ""
}

// Equal checks equality with another SubjectivityLevel.
func (l SubjectivityLevel) Equal(other SubjectivityLevel) bool {
	return l.value == other.value
}
