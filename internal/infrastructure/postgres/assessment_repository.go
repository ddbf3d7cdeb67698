package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nlgkit/subjectivity/internal/domain/model"
	"github.com/nlgkit/subjectivity/internal/domain/valueobject"
	pgutil "github.com/nlgkit/subjectivity/pkg/postgres"
)

// ErrStaleAssessment is returned when a newer version of the assessment is already stored.
var ErrStaleAssessment = errors.New("stale assessment version")

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	pgutil.Querier
	pgutil.TxBeginner
}

// AssessmentRepository implements port.AssessmentRepository using PostgreSQL.
type AssessmentRepository struct {
	pool DB
}

// NewAssessmentRepository creates a new PostgreSQL-backed assessment repository.
func NewAssessmentRepository(pool DB) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

const selectColumns = `
	SELECT id, tenant_id, reference, text, model_name,
		subjectivity, objectivity, level,
		assessed_at, version, created_at, updated_at
	FROM text_assessments`

// Save upserts a text assessment. An update never overwrites a newer version.
func (r *AssessmentRepository) Save(ctx context.Context, assessment *model.TextAssessment) error {
	query := `
		INSERT INTO text_assessments (
			id, tenant_id, reference, text, model_name,
			subjectivity, objectivity, level,
			assessed_at, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			subjectivity = EXCLUDED.subjectivity,
			objectivity = EXCLUDED.objectivity,
			level = EXCLUDED.level,
			model_name = EXCLUDED.model_name,
			assessed_at = EXCLUDED.assessed_at,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		WHERE text_assessments.version < EXCLUDED.version
	`

	var assessedAt *time.Time
	if t := assessment.AssessedAt(); !t.IsZero() {
		assessedAt = &t
	}

	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			assessment.ID(),
			assessment.TenantID(),
			assessment.Reference(),
			assessment.Text(),
			assessment.ModelName(),
			assessment.Subjectivity().Decimal(),
			assessment.Objectivity().Decimal(),
			assessment.Level().String(),
			assessedAt,
			assessment.Version(),
			assessment.CreatedAt(),
			assessment.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s v%d", ErrStaleAssessment, assessment.ID(), assessment.Version())
		}
		return nil
	})
}

// FindByID retrieves an assessment by its unique identifier.
func (r *AssessmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.TextAssessment, error) {
	query := selectColumns + ` WHERE tenant_id = $1 AND id = $2`

	assessment, err := scanAssessment(r.pool.QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}
	return assessment, nil
}

// FindByTenant lists a tenant's assessments, newest first.
func (r *AssessmentRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*model.TextAssessment, error) {
	query := selectColumns + `
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	assessments := make([]*model.TextAssessment, 0)
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}

	return assessments, nil
}

func scanAssessment(row pgx.Row) (*model.TextAssessment, error) {
	var (
		id           uuid.UUID
		tenantID     uuid.UUID
		reference    string
		text         string
		modelName    string
		subjectivity decimal.Decimal
		objectivity  decimal.Decimal
		levelStr     string
		assessedAt   *time.Time
		version      int
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(
		&id, &tenantID, &reference, &text, &modelName,
		&subjectivity, &objectivity, &levelStr,
		&assessedAt, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	subj, err := valueobject.ScoreFromDecimal(subjectivity)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subjectivity: %w", err)
	}
	obj, err := valueobject.ScoreFromDecimal(objectivity)
	if err != nil {
		return nil, fmt.Errorf("failed to parse objectivity: %w", err)
	}
	level, err := valueobject.SubjectivityLevelFromString(levelStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse level: %w", err)
	}

	var assessedAtVal time.Time
	if assessedAt != nil {
		assessedAtVal = *assessedAt
	}

	return model.Reconstruct(
		id, tenantID,
		reference, text, modelName,
		subj, obj, level,
		assessedAtVal, version, createdAt, updatedAt,
	), nil
}
