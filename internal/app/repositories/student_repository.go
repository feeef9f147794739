package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/pkg/apperrors"
	"github.com/yigit/alunos/internal/pkg/dberrors"
	"github.com/yigit/alunos/internal/pkg/logger"
)

// Unique constraints on the students table and the field each one protects
var studentConstraints = map[string]string{
	"students_registration_number_key": apperrors.FieldRegistrationNumber,
	"students_cpf_key":                 apperrors.FieldCPF,
}

var studentColumns = []string{
	"id", "full_name", "registration_number", "cpf", "to_char(birth_date, 'YYYY-MM-DD')",
	"email", "phone", "owner_id", "created_at",
}

// StudentGateway is the owner-scoped CRUD contract over the students collection.
//
// Create and Update report uniqueness violations as *apperrors.ConflictError;
// every other failure is an *apperrors.TransportError. Update and Delete
// silently match zero rows when id is unknown or owned by someone else.
type StudentGateway interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Student, error)
	Create(ctx context.Context, ownerID uuid.UUID, in models.StudentInput) (*models.Student, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, in models.StudentInput) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// normalizeStudentError turns a driver error into a ConflictError or TransportError
func normalizeStudentError(op string, err error) error {
	if constraint, msg, ok := dberrors.ViolatedConstraint(err); ok {
		if field, known := studentConstraints[constraint]; known {
			return apperrors.NewConflictError(field, msg)
		}
	}
	return apperrors.NewTransportError(op, err)
}

// List retrieves every student of an owner, newest first
func (r *StudentRepository) List(ctx context.Context, ownerID uuid.UUID) ([]models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, apperrors.NewTransportError("list", fmt.Errorf("failed to build list students query: %w", err))
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("ownerID", ownerID.String()).Msg("Error executing list students query")
		return nil, apperrors.NewTransportError("list", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.FullName, &s.RegistrationNumber, &s.CPF, &s.BirthDate,
			&s.Email, &s.Phone, &s.OwnerID, &s.CreatedAt); err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, apperrors.NewTransportError("list", err)
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating student rows")
		return nil, apperrors.NewTransportError("list", err)
	}

	return students, nil
}

// Create inserts a new student owned by ownerID
func (r *StudentRepository) Create(ctx context.Context, ownerID uuid.UUID, in models.StudentInput) (*models.Student, error) {
	sql, args, err := r.sb.Insert("students").
		Columns("full_name", "registration_number", "cpf", "birth_date", "email", "phone", "owner_id").
		Values(in.FullName, in.RegistrationNumber, in.CPF, squirrel.Expr("?::text::date", in.BirthDate), in.Email, in.Phone, ownerID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return nil, apperrors.NewTransportError("create", fmt.Errorf("failed to build create student query: %w", err))
	}

	student := &models.Student{OwnerID: ownerID}
	student.Apply(in)
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt); err != nil {
		normalized := normalizeStudentError("create", err)
		if apperrors.Is(normalized, apperrors.ErrConflict) {
			logger.Warn().Str("registrationNumber", in.RegistrationNumber).Msg("Attempted to create student with duplicate unique field")
		} else {
			logger.Error().Err(err).Str("ownerID", ownerID.String()).Msg("Error executing create student query")
		}
		return nil, normalized
	}

	logger.Info().Str("studentID", student.ID.String()).Str("ownerID", ownerID.String()).Msg("Student created successfully")
	return student, nil
}

// Update replaces the mutable fields of the student identified by id
func (r *StudentRepository) Update(ctx context.Context, ownerID, id uuid.UUID, in models.StudentInput) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"full_name":           in.FullName,
			"registration_number": in.RegistrationNumber,
			"cpf":                 in.CPF,
			"birth_date":          squirrel.Expr("?::text::date", in.BirthDate),
			"email":               in.Email,
			"phone":               in.Phone,
		}).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update student SQL")
		return apperrors.NewTransportError("update", fmt.Errorf("failed to build update student query: %w", err))
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		normalized := normalizeStudentError("update", err)
		if !apperrors.Is(normalized, apperrors.ErrConflict) {
			logger.Error().Err(err).Str("studentID", id.String()).Msg("Error executing update student query")
		}
		return normalized
	}

	// Zero rows is not an error: the id is unknown or belongs to another owner
	logger.Debug().Str("studentID", id.String()).Int64("rows", cmdTag.RowsAffected()).Msg("Student update executed")
	return nil
}

// Delete removes the student identified by id. No row-count check is made.
func (r *StudentRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("students").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete student SQL")
		return apperrors.NewTransportError("delete", fmt.Errorf("failed to build delete student query: %w", err))
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("studentID", id.String()).Msg("Error executing delete student query")
		return apperrors.NewTransportError("delete", err)
	}

	return nil
}
