package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/student-records-api/internal/models"
)

var (
	// ErrStudentNotFound is returned when no row matches the requested id.
	ErrStudentNotFound = errors.New("student not found")
	// ErrDuplicateEmail is returned when a write violates the email uniqueness constraint.
	ErrDuplicateEmail = errors.New("student email already exists")
)

const (
	uniqueViolation      = "23505"
	studentEmailKey      = "students_email_key"
	studentColumns       = "id, first_name, last_name, email, phone, date_of_birth, gender, address, enrollment_date, created_at, updated_at"
	studentOrder         = "ORDER BY created_at DESC, id DESC"
	studentSearchPredict = "(LOWER(first_name) LIKE $1 ESCAPE '\\' OR LOWER(last_name) LIKE $1 ESCAPE '\\' OR LOWER(email) LIKE $1 ESCAPE '\\')"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Insert stores a new student and fills in its generated ID and CreatedAt.
func (r *StudentRepository) Insert(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (first_name, last_name, email, phone, date_of_birth, gender, address, enrollment_date, created_at)
        VALUES (:first_name, :last_name, :email, :phone, :date_of_birth, :gender, :address, :enrollment_date, NOW())
        RETURNING id, created_at`
	rows, err := r.db.NamedQueryContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("insert student: %w", translateWriteError(err))
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("insert student: %w", translateWriteError(err))
		}
		return fmt.Errorf("insert student: %w", sql.ErrNoRows)
	}
	if err := rows.Scan(&student.ID, &student.CreatedAt); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	student.UpdatedAt = nil
	return nil
}

// FindByID fetches a single student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1 LIMIT 1"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// UpdateByID replaces every mutable column of the student identified by
// student.ID and refreshes updated_at. ID and CreatedAt are left untouched.
func (r *StudentRepository) UpdateByID(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
        date_of_birth = :date_of_birth, gender = :gender, address = :address, enrollment_date = :enrollment_date, updated_at = NOW()
        WHERE id = :id
        RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", translateWriteError(err))
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("update student: %w", translateWriteError(err))
		}
		return ErrStudentNotFound
	}
	if err := rows.Scan(&student.CreatedAt, &student.UpdatedAt); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// DeleteByID removes the student row permanently.
func (r *StudentRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// List returns one page of students, newest first.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	filter = filter.Normalize()
	query := "SELECT " + studentColumns + " FROM students " + studentOrder + " LIMIT $1 OFFSET $2"
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, filter.PerPage, filter.Offset()); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Search returns one page of students whose first name, last name or email
// contains keyword, ignoring case. Ordering matches List.
func (r *StudentRepository) Search(ctx context.Context, keyword string, filter models.StudentFilter) ([]models.Student, error) {
	filter = filter.Normalize()
	query := "SELECT " + studentColumns + " FROM students WHERE " + studentSearchPredict + " " + studentOrder + " LIMIT $2 OFFSET $3"
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, likePattern(keyword), filter.PerPage, filter.Offset()); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return students, nil
}

// Count returns how many students match keyword, or all students when keyword is empty.
func (r *StudentRepository) Count(ctx context.Context, keyword string) (int, error) {
	var (
		total int
		err   error
	)
	if keyword == "" {
		err = r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students")
	} else {
		err = r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students WHERE "+studentSearchPredict, likePattern(keyword))
	}
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// EmailExists checks if a student uses email, optionally excluding one ID.
func (r *StudentRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM students WHERE email = $1"
	args := []interface{}{email}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Ping verifies the database is reachable.
func (r *StudentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
}

func translateWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && (pqErr.Constraint == "" || pqErr.Constraint == studentEmailKey) {
		return ErrDuplicateEmail
	}
	return err
}
