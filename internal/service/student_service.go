package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/repository"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type studentRepository interface {
	Insert(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	UpdateByID(ctx context.Context, student *models.Student) error
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	Search(ctx context.Context, keyword string, filter models.StudentFilter) ([]models.Student, error)
	Count(ctx context.Context, keyword string) (int, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *StudentValidator
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validator *StudentValidator, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if validator == nil {
		validator = NewStudentValidator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validator, metrics: metrics, logger: logger}
}

// Create validates input and registers a new student.
func (s *StudentService) Create(ctx context.Context, input map[string]interface{}) (*models.Student, error) {
	fields, fieldErrs := s.validator.Validate(input, ModeCreate)
	if fieldErrs != nil {
		return nil, appErrors.Validation("Validation failed.", fieldErrs)
	}
	if err := s.ensureEmailAvailable(ctx, fields.Email, 0); err != nil {
		return nil, err
	}

	student := &models.Student{}
	fields.ApplyTo(student)

	start := time.Now()
	err := s.repo.Insert(ctx, student)
	s.metrics.ObserveDBQuery("student_insert", time.Since(start))
	if err != nil {
		return nil, s.writeError(err, "Unable to create student.")
	}
	s.logger.Info("student created", zap.Int64("student_id", student.ID))
	return student, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	start := time.Now()
	student, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("student_find", time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
		}
		return nil, s.internal(err, "Unable to load student.")
	}
	return student, nil
}

// List returns one page of students, filtered by keyword when filter.Search
// is set. An empty page is reported as not found.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) (*dto.StudentList, error) {
	filter = filter.Normalize()

	var (
		students []models.Student
		err      error
	)
	start := time.Now()
	if filter.Search != "" {
		students, err = s.repo.Search(ctx, filter.Search, filter)
		s.metrics.ObserveDBQuery("student_search", time.Since(start))
	} else {
		students, err = s.repo.List(ctx, filter)
		s.metrics.ObserveDBQuery("student_list", time.Since(start))
	}
	if err != nil {
		return nil, s.internal(err, "Unable to list students.")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No students found.")
	}

	total, err := s.repo.Count(ctx, filter.Search)
	if err != nil {
		return nil, s.internal(err, "Unable to list students.")
	}

	return &dto.StudentList{
		Count:    len(students),
		Total:    total,
		Students: students,
		Page:     filter.Page,
		PerPage:  filter.PerPage,
	}, nil
}

// Update replaces every mutable field of an existing student. input must
// carry the student id.
func (s *StudentService) Update(ctx context.Context, input map[string]interface{}) (*models.Student, error) {
	fields, fieldErrs := s.validator.Validate(input, ModeUpdate)
	if fieldErrs != nil {
		return nil, appErrors.Validation("Validation failed.", fieldErrs)
	}

	student, err := s.Get(ctx, fields.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(ctx, fields.Email, fields.ID); err != nil {
		return nil, err
	}

	fields.ApplyTo(student)
	start := time.Now()
	err = s.repo.UpdateByID(ctx, student)
	s.metrics.ObserveDBQuery("student_update", time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
		}
		return nil, s.writeError(err, "Unable to update student.")
	}
	s.logger.Info("student updated", zap.Int64("student_id", student.ID))
	return student, nil
}

// Delete permanently removes a student.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.repo.DeleteByID(ctx, id)
	s.metrics.ObserveDBQuery("student_delete", time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
		}
		return s.internal(err, "Unable to delete student.")
	}
	s.logger.Info("student deleted", zap.Int64("student_id", id))
	return nil
}

// ensureEmailAvailable is the fast-path uniqueness check; the storage
// constraint remains authoritative.
func (s *StudentService) ensureEmailAvailable(ctx context.Context, email string, excludeID int64) error {
	start := time.Now()
	exists, err := s.repo.EmailExists(ctx, email, excludeID)
	s.metrics.ObserveDBQuery("student_email_exists", time.Since(start))
	if err != nil {
		return s.internal(err, "Unable to validate email.")
	}
	if exists {
		s.metrics.RecordConflict("precheck")
		s.logger.Info("student email conflict", zap.String("source", "precheck"))
		return appErrors.Clone(appErrors.ErrConflict, "Email already exists.")
	}
	return nil
}

func (s *StudentService) writeError(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicateEmail) {
		s.metrics.RecordConflict("constraint")
		s.logger.Info("student email conflict", zap.String("source", "constraint"))
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "Email already exists.")
	}
	return s.internal(err, message)
}

func (s *StudentService) internal(err error, message string) error {
	s.logger.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
