package services

import (
	"context"
	"time"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/helpers"
	"github.com/yigit/academy/internal/pkg/logger"
	"github.com/yigit/academy/internal/pkg/validation"
)

// CourseService defines the interface for course operations
type CourseService interface {
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	CreateCourse(ctx context.Context, course *models.Course) (*models.Course, error)
	UpdateCourse(ctx context.Context, courseID string, patch models.CoursePatch) (*models.Course, error)
	DeleteCourse(ctx context.Context, courseID string) (*models.Course, error)
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	courseRepo repositories.CourseRepository
}

// NewCourseService creates a new course service instance
func NewCourseService(courseRepo repositories.CourseRepository) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
	}
}

func courseConflict(string) error { return apperrors.ErrCourseAlreadyExists }

// validateCourse checks required fields and ranges before insert
func (s *courseServiceImpl) validateCourse(course *models.Course) error {
	if course == nil {
		return apperrors.NewValidationError("body", "course is required")
	}
	if err := requireString("courseId", course.CourseID); err != nil {
		return err
	}
	if err := requireString("title", course.Title); err != nil {
		return err
	}
	if err := requireString("slug", course.Slug); err != nil {
		return err
	}
	if course.Rating < validation.RatingMin || course.Rating > validation.RatingMax {
		return apperrors.NewValidationError("rating", "rating must be between 0 and 5")
	}
	if course.WeekCount < 0 {
		return apperrors.NewValidationError("weekCount", "weekCount must be at least 0")
	}
	return nil
}

// ListCourses returns every course matching filter; never an error on zero matches
func (s *courseServiceImpl) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	courses, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list courses", err)
	}
	return courses, nil
}

// GetCourse loads one course by courseId
func (s *courseServiceImpl) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if err := requireString("courseId", courseID); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.Get(ctx, courseID)
	return course, mapRepoError("get course", err, apperrors.ErrCourseNotFound, courseConflict)
}

// CreateCourse validates and inserts a course. The existence check is a
// shortcut; the unique index decides.
func (s *courseServiceImpl) CreateCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	if err := s.validateCourse(course); err != nil {
		return nil, err
	}

	exists, err := s.courseRepo.Exists(ctx, course.CourseID)
	if err != nil {
		return nil, storeError("check course", err)
	}
	if exists {
		return nil, apperrors.ErrCourseAlreadyExists
	}

	if course.Tags == nil {
		course.Tags = []string{}
	}
	stamp(&course.CreatedAt, &course.UpdatedAt)

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, mapRepoError("create course", err, apperrors.ErrCourseNotFound, courseConflict)
	}
	logger.Info().Str("courseId", course.CourseID).Msg("Course created")
	return course, nil
}

// UpdateCourse applies a sparse update and refreshes updatedAt
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, courseID string, patch models.CoursePatch) (*models.Course, error) {
	if err := requireString("courseId", courseID); err != nil {
		return nil, err
	}
	patch.UpdatedAt = helpers.Now()

	course, err := s.courseRepo.Update(ctx, courseID, patch)
	if err != nil {
		return nil, mapRepoError("update course", err, apperrors.ErrCourseNotFound, courseConflict)
	}
	return course, nil
}

// DeleteCourse removes the course document only. Weeks and lessons stay;
// see CascadeService for removing the tree.
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if err := requireString("courseId", courseID); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.Delete(ctx, courseID)
	if err != nil {
		return nil, mapRepoError("delete course", err, apperrors.ErrCourseNotFound, courseConflict)
	}
	logger.Info().Str("courseId", courseID).Msg("Course deleted")
	return course, nil
}

// stamp fills caller-omitted timestamps
func stamp(createdAt, updatedAt *time.Time) {
	if createdAt.IsZero() {
		*createdAt = helpers.Now()
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}
