package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/dberrors"
)

// ErrNotFound is returned when no record matches a business key.
var ErrNotFound = errors.New("record not found")

// DuplicateKeyError reports a unique index or constraint violation.
// Field names the business key that collided.
type DuplicateKeyError struct {
	Field string
	Cause error
}

func (e *DuplicateKeyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("duplicate %s: %v", e.Field, e.Cause)
	}
	return "duplicate " + e.Field
}

// Unwrap lets errors.Is match dberrors.ErrDuplicateKey.
func (e *DuplicateKeyError) Unwrap() error { return dberrors.ErrDuplicateKey }

// NewDuplicateKeyError wraps a driver error for the given key field.
func NewDuplicateKeyError(field string, cause error) error {
	return &DuplicateKeyError{Field: field, Cause: cause}
}

// DuplicateField returns the colliding field of a duplicate key error.
func DuplicateField(err error) (string, bool) {
	var dk *DuplicateKeyError
	if errors.As(err, &dk) {
		return dk.Field, true
	}
	return "", false
}

// CourseRepository persists courses keyed by courseId.
type CourseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	Get(ctx context.Context, courseID string) (*models.Course, error)
	Exists(ctx context.Context, courseID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, courseID string, patch models.CoursePatch) (*models.Course, error)
	Delete(ctx context.Context, courseID string) (*models.Course, error)
}

// WeekRepository persists weeks keyed by (courseId, weekId).
type WeekRepository interface {
	List(ctx context.Context, filter models.WeekFilter) ([]models.Week, error)
	Get(ctx context.Context, courseID string, weekID int) (*models.Week, error)
	Exists(ctx context.Context, courseID string, weekID int) (bool, error)
	Create(ctx context.Context, week *models.Week) error
	Update(ctx context.Context, courseID string, weekID int, patch models.WeekPatch) (*models.Week, error)
	Delete(ctx context.Context, courseID string, weekID int) (*models.Week, error)
	DeleteMany(ctx context.Context, filter models.WeekFilter) (int, error)
	Count(ctx context.Context, filter models.WeekFilter) (int, error)
}

// LessonRepository persists lessons keyed by (courseId, weekId, lessonId).
type LessonRepository interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error)
	Get(ctx context.Context, key models.LessonKey) (*models.Lesson, error)
	Exists(ctx context.Context, filter models.LessonFilter) (bool, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, key models.LessonKey, patch models.LessonPatch) (*models.Lesson, error)
	Delete(ctx context.Context, key models.LessonKey) (*models.Lesson, error)
	DeleteMany(ctx context.Context, filter models.LessonFilter) (int, error)
	Count(ctx context.Context, filter models.LessonFilter) (int, error)
}

// Transactor runs a unit of work atomically when the backend allows it.
// Repository calls made with the context passed to fn join the transaction.
type Transactor interface {
	SupportsTransactions(ctx context.Context) bool
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Repositories holds all the repository instances of one backend
type Repositories struct {
	Driver           string
	CourseRepository CourseRepository
	WeekRepository   WeekRepository
	LessonRepository LessonRepository
	Transactor       Transactor
	Pinger           Pinger
}
