package services

import (
	"context"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/helpers"
	"github.com/yigit/academy/internal/pkg/logger"
)

// LessonService defines the interface for lesson operations
type LessonService interface {
	ListLessons(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error)
	GetLesson(ctx context.Context, key models.LessonKey) (*models.Lesson, error)
	CreateLesson(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, key models.LessonKey, patch models.LessonPatch) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, key models.LessonKey) (*models.Lesson, error)
}

type lessonServiceImpl struct {
	lessonRepo repositories.LessonRepository
}

// NewLessonService creates a new lesson service instance
func NewLessonService(lessonRepo repositories.LessonRepository) LessonService {
	return &lessonServiceImpl{
		lessonRepo: lessonRepo,
	}
}

func lessonConflict(field string) error {
	if field == "slug" {
		return apperrors.ErrLessonSlugTaken
	}
	return apperrors.ErrLessonAlreadyExists
}

func validateLessonKey(key models.LessonKey) error {
	if err := validateWeekKey(key.CourseID, key.WeekID); err != nil {
		return err
	}
	return requireString("lessonId", key.LessonID)
}

// inWeek is the filter for one week's lessons
func inWeek(courseID string, weekID int) models.LessonFilter {
	return models.LessonFilter{CourseID: courseID, WeekID: &weekID}
}

func (s *lessonServiceImpl) ListLessons(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error) {
	lessons, err := s.lessonRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list lessons", err)
	}
	return lessons, nil
}

func (s *lessonServiceImpl) GetLesson(ctx context.Context, key models.LessonKey) (*models.Lesson, error) {
	if err := validateLessonKey(key); err != nil {
		return nil, err
	}
	lesson, err := s.lessonRepo.Get(ctx, key)
	return lesson, mapRepoError("get lesson", err, apperrors.ErrLessonNotFound, lessonConflict)
}

// taken reports whether a sibling in the same week already uses the field value
func (s *lessonServiceImpl) taken(ctx context.Context, filter models.LessonFilter) (bool, error) {
	exists, err := s.lessonRepo.Exists(ctx, filter)
	if err != nil {
		return false, storeError("check lesson", err)
	}
	return exists, nil
}

// CreateLesson inserts a lesson after checking lessonId and slug are free in its week
func (s *lessonServiceImpl) CreateLesson(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error) {
	if lesson == nil {
		return nil, apperrors.NewValidationError("body", "lesson is required")
	}
	if err := validateLessonKey(lesson.Key()); err != nil {
		return nil, err
	}
	if err := requireString("slug", lesson.Slug); err != nil {
		return nil, err
	}
	if err := requireString("title", lesson.Title); err != nil {
		return nil, err
	}

	scope := inWeek(lesson.CourseID, lesson.WeekID)
	byID := scope
	byID.LessonID = lesson.LessonID
	if taken, err := s.taken(ctx, byID); err != nil || taken {
		return nil, orConflict(err, apperrors.ErrLessonAlreadyExists)
	}
	bySlug := scope
	bySlug.Slug = lesson.Slug
	if taken, err := s.taken(ctx, bySlug); err != nil || taken {
		return nil, orConflict(err, apperrors.ErrLessonSlugTaken)
	}

	stamp(&lesson.CreatedAt, &lesson.UpdatedAt)

	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, mapRepoError("create lesson", err, apperrors.ErrLessonNotFound, lessonConflict)
	}
	logger.Info().
		Str("courseId", lesson.CourseID).
		Int("weekId", lesson.WeekID).
		Str("lessonId", lesson.LessonID).
		Msg("Lesson created")
	return lesson, nil
}

// UpdateLesson applies a sparse update. A new lessonId or slug is checked
// against the week's other lessons before anything is written.
func (s *lessonServiceImpl) UpdateLesson(ctx context.Context, key models.LessonKey, patch models.LessonPatch) (*models.Lesson, error) {
	if err := validateLessonKey(key); err != nil {
		return nil, err
	}

	current, err := s.lessonRepo.Get(ctx, key)
	if err != nil {
		return nil, mapRepoError("get lesson", err, apperrors.ErrLessonNotFound, lessonConflict)
	}

	scope := inWeek(key.CourseID, key.WeekID)
	if patch.LessonID != nil && *patch.LessonID != key.LessonID {
		byID := scope
		byID.LessonID = *patch.LessonID
		if taken, err := s.taken(ctx, byID); err != nil || taken {
			return nil, orConflict(err, apperrors.ErrLessonAlreadyExists)
		}
	}
	if patch.Slug != nil && *patch.Slug != current.Slug {
		bySlug := scope
		bySlug.Slug = *patch.Slug
		if taken, err := s.taken(ctx, bySlug); err != nil || taken {
			return nil, orConflict(err, apperrors.ErrLessonSlugTaken)
		}
	}

	patch.UpdatedAt = helpers.Now()
	lesson, err := s.lessonRepo.Update(ctx, key, patch)
	if err != nil {
		return nil, mapRepoError("update lesson", err, apperrors.ErrLessonNotFound, lessonConflict)
	}
	return lesson, nil
}

func (s *lessonServiceImpl) DeleteLesson(ctx context.Context, key models.LessonKey) (*models.Lesson, error) {
	if err := validateLessonKey(key); err != nil {
		return nil, err
	}
	lesson, err := s.lessonRepo.Delete(ctx, key)
	if err != nil {
		return nil, mapRepoError("delete lesson", err, apperrors.ErrLessonNotFound, lessonConflict)
	}
	logger.Info().
		Str("courseId", key.CourseID).
		Int("weekId", key.WeekID).
		Str("lessonId", key.LessonID).
		Msg("Lesson deleted")
	return lesson, nil
}

// orConflict returns err when set, conflict otherwise
func orConflict(err, conflict error) error {
	if err != nil {
		return err
	}
	return conflict
}
