package services

import (
	"context"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/helpers"
	"github.com/yigit/academy/internal/pkg/logger"
)

// WeekService defines the interface for week operations
type WeekService interface {
	ListWeeks(ctx context.Context, filter models.WeekFilter) ([]models.Week, error)
	GetWeek(ctx context.Context, courseID string, weekID int) (*models.Week, error)
	CreateWeek(ctx context.Context, week *models.Week) (*models.Week, error)
	UpdateWeek(ctx context.Context, courseID string, weekID int, patch models.WeekPatch) (*models.Week, error)
	DeleteWeek(ctx context.Context, courseID string, weekID int) (*models.Week, error)
}

type weekServiceImpl struct {
	weekRepo repositories.WeekRepository
}

// NewWeekService creates a new week service instance
func NewWeekService(weekRepo repositories.WeekRepository) WeekService {
	return &weekServiceImpl{
		weekRepo: weekRepo,
	}
}

func weekConflict(string) error { return apperrors.ErrWeekAlreadyExists }

func validateWeekKey(courseID string, weekID int) error {
	if err := requireString("courseId", courseID); err != nil {
		return err
	}
	return requireWeekID(weekID)
}

func (s *weekServiceImpl) ListWeeks(ctx context.Context, filter models.WeekFilter) ([]models.Week, error) {
	weeks, err := s.weekRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list weeks", err)
	}
	return weeks, nil
}

func (s *weekServiceImpl) GetWeek(ctx context.Context, courseID string, weekID int) (*models.Week, error) {
	if err := validateWeekKey(courseID, weekID); err != nil {
		return nil, err
	}
	week, err := s.weekRepo.Get(ctx, courseID, weekID)
	return week, mapRepoError("get week", err, apperrors.ErrWeekNotFound, weekConflict)
}

// CreateWeek inserts a week. The parent course is not checked; weeks
// reference courses softly.
func (s *weekServiceImpl) CreateWeek(ctx context.Context, week *models.Week) (*models.Week, error) {
	if week == nil {
		return nil, apperrors.NewValidationError("body", "week is required")
	}
	if err := validateWeekKey(week.CourseID, week.WeekID); err != nil {
		return nil, err
	}
	if err := requireString("slug", week.Slug); err != nil {
		return nil, err
	}
	if week.LessonCount < 0 {
		return nil, apperrors.NewValidationError("lessonCount", "lessonCount must be at least 0")
	}

	exists, err := s.weekRepo.Exists(ctx, week.CourseID, week.WeekID)
	if err != nil {
		return nil, storeError("check week", err)
	}
	if exists {
		return nil, apperrors.ErrWeekAlreadyExists
	}

	if week.LessonList == nil {
		week.LessonList = []models.LessonRef{}
	}
	stamp(&week.CreatedAt, &week.UpdatedAt)

	if err := s.weekRepo.Create(ctx, week); err != nil {
		return nil, mapRepoError("create week", err, apperrors.ErrWeekNotFound, weekConflict)
	}
	logger.Info().Str("courseId", week.CourseID).Int("weekId", week.WeekID).Msg("Week created")
	return week, nil
}

func (s *weekServiceImpl) UpdateWeek(ctx context.Context, courseID string, weekID int, patch models.WeekPatch) (*models.Week, error) {
	if err := validateWeekKey(courseID, weekID); err != nil {
		return nil, err
	}
	patch.UpdatedAt = helpers.Now()

	week, err := s.weekRepo.Update(ctx, courseID, weekID, patch)
	if err != nil {
		return nil, mapRepoError("update week", err, apperrors.ErrWeekNotFound, weekConflict)
	}
	return week, nil
}

// DeleteWeek removes the week document only; its lessons stay.
func (s *weekServiceImpl) DeleteWeek(ctx context.Context, courseID string, weekID int) (*models.Week, error) {
	if err := validateWeekKey(courseID, weekID); err != nil {
		return nil, err
	}
	week, err := s.weekRepo.Delete(ctx, courseID, weekID)
	if err != nil {
		return nil, mapRepoError("delete week", err, apperrors.ErrWeekNotFound, weekConflict)
	}
	logger.Info().Str("courseId", courseID).Int("weekId", weekID).Msg("Week deleted")
	return week, nil
}
